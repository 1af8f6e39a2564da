package loader

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gofhir/navigator/service"
)

// MemoryStore holds snapshots in memory and implements both
// service.SnapshotProvider and service.MetadataResolver over them.
// It lets embedders and tests run the navigator without a package
// ecosystem on disk.
type MemoryStore struct {
	mu      sync.RWMutex
	all     []*storedSnapshot
	entries map[string]*storedSnapshot

	rootPackages []service.PackageRef
}

type storedSnapshot struct {
	snap     *service.Snapshot
	filename string
}

// NewMemoryStore creates a store scoped to the given root packages.
// The packages are normalized once: sorted by id then version and
// de-duplicated.
func NewMemoryStore(rootPackages ...service.PackageRef) *MemoryStore {
	normalized := normalizePackages(rootPackages)
	return &MemoryStore{
		entries:      make(map[string]*storedSnapshot),
		rootPackages: normalized,
	}
}

func normalizePackages(pkgs []service.PackageRef) []service.PackageRef {
	out := append([]service.PackageRef(nil), pkgs...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Version < out[j].Version
	})
	deduped := out[:0]
	for i, p := range out {
		if i == 0 || p != out[i-1] {
			deduped = append(deduped, p)
		}
	}
	return deduped
}

// Add stores a snapshot under the conventional package filename
// "StructureDefinition-<id>.json".
func (s *MemoryStore) Add(snap *service.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}
	return s.AddWithFilename(snap, "StructureDefinition-"+snap.ID+".json")
}

// AddWithFilename stores a snapshot under an explicit package
// filename. The snapshot must carry its package coordinates.
func (s *MemoryStore) AddWithFilename(snap *service.Snapshot, filename string) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := &storedSnapshot{snap: snap, filename: filename}
	s.all = append(s.all, stored)
	s.entries[entryKey(snap.PackageID, snap.PackageVersion, filename)] = stored
	return nil
}

// Len returns the number of stored snapshots.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.all)
}

func entryKey(pkgID, pkgVersion, filename string) string {
	return pkgID + "::" + pkgVersion + "::" + filename
}

// GetSnapshot implements service.SnapshotProvider. The returned
// snapshot is a deep copy; the store is never mutated by callers.
func (s *MemoryStore) GetSnapshot(ctx context.Context, ref service.SnapshotRef, filter *service.PackageRef) (*service.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if entry := ref.Entry(); entry != nil {
		stored, ok := s.entries[entryKey(entry.PackageID, entry.PackageVersion, entry.Filename)]
		if !ok {
			return nil, fmt.Errorf("snapshot %s: %w", ref.Normalized(), service.ErrNotFound)
		}
		return stored.snap.Clone(), nil
	}

	var found []*storedSnapshot
	for _, stored := range s.all {
		if matchesID(stored.snap, ref.ID()) && matchesPackage(stored.snap, filter) {
			found = append(found, stored)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("snapshot %s: %w", ref.Normalized(), service.ErrNotFound)
	case 1:
		return found[0].snap.Clone(), nil
	default:
		return nil, fmt.Errorf("snapshot %s: %d definitions match", ref.Normalized(), len(found))
	}
}

func matchesID(snap *service.Snapshot, id string) bool {
	if id == "" {
		return false
	}
	return snap.ID == id || snap.URL == id || snap.Name == id
}

func matchesPackage(snap *service.Snapshot, filter *service.PackageRef) bool {
	if filter == nil || filter.IsZero() {
		return true
	}
	if snap.PackageID != filter.ID {
		return false
	}
	return filter.Version == "" || snap.PackageVersion == filter.Version
}

// ResolveMeta implements service.MetadataResolver: the metadata record
// when exactly one resource matches, nil otherwise.
func (s *MemoryStore) ResolveMeta(ctx context.Context, q service.MetaQuery) (*service.ResourceMeta, error) {
	recs, err := s.Lookup(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(recs) != 1 {
		return nil, nil
	}
	return &recs[0], nil
}

// Lookup implements service.MetadataResolver.
func (s *MemoryStore) Lookup(ctx context.Context, q service.MetaQuery) ([]service.ResourceMeta, error) {
	if q.ResourceType != "" && q.ResourceType != "StructureDefinition" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var recs []service.ResourceMeta
	for _, stored := range s.all {
		if !matchesID(stored.snap, q.ID) || !matchesPackage(stored.snap, q.Package) {
			continue
		}
		recs = append(recs, service.ResourceMeta{
			Kind:           stored.snap.Kind,
			Type:           stored.snap.Type,
			URL:            stored.snap.URL,
			PackageID:      stored.snap.PackageID,
			PackageVersion: stored.snap.PackageVersion,
			Filename:       stored.filename,
		})
	}
	return recs, nil
}

// NormalizedRootPackages implements service.MetadataResolver.
func (s *MemoryStore) NormalizedRootPackages() []service.PackageRef {
	return append([]service.PackageRef(nil), s.rootPackages...)
}

// FindByURLPrefix returns the snapshots whose canonical URL starts
// with the given prefix, in insertion order.
func (s *MemoryStore) FindByURLPrefix(prefix string) []*service.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*service.Snapshot
	for _, stored := range s.all {
		if strings.HasPrefix(stored.snap.URL, prefix) {
			out = append(out, stored.snap.Clone())
		}
	}
	return out
}

// Verify interface compliance
var _ service.SnapshotProvider = (*MemoryStore)(nil)
var _ service.MetadataResolver = (*MemoryStore)(nil)
