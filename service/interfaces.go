package service

import (
	"context"
)

// SnapshotProvider produces the full element list for a snapshot
// reference, optionally constrained to a single package. It is treated
// as a pure, cacheable lookup; the navigator caches every result.
type SnapshotProvider interface {
	// GetSnapshot resolves ref to a snapshot value object. The
	// returned snapshot is owned by the caller. Failure modes (not
	// found, ambiguous, I/O) all surface as errors.
	GetSnapshot(ctx context.Context, ref SnapshotRef, filter *PackageRef) (*Snapshot, error)
}

// MetaQuery selects resources within the package ecosystem.
type MetaQuery struct {
	ResourceType string
	ID           string
	Package      *PackageRef
}

// ResourceMeta is a package-scoped metadata record for a resource.
type ResourceMeta struct {
	Kind           string `json:"kind,omitempty"`
	Type           string `json:"type,omitempty"`
	URL            string `json:"url,omitempty"`
	PackageID      string `json:"__packageId,omitempty"`
	PackageVersion string `json:"__packageVersion,omitempty"`
	Filename       string `json:"filename,omitempty"`
}

// MetadataResolver resolves type codes and profile ids to
// package-scoped metadata records.
type MetadataResolver interface {
	// ResolveMeta returns the metadata record when exactly one
	// resource matches the query, nil otherwise.
	ResolveMeta(ctx context.Context, q MetaQuery) (*ResourceMeta, error)

	// Lookup returns all records matching the query.
	Lookup(ctx context.Context, q MetaQuery) ([]ResourceMeta, error)

	// NormalizedRootPackages returns the navigator's root packages,
	// sorted and de-duplicated. The result is deterministic and
	// stable for the lifetime of the resolver.
	NormalizedRootPackages() []PackageRef
}
