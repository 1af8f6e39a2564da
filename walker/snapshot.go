package walker

import (
	"context"
	"encoding/json"

	"github.com/gofhir/navigator/cache"
	"github.com/gofhir/navigator/service"
)

// snapshotKey builds the snapshot-cache key. Entry references occupy
// the first slot alone; id references carry the package filter in the
// remaining slots.
func snapshotKey(ref service.SnapshotRef, filter *service.PackageRef) cache.Key {
	if ref.IsEntry() {
		return cache.Key{ref.Normalized(), "", ""}
	}
	var id, version string
	if filter != nil {
		id, version = filter.ID, filter.Version
	}
	return cache.Key{ref.ID(), id, version}
}

// contextKey returns the namespace slot of element and children cache
// keys: the JSON form of the package filter when one constrains the
// resolution, the navigator's package context otherwise.
func (r *Resolver) contextKey(filter *service.PackageRef) string {
	if filter == nil {
		return r.packageContext
	}
	b, err := json.Marshal([]service.PackageRef{*filter})
	if err != nil {
		return r.packageContext
	}
	return string(b)
}

// fetchSnapshot returns the enriched snapshot for ref, consulting the
// snapshot cache first. Snapshots are enriched exactly once, before
// they enter the cache, and are never mutated afterwards.
func (r *Resolver) fetchSnapshot(ctx context.Context, ref service.SnapshotRef, filter *service.PackageRef) (*service.Snapshot, error) {
	key := snapshotKey(ref, filter)
	if snap, ok := r.snapshots.Get(ctx, key); ok {
		return snap, nil
	}

	r.log.WithField("snapshot", ref.Normalized()).Debug("fetching snapshot")
	snap, err := r.provider.GetSnapshot(ctx, ref, filter)
	if err != nil {
		return nil, &service.UpstreamError{Op: "get snapshot", SnapshotID: ref.Normalized(), Err: err}
	}
	r.enrichSnapshot(ctx, snap)
	r.snapshots.Set(ctx, key, snap)
	return snap, nil
}
