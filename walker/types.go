package walker

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/gofhir/navigator/cache"
	"github.com/gofhir/navigator/service"
)

// Resolver orchestrates path and children resolution over snapshots
// supplied by a SnapshotProvider. It owns the hot tiers of its caches;
// cold tiers are shared with the caller.
type Resolver struct {
	provider service.SnapshotProvider
	meta     service.MetadataResolver
	log      *logrus.Logger

	snapshots *cache.Tiered[*service.Snapshot]
	typeMeta  *cache.Tiered[*service.ResourceMeta]
	elements  *cache.Tiered[*service.ElementDefinition]
	children  *cache.Tiered[[]service.ElementDefinition]

	// packageContext namespaces element and children cache keys so
	// navigators with different root packages never collide on a
	// shared cold tier.
	packageContext string
}

// Config carries the resolver's collaborators and caches.
type Config struct {
	Provider service.SnapshotProvider
	Meta     service.MetadataResolver
	Logger   *logrus.Logger

	Snapshots *cache.Tiered[*service.Snapshot]
	TypeMeta  *cache.Tiered[*service.ResourceMeta]
	Elements  *cache.Tiered[*service.ElementDefinition]
	Children  *cache.Tiered[[]service.ElementDefinition]

	PackageContext string
}

// New creates a Resolver. Missing caches are created with default
// capacities and no cold tier; a missing logger discards output.
func New(cfg Config) *Resolver {
	r := &Resolver{
		provider:       cfg.Provider,
		meta:           cfg.Meta,
		log:            cfg.Logger,
		snapshots:      cfg.Snapshots,
		typeMeta:       cfg.TypeMeta,
		elements:       cfg.Elements,
		children:       cfg.Children,
		packageContext: cfg.PackageContext,
	}
	if r.log == nil {
		r.log = logrus.New()
		r.log.SetOutput(io.Discard)
	}
	if r.snapshots == nil {
		r.snapshots = cache.NewTiered[*service.Snapshot](cache.DefaultSnapshotCapacity, nil)
	}
	if r.typeMeta == nil {
		r.typeMeta = cache.NewTiered[*service.ResourceMeta](cache.DefaultTypeMetaCapacity, nil)
	}
	if r.elements == nil {
		r.elements = cache.NewTiered[*service.ElementDefinition](cache.DefaultElementCapacity, nil)
	}
	if r.children == nil {
		r.children = cache.NewTiered[[]service.ElementDefinition](cache.DefaultChildrenCapacity, nil)
	}
	return r
}

// PackageContext returns the cache-namespace string.
func (r *Resolver) PackageContext() string {
	return r.packageContext
}

// SnapshotCacheStats returns hot-tier metrics of the snapshot cache.
func (r *Resolver) SnapshotCacheStats() cache.Stats {
	return r.snapshots.Stats()
}

// ElementCacheStats returns hot-tier metrics of the element cache.
func (r *Resolver) ElementCacheStats() cache.Stats {
	return r.elements.Stats()
}

// ChildrenCacheStats returns hot-tier metrics of the children cache.
func (r *Resolver) ChildrenCacheStats() cache.Stats {
	return r.children.Stats()
}
