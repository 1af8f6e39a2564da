package fhirnavigator

import (
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/gofhir/navigator/cache"
)

// Option configures the Navigator.
type Option func(*Options)

// Options holds all configuration for the Navigator.
type Options struct {
	// Logger receives debug and warning output. Nil means discard.
	Logger *logrus.Logger

	// Hot-tier cache capacities.
	SnapshotCacheSize int
	TypeMetaCacheSize int
	ElementCacheSize  int
	ChildrenCacheSize int

	// Optional cold tiers; any subset may be absent.
	SnapshotColdStore cache.ColdStore
	TypeMetaColdStore cache.ColdStore
	ElementColdStore  cache.ColdStore
	ChildrenColdStore cache.ColdStore

	// BatchConcurrency bounds GetElements fan-out.
	BatchConcurrency int
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		SnapshotCacheSize: cache.DefaultSnapshotCapacity,
		TypeMetaCacheSize: cache.DefaultTypeMetaCapacity,
		ElementCacheSize:  cache.DefaultElementCapacity,
		ChildrenCacheSize: cache.DefaultChildrenCapacity,
		BatchConcurrency:  runtime.NumCPU(),
	}
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(o *Options) {
		o.Logger = log
	}
}

// WithCacheSizes configures the four hot-tier capacities. Zero or
// negative values keep the defaults.
func WithCacheSizes(snapshots, typeMeta, elements, children int) Option {
	return func(o *Options) {
		if snapshots > 0 {
			o.SnapshotCacheSize = snapshots
		}
		if typeMeta > 0 {
			o.TypeMetaCacheSize = typeMeta
		}
		if elements > 0 {
			o.ElementCacheSize = elements
		}
		if children > 0 {
			o.ChildrenCacheSize = children
		}
	}
}

// WithSnapshotColdStore attaches a cold tier to the snapshot cache.
func WithSnapshotColdStore(store cache.ColdStore) Option {
	return func(o *Options) {
		o.SnapshotColdStore = store
	}
}

// WithTypeMetaColdStore attaches a cold tier to the type-meta cache.
func WithTypeMetaColdStore(store cache.ColdStore) Option {
	return func(o *Options) {
		o.TypeMetaColdStore = store
	}
}

// WithElementColdStore attaches a cold tier to the element cache.
func WithElementColdStore(store cache.ColdStore) Option {
	return func(o *Options) {
		o.ElementColdStore = store
	}
}

// WithChildrenColdStore attaches a cold tier to the children cache.
func WithChildrenColdStore(store cache.ColdStore) Option {
	return func(o *Options) {
		o.ChildrenColdStore = store
	}
}

// WithColdStores attaches cold tiers to all four caches at once. Nil
// entries leave the corresponding cache hot-only.
func WithColdStores(snapshots, typeMeta, elements, children cache.ColdStore) Option {
	return func(o *Options) {
		o.SnapshotColdStore = snapshots
		o.TypeMetaColdStore = typeMeta
		o.ElementColdStore = elements
		o.ChildrenColdStore = children
	}
}

// WithBatchConcurrency bounds the number of concurrent resolutions in
// GetElements. Defaults to runtime.NumCPU().
func WithBatchConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.BatchConcurrency = n
		}
	}
}
