package fhirnavigator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gofhir/fhirpath"
	"github.com/sirupsen/logrus"

	"github.com/gofhir/navigator/cache"
	"github.com/gofhir/navigator/service"
	"github.com/gofhir/navigator/walker"
)

// Navigator resolves FSH paths against structure definition snapshots.
// It is safe for concurrent use; concurrent resolutions share the
// caches but are not de-duplicated.
type Navigator struct {
	provider service.SnapshotProvider
	meta     service.MetadataResolver
	log      *logrus.Logger

	resolver       *walker.Resolver
	projector      *service.FHIRPathProjector
	packageContext string
	batchLimit     int
}

// New creates a Navigator over the given snapshot provider and
// metadata resolver. The package context is captured once, from the
// resolver's normalized root packages, and namespaces the element and
// children caches for the navigator's lifetime.
func New(provider service.SnapshotProvider, meta service.MetadataResolver, opts ...Option) (*Navigator, error) {
	if provider == nil {
		return nil, errors.New("fhirnavigator: snapshot provider is required")
	}
	if meta == nil {
		return nil, errors.New("fhirnavigator: metadata resolver is required")
	}

	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	log := o.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	ctxBytes, err := json.Marshal(meta.NormalizedRootPackages())
	if err != nil {
		return nil, fmt.Errorf("fhirnavigator: encode package context: %w", err)
	}

	n := &Navigator{
		provider:       provider,
		meta:           meta,
		log:            log,
		projector:      service.NewFHIRPathProjector(),
		packageContext: string(ctxBytes),
		batchLimit:     o.BatchConcurrency,
	}
	n.resolver = walker.New(walker.Config{
		Provider:       provider,
		Meta:           meta,
		Logger:         log,
		Snapshots:      cache.NewTiered[*service.Snapshot](o.SnapshotCacheSize, o.SnapshotColdStore),
		TypeMeta:       cache.NewTiered[*service.ResourceMeta](o.TypeMetaCacheSize, o.TypeMetaColdStore),
		Elements:       cache.NewTiered[*service.ElementDefinition](o.ElementCacheSize, o.ElementColdStore),
		Children:       cache.NewTiered[[]service.ElementDefinition](o.ChildrenCacheSize, o.ChildrenColdStore),
		PackageContext: string(ctxBytes),
	})
	return n, nil
}

// GetElement resolves an FSH path to a single enriched element.
// The snapshot id may be a StructureDefinition id, a base type name
// like "Patient", or a canonical URL.
func (n *Navigator) GetElement(ctx context.Context, snapshotID, fshPath string) (*service.ElementDefinition, error) {
	return n.resolver.GetElement(ctx, service.ByID(snapshotID), fshPath)
}

// GetElementRef is GetElement for a structured snapshot reference.
func (n *Navigator) GetElementRef(ctx context.Context, ref service.SnapshotRef, fshPath string) (*service.ElementDefinition, error) {
	return n.resolver.GetElement(ctx, ref, fshPath)
}

// GetChildren resolves an FSH path and returns the immediate children
// of the resolved element, in snapshot order.
func (n *Navigator) GetChildren(ctx context.Context, snapshotID, fshPath string) ([]service.ElementDefinition, error) {
	return n.resolver.GetChildren(ctx, service.ByID(snapshotID), fshPath)
}

// GetChildrenRef is GetChildren for a structured snapshot reference.
func (n *Navigator) GetChildrenRef(ctx context.Context, ref service.SnapshotRef, fshPath string) ([]service.ElementDefinition, error) {
	return n.resolver.GetChildren(ctx, ref, fshPath)
}

// FHIRPathFor renders the FHIRPath expression selecting a resolved
// element's value, narrowed choices as ofType() casts.
func (n *Navigator) FHIRPathFor(e *service.ElementDefinition) string {
	return n.projector.Project(e)
}

// CompileFHIRPathFor renders and compiles the FHIRPath expression for
// a resolved element, reusing compiled expressions across calls.
func (n *Navigator) CompileFHIRPathFor(e *service.ElementDefinition) (*fhirpath.Expression, error) {
	return n.projector.Compile(e)
}

// SnapshotProvider returns the configured snapshot provider.
func (n *Navigator) SnapshotProvider() service.SnapshotProvider {
	return n.provider
}

// MetadataResolver returns the configured metadata resolver.
func (n *Navigator) MetadataResolver() service.MetadataResolver {
	return n.meta
}

// Logger returns the configured logger.
func (n *Navigator) Logger() *logrus.Logger {
	return n.log
}

// PackageContext returns the canonical JSON of the navigator's
// normalized root packages.
func (n *Navigator) PackageContext() string {
	return n.packageContext
}

// CacheStats reports hot-tier metrics for the navigator's caches.
type CacheStats struct {
	Snapshots cache.Stats
	Elements  cache.Stats
	Children  cache.Stats
}

// Stats returns point-in-time cache metrics.
func (n *Navigator) Stats() CacheStats {
	return CacheStats{
		Snapshots: n.resolver.SnapshotCacheStats(),
		Elements:  n.resolver.ElementCacheStats(),
		Children:  n.resolver.ChildrenCacheStats(),
	}
}
