// Package fhirnavigator resolves FSH-style dotted paths against FHIR
// StructureDefinition snapshots.
//
// Given a snapshot id and a path like "identifier.value.extension" or
// "value[CodeableConcept]", the navigator returns either the single
// matching element definition or the immediate children of that
// element, following polymorphic narrowing, slice resolution
// (including virtual slices that hop into standalone profiles), and
// cross-snapshot rebasing through base types, profiles, and
// contentReference targets.
//
// # Quick Start
//
//	import (
//	    fn "github.com/gofhir/navigator"
//	    "github.com/gofhir/navigator/loader"
//	)
//
//	store := loader.NewMemoryStore(corePkg)
//	// load snapshots into the store ...
//
//	nav, err := fn.New(store, store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	elem, err := nav.GetElement(ctx, "us-core-patient", "gender")
//	kids, err := nav.GetChildren(ctx, "Patient", "identifier")
//
// # Caching
//
// The navigator owns four caches (snapshots, type metadata, elements,
// children), each a bounded in-memory LRU optionally backed by a
// pluggable cold store shared across processes. Cold-tier failures are
// absorbed; cold writes never block resolution. Element and children
// keys are namespaced by the navigator's package context, so two
// navigators with different root packages can safely share a cold
// tier.
//
// # Functional Options
//
//	nav, err := fn.New(store, store,
//	    fn.WithLogger(logger),
//	    fn.WithCacheSizes(100, 500, 2000, 500),
//	    fn.WithElementColdStore(redisStore),
//	)
package fhirnavigator
