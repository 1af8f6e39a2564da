package walker

import (
	"context"
	"strings"

	"github.com/gofhir/navigator/cache"
	"github.com/gofhir/navigator/fshpath"
	"github.com/gofhir/navigator/service"
)

// enrichSnapshot normalizes a freshly fetched snapshot: tags every
// element with its origin, strips verbose documentation fields,
// classifies type kinds, and computes FSH-style names.
func (r *Resolver) enrichSnapshot(ctx context.Context, snap *service.Snapshot) {
	for i := range snap.Elements {
		r.enrichElement(ctx, snap, &snap.Elements[i])
	}
}

func (r *Resolver) enrichElement(ctx context.Context, snap *service.Snapshot, e *service.ElementDefinition) {
	e.FromDefinition = snap.URL
	e.CorePackage = snap.CorePackage
	e.PackageID = snap.PackageID
	e.PackageVersion = snap.PackageVersion

	stripVerbose(e)

	for i := range e.Types {
		t := &e.Types[i]
		if strings.HasPrefix(t.Code, service.SystemTypePrefix) {
			t.Kind = service.KindSystem
			continue
		}
		if meta := r.lookupTypeMeta(ctx, t.Code, snap.CorePackage); meta != nil && meta.Kind != "" {
			t.Kind = meta.Kind
		}
	}

	e.Names = fshNames(e)
}

// stripVerbose removes the documentation fields that only inflate
// cached snapshots.
func stripVerbose(e *service.ElementDefinition) {
	e.Short = ""
	e.Definition = ""
	e.Comment = ""
	e.Requirements = ""
	e.Alias = nil
	e.Mapping = nil
	e.MustSupport = false
	e.IsSummary = false
	e.IsModifier = false
	e.IsModifierReason = ""
	e.MeaningWhenMissing = ""
	e.Example = nil
	e.Representation = nil
	for i := range e.Constraints {
		e.Constraints[i].XPath = ""
	}
}

// lookupTypeMeta resolves a type code to its metadata record within
// the core package, through the type-meta cache. Lookup failures are
// swallowed; the element's kind is simply left unset.
func (r *Resolver) lookupTypeMeta(ctx context.Context, code string, corePkg service.PackageRef) *service.ResourceMeta {
	key := cache.Key{code, corePkg.ID, corePkg.Version}
	if m, ok := r.typeMeta.Get(ctx, key); ok {
		return m
	}

	m, err := r.meta.ResolveMeta(ctx, service.MetaQuery{
		ResourceType: "StructureDefinition",
		ID:           code,
		Package:      &corePkg,
	})
	if err != nil {
		r.log.WithField("type", code).WithError(err).Warn("type metadata lookup failed")
		return nil
	}
	if m == nil {
		return nil
	}
	r.typeMeta.Set(ctx, key, m)
	return m
}

// fshNames computes the ordered FSH-style names of an element:
// "valueString" for a narrowed choice, the plain segment name for a
// mono-typed element, one name per type for an open choice, and the
// referenced segment for contentReference elements.
func fshNames(e *service.ElementDefinition) []string {
	last := fshpath.LastSegment(e.Path)
	choice := strings.HasSuffix(last, "[x]")
	base := strings.TrimSuffix(last, "[x]")

	switch {
	case len(e.Types) == 1 && choice:
		return []string{base + fshpath.InitCap(e.Types[0].Code)}
	case len(e.Types) == 1:
		return []string{last}
	case len(e.Types) > 1 && choice:
		names := make([]string, 0, len(e.Types))
		for _, t := range e.Types {
			names = append(names, base+fshpath.InitCap(t.Code))
		}
		return names
	case e.ContentReference != "":
		return []string{fshpath.LastSegment(e.ContentReference)}
	}
	return nil
}
