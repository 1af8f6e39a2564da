package walker

import (
	"context"
	"slices"

	"github.com/gofhir/navigator/fshpath"
	"github.com/gofhir/navigator/pool"
	"github.com/gofhir/navigator/service"
)

// sliceResult carries a resolved slice element and, for virtual-slice
// hops, the snapshot (and its reference) the traversal continues in.
type sliceResult struct {
	element  *service.ElementDefinition
	snapshot *service.Snapshot
	ref      service.SnapshotRef
}

// resolveSlice resolves the bracket token of a segment against the
// resolved base element b: a real slice in the element list, the "[x]"
// choice head, a polymorphic type narrowing, or a virtual slice that
// rebases into a standalone profile.
func (r *Resolver) resolveSlice(ctx context.Context, snap *service.Snapshot, normID string, b *service.ElementDefinition, sliceName string) (sliceResult, error) {
	if e := snap.FindByID(pool.SliceID(b.ID, sliceName)); e != nil {
		return sliceResult{element: e.Clone()}, nil
	}

	if b.IsChoice() {
		if sliceName == "x" {
			return sliceResult{element: b.Clone()}, nil
		}
		for i := range b.Types {
			t := b.Types[i]
			if t.Code != sliceName {
				continue
			}
			inferred := fshpath.InferredName(b.ID, t.Code)
			if e := snap.FindByID(pool.SliceID(b.ID, inferred)); e != nil {
				return sliceResult{element: e.Clone()}, nil
			}
			narrowed := b.Clone()
			narrowed.Types = []service.TypeRef{t}
			narrowed.Names = []string{inferred}
			return sliceResult{element: narrowed}, nil
		}
	}

	res, found, err := r.tryResolveSnapshot(ctx, sliceName, b, normID)
	if err != nil {
		return sliceResult{}, err
	}
	if found {
		r.log.WithField("slice", sliceName).WithField("profile", res.snapshot.URL).
			Debug("virtual slice resolved to profile")
		return res, nil
	}

	return sliceResult{}, &service.NotFoundError{
		Segment:      sliceName,
		PreviousPath: b.Path,
		SnapshotID:   normID,
		Reason:       "not a known slice, valid type, or resolvable StructureDefinition",
	}
}

// tryResolveSnapshot resolves a bracket token as a StructureDefinition
// id or canonical URL: first through a metadata lookup scoped to the
// core package, then through a generic snapshot fetch. Absence is
// reported as found == false; a type incompatible with the parent
// element is the only error condition.
func (r *Resolver) tryResolveSnapshot(ctx context.Context, id string, b *service.ElementDefinition, normID string) (sliceResult, bool, error) {
	allowed := b.TypeCodes()
	corePkg := b.CorePackage

	recs, err := r.meta.Lookup(ctx, service.MetaQuery{
		ResourceType: "StructureDefinition",
		ID:           id,
		Package:      &corePkg,
	})
	if err == nil && len(recs) == 1 {
		rec := recs[0]
		if !slices.Contains(allowed, rec.Type) {
			return sliceResult{}, false, &service.SliceMismatchError{
				Slice:        id,
				ResolvedType: rec.Type,
				Allowed:      allowed,
				ParentPath:   b.Path,
				SnapshotID:   normID,
			}
		}
		ref := service.ByEntry(rec.PackageID, rec.PackageVersion, rec.Filename)
		snap, err := r.fetchSnapshot(ctx, ref, nil)
		if err != nil {
			return sliceResult{}, false, nil
		}
		root := snap.Root()
		if root == nil {
			return sliceResult{}, false, nil
		}
		return sliceResult{element: root.Clone(), snapshot: snap, ref: ref}, true, nil
	}

	ref := service.ByID(id)
	snap, err := r.fetchSnapshot(ctx, ref, nil)
	if err != nil {
		return sliceResult{}, false, nil
	}
	if !slices.Contains(allowed, snap.Type) {
		return sliceResult{}, false, &service.SliceMismatchError{
			Slice:        id,
			ResolvedType: snap.Type,
			Allowed:      allowed,
			ParentPath:   b.Path,
			SnapshotID:   normID,
		}
	}
	root := snap.Root()
	if root == nil {
		return sliceResult{}, false, nil
	}
	return sliceResult{element: root.Clone(), snapshot: snap, ref: ref}, true, nil
}
