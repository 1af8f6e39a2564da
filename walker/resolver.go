package walker

import (
	"context"
	"strings"

	"github.com/gofhir/navigator/cache"
	"github.com/gofhir/navigator/fshpath"
	"github.com/gofhir/navigator/pool"
	"github.com/gofhir/navigator/service"
)

// GetElement resolves an FSH path to a single enriched element.
func (r *Resolver) GetElement(ctx context.Context, ref service.SnapshotRef, fshPath string) (*service.ElementDefinition, error) {
	return r.resolvePath(ctx, ref, fshpath.Split(fshPath), nil, nil)
}

// resolvePath walks the segments through the snapshot identified by
// ref. The filter constrains the snapshot fetch and namespaces the
// cache keys; cameFrom is the element a virtual-slice hop originated
// from and shapes the names of the hop target's root.
func (r *Resolver) resolvePath(ctx context.Context, ref service.SnapshotRef, segments []string, filter *service.PackageRef, cameFrom *service.ElementDefinition) (*service.ElementDefinition, error) {
	ctxKey := r.contextKey(filter)
	normID := ref.Normalized()
	fullPath := fshpath.Join(segments)
	fullKey := cache.Key{ctxKey, normID, fullPath}

	if e, ok := r.elements.Get(ctx, fullKey); ok {
		return e.Clone(), nil
	}

	snap, err := r.fetchSnapshot(ctx, ref, filter)
	if err != nil {
		return nil, err
	}
	root := snap.Root()
	if root == nil {
		return nil, &service.UpstreamError{Op: "get snapshot", SnapshotID: normID, Err: service.ErrNotFound}
	}

	if len(segments) == 0 {
		e := r.rootElement(snap, cameFrom)
		r.elements.Set(ctx, fullKey, e.Clone())
		return e, nil
	}

	current := root
	currentPath := root.ID

	for i, raw := range segments {
		prefixKey := cache.Key{ctxKey, normID, fshpath.Join(segments[:i+1])}
		if e, ok := r.elements.Get(ctx, prefixKey); ok {
			current = e
			currentPath = e.ID
			continue
		}

		seg := fshpath.ParseSegment(raw)
		searchPath := pool.ChildID(currentPath, seg.Base)
		prev := current

		m, ok := matchElement(snap.Elements, searchPath)
		if !ok {
			elem, handled, err := r.rebase(ctx, snap, prev, segments[i:])
			if err != nil {
				return nil, err
			}
			if handled {
				r.elements.Set(ctx, fullKey, elem.Clone())
				return elem, nil
			}
			return nil, &service.NotFoundError{
				Segment:      seg.Base,
				PreviousPath: prev.Path,
				SnapshotID:   normID,
			}
		}

		current = m.element
		if m.narrowed != nil {
			inferred := fshpath.InferredName(m.element.ID, m.narrowed.Code)
			if e := snap.FindByID(pool.SliceID(m.element.ID, inferred)); e != nil {
				current = e
			} else {
				narrowed := m.element.Clone()
				narrowed.Types = []service.TypeRef{*m.narrowed}
				narrowed.Names = []string{inferred}
				current = narrowed
			}
		}

		if seg.Slice != "" {
			res, err := r.resolveSlice(ctx, snap, normID, current, seg.Slice)
			if err != nil {
				return nil, err
			}
			if res.snapshot != nil && res.snapshot.URL != snap.URL {
				hop, err := r.resolvePath(ctx, res.ref, segments[i+1:], nil, current)
				if err != nil {
					return nil, err
				}
				r.elements.Set(ctx, fullKey, hop.Clone())
				return hop, nil
			}
			current = res.element
		}

		currentPath = current.ID
		r.elements.Set(ctx, prefixKey, current.Clone())
	}

	return current.Clone(), nil
}

// rootElement builds the element returned for the empty path: the
// snapshot root typed as the snapshot itself. The cameFrom element, if
// any, donates its names; multi-name donors are filtered to the names
// matching the snapshot's type.
func (r *Resolver) rootElement(snap *service.Snapshot, cameFrom *service.ElementDefinition) *service.ElementDefinition {
	e := snap.Root().Clone()
	e.Types = []service.TypeRef{{Code: snap.Type, Kind: snap.Kind}}

	if cameFrom == nil {
		return e
	}
	if len(cameFrom.Names) > 1 {
		suffix := fshpath.InitCap(snap.Type)
		var names []string
		for _, n := range cameFrom.Names {
			if strings.HasSuffix(n, suffix) {
				names = append(names, n)
			}
		}
		e.Names = names
	} else {
		e.Names = append([]string(nil), cameFrom.Names...)
	}
	return e
}
