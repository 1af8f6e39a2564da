package walker

import (
	"context"
	"strings"

	"github.com/gofhir/navigator/cache"
	"github.com/gofhir/navigator/fshpath"
	"github.com/gofhir/navigator/service"
)

// GetChildren resolves an FSH path and returns the immediate children
// of the resolved element, in snapshot order.
func (r *Resolver) GetChildren(ctx context.Context, ref service.SnapshotRef, fshPath string) ([]service.ElementDefinition, error) {
	return r.resolveChildren(ctx, ref, fshPath, nil)
}

func (r *Resolver) resolveChildren(ctx context.Context, ref service.SnapshotRef, fshPath string, filter *service.PackageRef) ([]service.ElementDefinition, error) {
	normID := ref.Normalized()
	key := cache.Key{r.packageContext, normID, fshPath}
	if kids, ok := r.children.Get(ctx, key); ok {
		return cloneElements(kids), nil
	}

	resolved, err := r.resolvePath(ctx, ref, fshpath.Split(fshPath), filter, nil)
	if err != nil {
		return nil, err
	}
	parentID := resolved.ID

	snap, err := r.fetchSnapshot(ctx, ref, filter)
	if err != nil {
		return nil, err
	}

	// A parent supplied by another snapshot (deep rebase or virtual
	// slice) moves the children lookup there.
	cacheKey := key
	if resolved.FromDefinition != "" && resolved.FromDefinition != snap.URL {
		actualRef := service.ByID(resolved.FromDefinition)
		cacheKey = cache.Key{r.packageContext, actualRef.Normalized(), fshPath}
		if kids, ok := r.children.Get(ctx, cacheKey); ok {
			return cloneElements(kids), nil
		}
		snap, err = r.fetchSnapshot(ctx, actualRef, nil)
		if err != nil {
			return nil, err
		}
	}

	kids := directChildren(snap, parentID)
	if len(kids) > 0 {
		r.children.Set(ctx, cacheKey, kids)
		return cloneElements(kids), nil
	}

	if resolved.ContentReference != "" {
		refPath := contentReferencePath(resolved.ContentReference, snap.Type)
		kids, err := r.resolveChildren(ctx, service.ByID(snap.Type), refPath, nil)
		if err != nil {
			return nil, err
		}
		r.children.Set(ctx, cacheKey, kids)
		return cloneElements(kids), nil
	}

	if len(resolved.Types) > 1 {
		return nil, &service.AmbiguousChoiceError{
			Path:       resolved.Path,
			SnapshotID: normID,
			Types:      resolved.TypeCodes(),
		}
	}

	if len(resolved.Types) == 1 {
		t := resolved.Types[0]
		var kids []service.ElementDefinition
		if len(t.Profile) > 0 {
			kids, err = r.resolveChildren(ctx, service.ByID(canonicalTail(t.Profile[0])), fshpath.Root, nil)
		} else {
			core := snap.CorePackage
			kids, err = r.resolveChildren(ctx, service.ByID(t.Code), fshpath.Root, &core)
		}
		if err != nil {
			return nil, err
		}
		r.children.Set(ctx, cacheKey, kids)
		return cloneElements(kids), nil
	}

	r.children.Set(ctx, cacheKey, []service.ElementDefinition{})
	return []service.ElementDefinition{}, nil
}

// directChildren selects the elements one level below parentID, in
// snapshot order: ids of the form parentID + "." + suffix where the
// suffix holds no further dot.
func directChildren(snap *service.Snapshot, parentID string) []service.ElementDefinition {
	prefix := parentID + "."
	var kids []service.ElementDefinition
	for i := range snap.Elements {
		id := snap.Elements[i].ID
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if strings.Contains(id[len(prefix):], ".") {
			continue
		}
		kids = append(kids, *snap.Elements[i].Clone())
	}
	return kids
}

// canonicalTail returns the last path segment of a canonical URL,
// ignoring any "|version" suffix.
func canonicalTail(canonical string) string {
	tail := canonical[strings.LastIndex(canonical, "/")+1:]
	if i := strings.IndexByte(tail, '|'); i >= 0 {
		tail = tail[:i]
	}
	return tail
}

func cloneElements(elements []service.ElementDefinition) []service.ElementDefinition {
	out := make([]service.ElementDefinition, len(elements))
	for i := range elements {
		out[i] = *elements[i].Clone()
	}
	return out
}
