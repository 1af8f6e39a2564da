package walker

import (
	"context"
	"strings"

	"github.com/gofhir/navigator/service"
)

// rebase continues resolution in another snapshot when the current one
// has no element for the next segment. The previous element dictates
// the target: its contentReference, its single type's profile, or its
// single type's base definition. The boolean reports whether a rebase
// strategy applied at all.
func (r *Resolver) rebase(ctx context.Context, snap *service.Snapshot, prev *service.ElementDefinition, rest []string) (*service.ElementDefinition, bool, error) {
	if prev == nil {
		return nil, false, nil
	}

	if prev.ContentReference != "" {
		refPath := contentReferencePath(prev.ContentReference, snap.Type)
		segments := append(strings.Split(refPath, "."), rest...)
		core := snap.CorePackage
		r.log.WithField("contentReference", prev.ContentReference).Debug("rebasing through content reference")
		elem, err := r.resolvePath(ctx, service.ByID(snap.Type), segments, &core, nil)
		return elem, true, err
	}

	if len(prev.Types) == 1 {
		t := prev.Types[0]
		if len(t.Profile) > 0 {
			filter := snap.Package()
			r.log.WithField("profile", t.Profile[0]).Debug("rebasing into profile")
			elem, err := r.resolvePath(ctx, service.ByID(t.Profile[0]), rest, &filter, nil)
			return elem, true, err
		}
		core := snap.CorePackage
		r.log.WithField("type", t.Code).Debug("rebasing into base type")
		elem, err := r.resolvePath(ctx, service.ByID(t.Code), rest, &core, nil)
		return elem, true, err
	}

	return nil, false, nil
}

// contentReferencePath strips the leading "#" and, when present, the
// "<snapshotType>." prefix from a contentReference target.
func contentReferencePath(ref, snapshotType string) string {
	path := strings.TrimPrefix(ref, "#")
	return strings.TrimPrefix(path, snapshotType+".")
}
