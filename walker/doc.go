// Package walker implements FSH path resolution over structure
// definition snapshots.
//
// The Resolver walks a dotted FSH path segment by segment through the
// ordered element list of a snapshot, narrowing polymorphic elements,
// resolving slices (including virtual slices that hop into standalone
// profiles), and rebasing into other snapshots when an element's type,
// profile, or contentReference dictates it. Every snapshot is enriched
// exactly once before entering the snapshot cache; resolved elements
// and children lists are cached under package-context-namespaced keys.
package walker
