package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a resource cannot be found.
var ErrNotFound = errors.New("resource not found")

// NotFoundError reports that a path segment could not be resolved
// under the previous element after all matching, slice, and rebasing
// strategies were tried.
type NotFoundError struct {
	// Segment is the failing path segment or bracket token.
	Segment string

	// PreviousPath is the path of the last successfully resolved
	// element.
	PreviousPath string

	// SnapshotID is the normalized id of the snapshot searched.
	SnapshotID string

	// Reason optionally refines the message.
	Reason string
}

func (e *NotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%q under %s in structure %s: %s",
			e.Segment, e.PreviousPath, e.SnapshotID, e.Reason)
	}
	return fmt.Sprintf("element %q not found under %s in structure %s",
		e.Segment, e.PreviousPath, e.SnapshotID)
}

// Is supports errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// SliceMismatchError reports that a bracket token resolved to a
// StructureDefinition whose base type is not allowed under the parent
// element.
type SliceMismatchError struct {
	Slice        string
	ResolvedType string
	Allowed      []string
	ParentPath   string
	SnapshotID   string
}

func (e *SliceMismatchError) Error() string {
	return fmt.Sprintf("slice %q under %s in structure %s resolved to type %s, which is not one of the allowed types (%s)",
		e.Slice, e.ParentPath, e.SnapshotID, e.ResolvedType, strings.Join(e.Allowed, ", "))
}

// AmbiguousChoiceError reports a children resolution on a terminal
// element with more than one possible type.
type AmbiguousChoiceError struct {
	Path       string
	SnapshotID string
	Types      []string
}

func (e *AmbiguousChoiceError) Error() string {
	return fmt.Sprintf("cannot resolve children for choice-type element %s in structure %s: %d possible types (%s)",
		e.Path, e.SnapshotID, len(e.Types), strings.Join(e.Types, ", "))
}

// UpstreamError wraps a failure of the SnapshotProvider or the
// MetadataResolver.
type UpstreamError struct {
	Op         string
	SnapshotID string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s for %s: %v", e.Op, e.SnapshotID, e.Err)
}

// Unwrap returns the underlying error.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}
