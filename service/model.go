// Package service defines the navigator's data model and the small
// interfaces of its external collaborators. Following Go's philosophy
// of small interfaces, each interface has 1-3 methods.
package service

import (
	"strings"
)

// SystemTypePrefix marks FHIRPath system primitive type codes.
const SystemTypePrefix = "http://hl7.org/fhirpath/System."

// KindSystem is the type kind assigned to FHIRPath system primitives.
const KindSystem = "system"

// Structure definition kinds.
const (
	KindPrimitiveType = "primitive-type"
	KindComplexType   = "complex-type"
	KindResource      = "resource"
	KindLogical       = "logical"
)

// PackageRef identifies a FHIR package by id and version.
type PackageRef struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

// String returns the package reference as "id@version", or the bare id
// when the version is empty or "latest".
func (p PackageRef) String() string {
	if p.Version == "" || p.Version == "latest" {
		return p.ID
	}
	return p.ID + "@" + p.Version
}

// IsZero reports whether the reference is empty.
func (p PackageRef) IsZero() bool {
	return p.ID == "" && p.Version == ""
}

// TypeRef represents a type reference in an ElementDefinition.
type TypeRef struct {
	Code          string   `json:"code"`
	Profile       []string `json:"profile,omitempty"`
	TargetProfile []string `json:"targetProfile,omitempty"`

	// Kind is the structure definition kind of the referenced type,
	// filled in by enrichment. System primitives get KindSystem.
	Kind string `json:"__kind,omitempty"`
}

// Binding represents a terminology binding.
type Binding struct {
	Strength    string `json:"strength,omitempty"`
	ValueSet    string `json:"valueSet,omitempty"`
	Description string `json:"description,omitempty"`
}

// Constraint represents a FHIRPath constraint.
type Constraint struct {
	Key        string `json:"key,omitempty"`
	Severity   string `json:"severity,omitempty"`
	Human      string `json:"human,omitempty"`
	Expression string `json:"expression,omitempty"`
	XPath      string `json:"xpath,omitempty"`
	Source     string `json:"source,omitempty"`
}

// Slicing represents element slicing rules.
type Slicing struct {
	Discriminator []Discriminator `json:"discriminator,omitempty"`
	Description   string          `json:"description,omitempty"`
	Ordered       bool            `json:"ordered,omitempty"`
	Rules         string          `json:"rules,omitempty"`
}

// Discriminator defines how slices are differentiated.
type Discriminator struct {
	Type string `json:"type,omitempty"`
	Path string `json:"path,omitempty"`
}

// Mapping maps an element to a concept in an external specification.
type Mapping struct {
	Identity string `json:"identity,omitempty"`
	Language string `json:"language,omitempty"`
	Map      string `json:"map,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// ElementDefinition is one node of a snapshot, identified by a
// dot-and-colon structured id.
type ElementDefinition struct {
	ID               string       `json:"id,omitempty"`
	Path             string       `json:"path,omitempty"`
	SliceName        string       `json:"sliceName,omitempty"`
	Min              int          `json:"min,omitempty"`
	Max              string       `json:"max,omitempty"`
	Types            []TypeRef    `json:"type,omitempty"`
	ContentReference string       `json:"contentReference,omitempty"`
	Constraints      []Constraint `json:"constraint,omitempty"`
	Binding          *Binding     `json:"binding,omitempty"`
	Slicing          *Slicing     `json:"slicing,omitempty"`
	Fixed            any          `json:"fixed,omitempty"`
	Pattern          any          `json:"pattern,omitempty"`
	DefaultValue     any          `json:"defaultValue,omitempty"`

	// Verbose documentation fields, cleared by enrichment.
	Short              string    `json:"short,omitempty"`
	Definition         string    `json:"definition,omitempty"`
	Comment            string    `json:"comment,omitempty"`
	Requirements       string    `json:"requirements,omitempty"`
	Alias              []string  `json:"alias,omitempty"`
	Mapping            []Mapping `json:"mapping,omitempty"`
	MustSupport        bool      `json:"mustSupport,omitempty"`
	IsSummary          bool      `json:"isSummary,omitempty"`
	IsModifier         bool      `json:"isModifier,omitempty"`
	IsModifierReason   string    `json:"isModifierReason,omitempty"`
	MeaningWhenMissing string    `json:"meaningWhenMissing,omitempty"`
	Example            any       `json:"example,omitempty"`
	Representation     []string  `json:"representation,omitempty"`

	// Enrichment outputs.
	FromDefinition string     `json:"__fromDefinition,omitempty"`
	CorePackage    PackageRef `json:"__corePackage,omitempty"`
	PackageID      string     `json:"__packageId,omitempty"`
	PackageVersion string     `json:"__packageVersion,omitempty"`
	Names          []string   `json:"__name,omitempty"`
}

// IsChoice reports whether the element is polymorphic.
func (e *ElementDefinition) IsChoice() bool {
	return strings.HasSuffix(e.ID, "[x]")
}

// TypeCodes returns the codes of all type entries in order.
func (e *ElementDefinition) TypeCodes() []string {
	if len(e.Types) == 0 {
		return nil
	}
	codes := make([]string, len(e.Types))
	for i, t := range e.Types {
		codes[i] = t.Code
	}
	return codes
}

// Clone returns a deep copy. Fixed, Pattern, DefaultValue and Example
// are shared; they are treated as immutable once loaded.
func (e *ElementDefinition) Clone() *ElementDefinition {
	if e == nil {
		return nil
	}
	out := *e
	if e.Types != nil {
		out.Types = make([]TypeRef, len(e.Types))
		for i, t := range e.Types {
			out.Types[i] = t
			out.Types[i].Profile = append([]string(nil), t.Profile...)
			out.Types[i].TargetProfile = append([]string(nil), t.TargetProfile...)
		}
	}
	out.Constraints = append([]Constraint(nil), e.Constraints...)
	out.Alias = append([]string(nil), e.Alias...)
	out.Mapping = append([]Mapping(nil), e.Mapping...)
	out.Representation = append([]string(nil), e.Representation...)
	out.Names = append([]string(nil), e.Names...)
	if e.Binding != nil {
		b := *e.Binding
		out.Binding = &b
	}
	if e.Slicing != nil {
		s := *e.Slicing
		s.Discriminator = append([]Discriminator(nil), e.Slicing.Discriminator...)
		out.Slicing = &s
	}
	return &out
}

// Snapshot is the fully-resolved, ordered element list for one
// structure definition, together with its origin coordinates.
type Snapshot struct {
	ID             string `json:"id,omitempty"`
	URL            string `json:"url,omitempty"`
	Name           string `json:"name,omitempty"`
	Type           string `json:"type,omitempty"`
	Kind           string `json:"kind,omitempty"`
	BaseDefinition string `json:"baseDefinition,omitempty"`
	FHIRVersion    string `json:"fhirVersion,omitempty"`

	Elements []ElementDefinition `json:"element,omitempty"`

	CorePackage    PackageRef `json:"__corePackage,omitempty"`
	PackageID      string     `json:"__packageId,omitempty"`
	PackageVersion string     `json:"__packageVersion,omitempty"`
}

// Root returns the first element of the snapshot, or nil when the
// snapshot carries no elements.
func (s *Snapshot) Root() *ElementDefinition {
	if s == nil || len(s.Elements) == 0 {
		return nil
	}
	return &s.Elements[0]
}

// FindByID returns the element with the given id, or nil.
func (s *Snapshot) FindByID(id string) *ElementDefinition {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return &s.Elements[i]
		}
	}
	return nil
}

// Package returns the snapshot's own package coordinates.
func (s *Snapshot) Package() PackageRef {
	return PackageRef{ID: s.PackageID, Version: s.PackageVersion}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	if s.Elements != nil {
		out.Elements = make([]ElementDefinition, len(s.Elements))
		for i := range s.Elements {
			out.Elements[i] = *s.Elements[i].Clone()
		}
	}
	return &out
}
