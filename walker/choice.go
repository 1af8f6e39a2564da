package walker

import (
	"regexp"
	"strings"

	"github.com/gofhir/navigator/fshpath"
	"github.com/gofhir/navigator/service"
)

// match is the result of locating an element for a search path. A
// non-nil narrowed type means the search path addressed one concrete
// type of a polymorphic element.
type match struct {
	element  *service.ElementDefinition
	narrowed *service.TypeRef
}

// bracketRe splits a search path carrying a trailing bracket token.
var bracketRe = regexp.MustCompile(`^(.+)\[([^\]]+)\]$`)

// matchElement scans the snapshot's elements in order and returns the
// first element matching the search path. Per element it tries, in
// order: direct id match (plain or "[x]"-suffixed), canonical suffix
// narrowing ("Extension.valueString" against "Extension.value[x]"),
// and bracket narrowing ("value[CodeableConcept]" forms). Scanning in
// element order makes an explicit element win over a narrowing of a
// choice head listed after it; a choice head listed earlier claims the
// search path first.
func matchElement(elements []service.ElementDefinition, searchPath string) (match, bool) {
	var outer, inner string
	if bm := bracketRe.FindStringSubmatch(searchPath); bm != nil {
		outer, inner = bm[1], bm[2]
	}

	for i := range elements {
		e := &elements[i]

		if e.ID == searchPath || e.ID == searchPath+"[x]" {
			return match{element: e}, true
		}

		if !strings.HasSuffix(e.ID, "[x]") {
			continue
		}
		base := e.ID[:len(e.ID)-3]

		for ti := range e.Types {
			if base+fshpath.InitCap(e.Types[ti].Code) == searchPath {
				return match{element: e, narrowed: &e.Types[ti]}, true
			}
		}

		if outer != "" && e.ID == outer+"[x]" {
			if inner == "x" {
				return match{element: e}, true
			}
			for ti := range e.Types {
				capped := fshpath.InitCap(e.Types[ti].Code)
				if inner == capped || inner == outer+capped {
					return match{element: e, narrowed: &e.Types[ti]}, true
				}
			}
		}
	}
	return match{}, false
}
