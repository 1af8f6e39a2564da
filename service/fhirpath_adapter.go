package service

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gofhir/fhirpath"
)

// FHIRPathProjector renders resolved elements as FHIRPath expressions
// and compiles them, caching compiled expressions for reuse.
type FHIRPathProjector struct {
	mu    sync.RWMutex
	cache map[string]*fhirpath.Expression
}

// NewFHIRPathProjector creates a new projector with an empty
// expression cache.
func NewFHIRPathProjector() *FHIRPathProjector {
	return &FHIRPathProjector{
		cache: make(map[string]*fhirpath.Expression),
	}
}

// Project renders the FHIRPath expression selecting an element's
// value. Choice segments lose their "[x]" marker; a terminal choice
// narrowed to a single type becomes an ofType() cast:
//
//	Extension.value[x] + [string] -> Extension.value.ofType(String)
//	Patient.name.given            -> Patient.name.given
func (p *FHIRPathProjector) Project(e *ElementDefinition) string {
	if e == nil {
		return ""
	}

	segments := strings.Split(e.Path, ".")
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strings.TrimSuffix(seg, "[x]"))
	}

	last := segments[len(segments)-1]
	if strings.HasSuffix(last, "[x]") && len(e.Types) == 1 && e.Types[0].Code != "" {
		code := e.Types[0].Code
		b.WriteString(".ofType(")
		b.WriteString(strings.ToUpper(code[:1]) + code[1:])
		b.WriteByte(')')
	}
	return b.String()
}

// Compile projects the element and compiles the resulting expression,
// consulting the cache first.
func (p *FHIRPathProjector) Compile(e *ElementDefinition) (*fhirpath.Expression, error) {
	expr := p.Project(e)
	if expr == "" {
		return nil, fmt.Errorf("element has no path")
	}

	p.mu.RLock()
	compiled, ok := p.cache[expr]
	p.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	compiled, err := fhirpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile FHIRPath expression '%s': %w", expr, err)
	}

	p.mu.Lock()
	p.cache[expr] = compiled
	p.mu.Unlock()
	return compiled, nil
}

// CacheSize returns the number of cached expressions.
func (p *FHIRPathProjector) CacheSize() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.cache)
}

// ClearCache clears the expression cache.
func (p *FHIRPathProjector) ClearCache() {
	p.mu.Lock()
	p.cache = make(map[string]*fhirpath.Expression)
	p.mu.Unlock()
}
