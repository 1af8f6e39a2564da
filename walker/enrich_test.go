package walker

import (
	"context"
	"reflect"
	"testing"

	"github.com/gofhir/navigator/service"
)

func TestEnrichStripsVerboseFields(t *testing.T) {
	r, _ := newTestResolver()
	ctx := context.Background()

	elem, err := r.GetElement(ctx, service.ByID("us-core-patient"), "identifier.value")
	if err != nil {
		t.Fatalf("GetElement: %v", err)
	}

	if elem.Short != "" {
		t.Errorf("Short = %q, want empty", elem.Short)
	}
	if elem.Definition != "" {
		t.Errorf("Definition = %q, want empty", elem.Definition)
	}
	if elem.MustSupport {
		t.Error("MustSupport = true, want false")
	}
	if len(elem.Constraints) == 0 {
		t.Fatal("constraints were dropped entirely")
	}
	if elem.Constraints[0].XPath != "" {
		t.Errorf("Constraints[0].XPath = %q, want empty", elem.Constraints[0].XPath)
	}
	if elem.Constraints[0].Expression == "" {
		t.Error("constraint expression must survive enrichment")
	}
}

func TestEnrichOriginTags(t *testing.T) {
	r, _ := newTestResolver()
	ctx := context.Background()

	elem, err := r.GetElement(ctx, service.ByID("us-core-patient"), "gender")
	if err != nil {
		t.Fatalf("GetElement: %v", err)
	}

	if elem.FromDefinition != usCoreBase+"us-core-patient" {
		t.Errorf("FromDefinition = %q", elem.FromDefinition)
	}
	if elem.PackageID != usCorePkg.ID || elem.PackageVersion != usCorePkg.Version {
		t.Errorf("package coords = %s@%s", elem.PackageID, elem.PackageVersion)
	}
	if elem.CorePackage != corePkg {
		t.Errorf("CorePackage = %+v, want %+v", elem.CorePackage, corePkg)
	}
}

func TestEnrichSystemKind(t *testing.T) {
	r, _ := newTestResolver()
	ctx := context.Background()

	elem, err := r.GetElement(ctx, service.ByID("Extension"), "url")
	if err != nil {
		t.Fatalf("GetElement: %v", err)
	}
	if len(elem.Types) != 1 || elem.Types[0].Kind != service.KindSystem {
		t.Errorf("Types = %+v, want single system kind", elem.Types)
	}
}

func TestEnrichTypeKinds(t *testing.T) {
	r, _ := newTestResolver()
	ctx := context.Background()

	tests := []struct {
		path string
		kind string
	}{
		{path: "identifier", kind: service.KindComplexType},
		{path: "gender", kind: service.KindPrimitiveType},
	}
	for _, tt := range tests {
		elem, err := r.GetElement(ctx, service.ByID("Patient"), tt.path)
		if err != nil {
			t.Fatalf("GetElement(%s): %v", tt.path, err)
		}
		if elem.Types[0].Kind != tt.kind {
			t.Errorf("%s: Kind = %q, want %q", tt.path, elem.Types[0].Kind, tt.kind)
		}
	}
}

func TestEnrichUnknownTypeKindLeftUnset(t *testing.T) {
	r, _ := newTestResolver()
	ctx := context.Background()

	// BackboneElement has no snapshot in the fixture store; the
	// lookup failure is swallowed and the kind stays empty.
	elem, err := r.GetElement(ctx, service.ByID("Patient"), "link")
	if err != nil {
		t.Fatalf("GetElement: %v", err)
	}
	if elem.Types[0].Kind != "" {
		t.Errorf("Kind = %q, want empty", elem.Types[0].Kind)
	}
}

func TestFshNames(t *testing.T) {
	tests := []struct {
		name string
		elem service.ElementDefinition
		want []string
	}{
		{
			name: "single type plain element",
			elem: ed("Patient.gender", tr("code")),
			want: []string{"gender"},
		},
		{
			name: "single type choice element",
			elem: ed("Extension.value[x]", tr("string")),
			want: []string{"valueString"},
		},
		{
			name: "multi type choice element",
			elem: ed("Patient.deceased[x]", tr("boolean"), tr("dateTime")),
			want: []string{"deceasedBoolean", "deceasedDateTime"},
		},
		{
			name: "content reference element",
			elem: func() service.ElementDefinition {
				e := ed("Bundle.entry.link")
				e.ContentReference = "#Bundle.link"
				return e
			}(),
			want: []string{"link"},
		},
		{
			name: "no types no reference",
			elem: ed("Patient"),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fshNames(&tt.elem)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("fshNames = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnrichCachesTypeMeta(t *testing.T) {
	store := newFixtureStore()
	counting := &countingMeta{inner: store}
	r := New(Config{
		Provider:       store,
		Meta:           counting,
		PackageContext: testPackageContext,
	})
	ctx := context.Background()

	// Identifier appears on Patient and us-core-patient; the second
	// enrichment must hit the type-meta cache.
	if _, err := r.GetElement(ctx, service.ByID("Patient"), "identifier"); err != nil {
		t.Fatalf("GetElement: %v", err)
	}
	if _, err := r.GetElement(ctx, service.ByID("us-core-patient"), "identifier"); err != nil {
		t.Fatalf("GetElement: %v", err)
	}

	if got := counting.countFor("Identifier"); got != 1 {
		t.Errorf("Identifier resolved %d times, want 1", got)
	}
}
