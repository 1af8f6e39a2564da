package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gofhir/navigator/service"
)

var (
	testCorePkg = service.PackageRef{ID: "hl7.fhir.r4.core", Version: "4.0.1"}
	testExtPkg  = service.PackageRef{ID: "hl7.fhir.us.core", Version: "5.0.1"}
)

func snap(id, url, name, typ, kind string, pkg service.PackageRef) *service.Snapshot {
	return &service.Snapshot{
		ID: id, URL: url, Name: name, Type: typ, Kind: kind,
		Elements: []service.ElementDefinition{
			{ID: typ, Path: typ},
		},
		CorePackage:    testCorePkg,
		PackageID:      pkg.ID,
		PackageVersion: pkg.Version,
	}
}

func TestMemoryStoreGetSnapshotByID(t *testing.T) {
	store := NewMemoryStore(testCorePkg)
	patient := snap("Patient", "http://hl7.org/fhir/StructureDefinition/Patient",
		"Patient", "Patient", service.KindResource, testCorePkg)
	if err := store.Add(patient); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx := context.Background()

	for _, id := range []string{"Patient", "http://hl7.org/fhir/StructureDefinition/Patient"} {
		got, err := store.GetSnapshot(ctx, service.ByID(id), nil)
		if err != nil {
			t.Fatalf("GetSnapshot(%q): %v", id, err)
		}
		if got.ID != "Patient" {
			t.Errorf("GetSnapshot(%q).ID = %q", id, got.ID)
		}
	}

	_, err := store.GetSnapshot(ctx, service.ByID("Observation"), nil)
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("missing snapshot err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreGetSnapshotByEntry(t *testing.T) {
	store := NewMemoryStore(testCorePkg)
	patient := snap("Patient", "http://hl7.org/fhir/StructureDefinition/Patient",
		"Patient", "Patient", service.KindResource, testCorePkg)
	if err := store.AddWithFilename(patient, "StructureDefinition-Patient.json"); err != nil {
		t.Fatalf("AddWithFilename: %v", err)
	}

	ref := service.ByEntry(testCorePkg.ID, testCorePkg.Version, "StructureDefinition-Patient.json")
	got, err := store.GetSnapshot(context.Background(), ref, nil)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if got.ID != "Patient" {
		t.Errorf("ID = %q", got.ID)
	}

	missing := service.ByEntry(testCorePkg.ID, testCorePkg.Version, "StructureDefinition-Observation.json")
	if _, err := store.GetSnapshot(context.Background(), missing, nil); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("missing entry err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStorePackageFilter(t *testing.T) {
	store := NewMemoryStore(testCorePkg, testExtPkg)

	core := snap("vitalsigns", "http://hl7.org/fhir/StructureDefinition/vitalsigns",
		"VitalSigns", "Observation", service.KindResource, testCorePkg)
	uscore := snap("vitalsigns", "http://hl7.org/fhir/us/core/StructureDefinition/vitalsigns",
		"USCoreVitalSigns", "Observation", service.KindResource, testExtPkg)
	if err := store.AddWithFilename(core, "StructureDefinition-vitalsigns-core.json"); err != nil {
		t.Fatal(err)
	}
	if err := store.AddWithFilename(uscore, "StructureDefinition-vitalsigns-uscore.json"); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	// Ambiguous without a filter.
	if _, err := store.GetSnapshot(ctx, service.ByID("vitalsigns"), nil); err == nil {
		t.Error("ambiguous lookup should fail")
	}

	got, err := store.GetSnapshot(ctx, service.ByID("vitalsigns"), &testExtPkg)
	if err != nil {
		t.Fatalf("filtered GetSnapshot: %v", err)
	}
	if got.PackageID != testExtPkg.ID {
		t.Errorf("PackageID = %q, want %q", got.PackageID, testExtPkg.ID)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore(testCorePkg)
	patient := snap("Patient", "http://hl7.org/fhir/StructureDefinition/Patient",
		"Patient", "Patient", service.KindResource, testCorePkg)
	if err := store.Add(patient); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	first, err := store.GetSnapshot(ctx, service.ByID("Patient"), nil)
	if err != nil {
		t.Fatal(err)
	}
	first.Elements[0].ID = "mutated"

	second, err := store.GetSnapshot(ctx, service.ByID("Patient"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.Elements[0].ID != "Patient" {
		t.Error("caller mutation leaked into the store")
	}
}

func TestMemoryStoreResolveMeta(t *testing.T) {
	store := NewMemoryStore(testCorePkg)
	patient := snap("Patient", "http://hl7.org/fhir/StructureDefinition/Patient",
		"Patient", "Patient", service.KindResource, testCorePkg)
	if err := store.AddWithFilename(patient, "StructureDefinition-Patient.json"); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	meta, err := store.ResolveMeta(ctx, service.MetaQuery{
		ResourceType: "StructureDefinition",
		ID:           "Patient",
		Package:      &testCorePkg,
	})
	if err != nil {
		t.Fatalf("ResolveMeta: %v", err)
	}
	if meta == nil {
		t.Fatal("ResolveMeta returned nil for a unique match")
	}
	if meta.Kind != service.KindResource || meta.Type != "Patient" {
		t.Errorf("meta = %+v", meta)
	}
	if meta.Filename != "StructureDefinition-Patient.json" {
		t.Errorf("Filename = %q", meta.Filename)
	}

	// No match resolves to nil, not an error.
	meta, err = store.ResolveMeta(ctx, service.MetaQuery{ResourceType: "StructureDefinition", ID: "Observation"})
	if err != nil || meta != nil {
		t.Errorf("no-match ResolveMeta = %v, %v; want nil, nil", meta, err)
	}

	// Other resource types are not served.
	meta, err = store.ResolveMeta(ctx, service.MetaQuery{ResourceType: "ValueSet", ID: "Patient"})
	if err != nil || meta != nil {
		t.Errorf("foreign-type ResolveMeta = %v, %v; want nil, nil", meta, err)
	}
}

func TestMemoryStoreNormalizedRootPackages(t *testing.T) {
	store := NewMemoryStore(testExtPkg, testCorePkg, testCorePkg)

	want := []service.PackageRef{testCorePkg, testExtPkg}
	if diff := cmp.Diff(want, store.NormalizedRootPackages()); diff != "" {
		t.Errorf("NormalizedRootPackages mismatch (-want +got):\n%s", diff)
	}

	// The returned slice is a copy.
	pkgs := store.NormalizedRootPackages()
	pkgs[0].ID = "mutated"
	if store.NormalizedRootPackages()[0].ID != testCorePkg.ID {
		t.Error("caller mutation leaked into the store")
	}
}
