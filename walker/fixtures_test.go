package walker

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofhir/navigator/loader"
	"github.com/gofhir/navigator/service"
)

var (
	corePkg   = service.PackageRef{ID: "hl7.fhir.r4.core", Version: "4.0.1"}
	usCorePkg = service.PackageRef{ID: "hl7.fhir.us.core", Version: "5.0.1"}
)

const (
	coreBase   = "http://hl7.org/fhir/StructureDefinition/"
	usCoreBase = "http://hl7.org/fhir/us/core/StructureDefinition/"

	systemString = service.SystemTypePrefix + "String"
)

// ed builds an element whose path is its id with slice names removed.
func ed(id string, types ...service.TypeRef) service.ElementDefinition {
	return service.ElementDefinition{ID: id, Path: pathOf(id), Types: types}
}

func pathOf(id string) string {
	segs := strings.Split(id, ".")
	for i, s := range segs {
		if c := strings.IndexByte(s, ':'); c >= 0 {
			segs[i] = s[:c]
		}
	}
	return strings.Join(segs, ".")
}

func tr(code string) service.TypeRef {
	return service.TypeRef{Code: code}
}

func trProfile(code string, profiles ...string) service.TypeRef {
	return service.TypeRef{Code: code, Profile: profiles}
}

func coreSnapshot(id, name, typ, kind string, elements ...service.ElementDefinition) *service.Snapshot {
	return &service.Snapshot{
		ID:             id,
		URL:            coreBase + id,
		Name:           name,
		Type:           typ,
		Kind:           kind,
		Elements:       elements,
		CorePackage:    corePkg,
		PackageID:      corePkg.ID,
		PackageVersion: corePkg.Version,
	}
}

func usCoreSnapshot(id, name, typ, kind string, elements ...service.ElementDefinition) *service.Snapshot {
	return &service.Snapshot{
		ID:             id,
		URL:            usCoreBase + id,
		Name:           name,
		Type:           typ,
		Kind:           kind,
		BaseDefinition: coreBase + typ,
		Elements:       elements,
		CorePackage:    corePkg,
		PackageID:      usCorePkg.ID,
		PackageVersion: usCorePkg.Version,
	}
}

func primitiveSnapshot(id string) *service.Snapshot {
	return coreSnapshot(id, id, id, service.KindPrimitiveType,
		ed(id),
		ed(id+".id", tr(systemString)),
		ed(id+".extension", tr("Extension")),
		ed(id+".value", tr(systemString)),
	)
}

// newFixtureStore assembles a miniature package ecosystem: a few core
// R4 definitions plus a US Core patient profile and race extension.
func newFixtureStore() *loader.MemoryStore {
	store := loader.NewMemoryStore(corePkg, usCorePkg)

	patient := coreSnapshot("Patient", "Patient", "Patient", service.KindResource,
		ed("Patient"),
		ed("Patient.id", tr(systemString)),
		ed("Patient.extension", tr("Extension")),
		ed("Patient.identifier", tr("Identifier")),
		ed("Patient.name", tr("HumanName")),
		ed("Patient.gender", tr("code")),
		ed("Patient.deceased[x]", tr("boolean"), tr("dateTime")),
		ed("Patient.link", tr("BackboneElement")),
		ed("Patient.link.other", tr("Reference")),
	)

	identifierValue := ed("Patient.identifier.value", tr("string"))
	identifierValue.Short = "The value that is unique"
	identifierValue.Definition = "The portion of the identifier relevant to the user."
	identifierValue.MustSupport = true
	identifierValue.Constraints = []service.Constraint{{
		Key:        "ele-1",
		Severity:   "error",
		Human:      "All FHIR elements must have a @value or children",
		Expression: "hasValue() or (children().count() > id.count())",
		XPath:      "@value|f:*|h:div",
	}}

	usCorePatient := usCoreSnapshot("us-core-patient", "USCorePatientProfile", "Patient", service.KindResource,
		ed("Patient"),
		ed("Patient.id", tr(systemString)),
		ed("Patient.extension", tr("Extension")),
		ed("Patient.extension:race", trProfile("Extension", usCoreBase+"us-core-race")),
		ed("Patient.identifier", tr("Identifier")),
		identifierValue,
		ed("Patient.name", tr("HumanName")),
		ed("Patient.gender", tr("code")),
	)

	extension := coreSnapshot("Extension", "Extension", "Extension", service.KindComplexType,
		ed("Extension"),
		ed("Extension.id", tr(systemString)),
		ed("Extension.extension", tr("Extension")),
		ed("Extension.url", tr(systemString)),
		ed("Extension.value[x]",
			tr("string"), tr("boolean"), tr("dateTime"), tr("CodeableConcept"), tr("Quantity")),
	)

	raceURL := ed("Extension.url", tr(systemString))
	raceURL.Fixed = usCoreBase + "us-core-race"

	usCoreRace := usCoreSnapshot("us-core-race", "USCoreRaceExtension", "Extension", service.KindComplexType,
		ed("Extension"),
		ed("Extension.id", tr(systemString)),
		ed("Extension.extension", tr("Extension")),
		ed("Extension.extension:ombCategory", tr("Extension")),
		ed("Extension.extension:text", tr("Extension")),
		raceURL,
	)

	identifier := coreSnapshot("Identifier", "Identifier", "Identifier", service.KindComplexType,
		ed("Identifier"),
		ed("Identifier.use", tr("code")),
		ed("Identifier.type", tr("CodeableConcept")),
		ed("Identifier.system", tr("uri")),
		ed("Identifier.value", tr("string")),
	)

	bundleEntryLink := ed("Bundle.entry.link")
	bundleEntryLink.ContentReference = "#Bundle.link"

	bundle := coreSnapshot("Bundle", "Bundle", "Bundle", service.KindResource,
		ed("Bundle"),
		ed("Bundle.id", tr(systemString)),
		ed("Bundle.type", tr("code")),
		ed("Bundle.link", tr("BackboneElement")),
		ed("Bundle.link.relation", tr("string")),
		ed("Bundle.link.url", tr("uri")),
		ed("Bundle.entry", tr("BackboneElement")),
		bundleEntryLink,
		ed("Bundle.entry.fullUrl", tr("uri")),
		ed("Bundle.entry.resource", tr("Resource")),
	)

	observation := coreSnapshot("Observation", "Observation", "Observation", service.KindResource,
		ed("Observation"),
		ed("Observation.code", tr("CodeableConcept")),
		ed("Observation.value[x]",
			tr("Quantity"), tr("CodeableConcept"), tr("string"), tr("boolean"), tr("dateTime")),
		ed("Observation.value[x]:valueQuantity", tr("Quantity")),
	)

	humanName := coreSnapshot("HumanName", "HumanName", "HumanName", service.KindComplexType,
		ed("HumanName"),
		ed("HumanName.family", tr("string")),
		ed("HumanName.given", tr("string")),
	)

	codeableConcept := coreSnapshot("CodeableConcept", "CodeableConcept", "CodeableConcept", service.KindComplexType,
		ed("CodeableConcept"),
		ed("CodeableConcept.coding", tr("Coding")),
		ed("CodeableConcept.text", tr("string")),
	)

	quantity := coreSnapshot("Quantity", "Quantity", "Quantity", service.KindComplexType,
		ed("Quantity"),
		ed("Quantity.value", tr("decimal")),
		ed("Quantity.unit", tr("string")),
	)

	for _, snap := range []*service.Snapshot{
		patient, usCorePatient, extension, usCoreRace, identifier, bundle,
		observation, humanName, codeableConcept, quantity,
		primitiveSnapshot("string"),
		primitiveSnapshot("uri"),
		primitiveSnapshot("code"),
		primitiveSnapshot("boolean"),
		primitiveSnapshot("dateTime"),
		primitiveSnapshot("canonical"),
		primitiveSnapshot("decimal"),
	} {
		if err := store.Add(snap); err != nil {
			panic(err)
		}
	}
	return store
}

// countingMeta counts ResolveMeta calls per queried id.
type countingMeta struct {
	inner        service.MetadataResolver
	resolveCalls atomic.Int64

	mu    sync.Mutex
	perID map[string]int
}

func (m *countingMeta) ResolveMeta(ctx context.Context, q service.MetaQuery) (*service.ResourceMeta, error) {
	m.resolveCalls.Add(1)
	m.mu.Lock()
	if m.perID == nil {
		m.perID = make(map[string]int)
	}
	m.perID[q.ID]++
	m.mu.Unlock()
	return m.inner.ResolveMeta(ctx, q)
}

func (m *countingMeta) Lookup(ctx context.Context, q service.MetaQuery) ([]service.ResourceMeta, error) {
	return m.inner.Lookup(ctx, q)
}

func (m *countingMeta) NormalizedRootPackages() []service.PackageRef {
	return m.inner.NormalizedRootPackages()
}

func (m *countingMeta) countFor(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.perID[id]
}

// countingProvider counts GetSnapshot calls through to the store.
type countingProvider struct {
	inner service.SnapshotProvider
	calls atomic.Int64
}

func (p *countingProvider) GetSnapshot(ctx context.Context, ref service.SnapshotRef, filter *service.PackageRef) (*service.Snapshot, error) {
	p.calls.Add(1)
	return p.inner.GetSnapshot(ctx, ref, filter)
}

const testPackageContext = `[{"id":"hl7.fhir.r4.core","version":"4.0.1"},{"id":"hl7.fhir.us.core","version":"5.0.1"}]`

func newTestResolver() (*Resolver, *countingProvider) {
	store := newFixtureStore()
	counting := &countingProvider{inner: store}
	r := New(Config{
		Provider:       counting,
		Meta:           store,
		PackageContext: testPackageContext,
	})
	return r, counting
}
