package fhirnavigator

import (
	"github.com/gofhir/navigator/service"
)

// FHIRVersion represents a FHIR specification version.
type FHIRVersion string

// Supported FHIR versions.
const (
	// R4 is FHIR Release 4 (4.0.1)
	R4 FHIRVersion = "R4"
	// R4B is FHIR Release 4B (4.3.0)
	R4B FHIRVersion = "R4B"
	// R5 is FHIR Release 5 (5.0.0)
	R5 FHIRVersion = "R5"
)

// String returns the version string.
func (v FHIRVersion) String() string {
	return string(v)
}

// IsValid returns true if this is a supported FHIR version.
func (v FHIRVersion) IsValid() bool {
	switch v {
	case R4, R4B, R5:
		return true
	default:
		return false
	}
}

// corePackages maps FHIR versions to their core package coordinates.
var corePackages = map[FHIRVersion]service.PackageRef{
	R4:  {ID: "hl7.fhir.r4.core", Version: "4.0.1"},
	R4B: {ID: "hl7.fhir.r4b.core", Version: "4.3.0"},
	R5:  {ID: "hl7.fhir.r5.core", Version: "5.0.0"},
}

// CorePackage returns the core package coordinates for a FHIR version.
func CorePackage(v FHIRVersion) (service.PackageRef, bool) {
	pkg, ok := corePackages[v]
	return pkg, ok
}
