package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofhir/fhir/r4"

	"github.com/gofhir/navigator/service"
)

// LoadStats contains statistics about package loading.
type LoadStats struct {
	StructureDefinitions int64
	Skipped              int64
	Errors               int64
	PackagesLoaded       int
}

// packageManifest is the subset of package.json the loader reads.
type packageManifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// LoadPackageDir loads all StructureDefinition files of an unpacked
// FHIR package directory into the store. Package coordinates come from
// the package.json manifest; core identifies the core package the
// definitions resolve base types against. A zero core means the
// package is its own core (the hl7.fhir.*.core packages).
func LoadPackageDir(store *MemoryStore, packageDir string, core service.PackageRef) (*LoadStats, error) {
	stats := &LoadStats{}

	// FHIR packages keep content under a "package" subdirectory.
	contentDir := packageDir
	packageSubDir := filepath.Join(packageDir, "package")
	if _, err := os.Stat(packageSubDir); err == nil {
		contentDir = packageSubDir
	}

	manifest, err := readManifest(contentDir)
	if err != nil {
		return nil, err
	}
	pkg := service.PackageRef{ID: manifest.Name, Version: manifest.Version}
	if core.IsZero() {
		core = pkg
	}

	entries, err := os.ReadDir(contentDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read package directory: %w", err)
	}

	converter := NewR4Converter()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "StructureDefinition-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		if err := loadFile(store, converter, filepath.Join(contentDir, name), name, pkg, core, stats); err != nil {
			atomic.AddInt64(&stats.Errors, 1)
		}
	}

	stats.PackagesLoaded = 1
	return stats, nil
}

func readManifest(contentDir string) (*packageManifest, error) {
	data, err := os.ReadFile(filepath.Join(contentDir, "package.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read package manifest: %w", err)
	}
	var manifest packageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse package manifest: %w", err)
	}
	return &manifest, nil
}

// loadFile parses one StructureDefinition file and stores it. Files
// without a snapshot are skipped; the navigator only works on fully
// resolved element lists.
func loadFile(store *MemoryStore, converter *R4Converter, path, filename string, pkg, core service.PackageRef, stats *LoadStats) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var sd r4.StructureDefinition
	if err := json.Unmarshal(data, &sd); err != nil {
		return err
	}

	snap := converter.ConvertStructureDefinition(&sd)
	if snap == nil || len(snap.Elements) == 0 {
		atomic.AddInt64(&stats.Skipped, 1)
		return nil
	}

	snap.PackageID = pkg.ID
	snap.PackageVersion = pkg.Version
	snap.CorePackage = core

	if err := store.AddWithFilename(snap, filename); err != nil {
		return err
	}
	atomic.AddInt64(&stats.StructureDefinitions, 1)
	return nil
}
