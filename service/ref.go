package service

// SnapshotRef identifies a snapshot either by a string id (a
// StructureDefinition id, a base type name like "Patient", or a
// canonical URL) or by a concrete package entry.
type SnapshotRef struct {
	id    string
	entry *PackageEntry
}

// PackageEntry pins a snapshot to a file within a specific package.
type PackageEntry struct {
	PackageID      string `json:"__packageId"`
	PackageVersion string `json:"__packageVersion"`
	Filename       string `json:"filename"`
}

// ByID returns a reference by id, type name, or canonical URL.
func ByID(id string) SnapshotRef {
	return SnapshotRef{id: id}
}

// ByEntry returns a reference to a concrete file in a package.
func ByEntry(packageID, packageVersion, filename string) SnapshotRef {
	return SnapshotRef{entry: &PackageEntry{
		PackageID:      packageID,
		PackageVersion: packageVersion,
		Filename:       filename,
	}}
}

// ID returns the string id, empty for entry references.
func (r SnapshotRef) ID() string {
	return r.id
}

// Entry returns the package entry, nil for id references.
func (r SnapshotRef) Entry() *PackageEntry {
	return r.entry
}

// IsEntry reports whether the reference pins a package entry.
func (r SnapshotRef) IsEntry() bool {
	return r.entry != nil
}

// Normalized returns the cache-key form of the reference: the id
// itself, or "<pkgId>::<pkgVer>::<filename>" for entry references.
func (r SnapshotRef) Normalized() string {
	if r.entry != nil {
		return r.entry.PackageID + "::" + r.entry.PackageVersion + "::" + r.entry.Filename
	}
	return r.id
}

// String implements fmt.Stringer.
func (r SnapshotRef) String() string {
	return r.Normalized()
}
