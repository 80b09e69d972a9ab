package domain

// LockfileVersion is the schema version written to the lockfile.
const LockfileVersion = 1

// LockEntry is a persisted resolution of one name@constraint request.
type LockEntry struct {
	// Version is the concrete version the request resolved to.
	Version string `json:"version"`

	// URL is the tarball location of that version.
	URL string `json:"url"`

	// Shasum is the hex encoded SHA-1 digest of the tarball.
	Shasum string `json:"shasum,omitempty"`

	// Dependencies is the dependency map the version declares.
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Lockfile is the on-disk form of the lock cache.
type Lockfile struct {
	// Version is the lockfile format version.
	Version int `json:"lockfileVersion"`

	// Checksum is the xxhash64 of the encoded entries, in hex.
	Checksum string `json:"checksum"`

	// Entries maps name@constraint keys to their resolution.
	Entries map[string]LockEntry `json:"entries"`
}

// LockKey builds the lock cache key for a request.
// An unconstrained request is keyed as "name@".
func LockKey(name, constraint string) string {
	return name + "@" + constraint
}

// ToManifest turns a lock entry into a single-version manifest so the
// resolver can treat lock hits and registry fetches alike.
func (e LockEntry) ToManifest(name string) *Manifest {
	return &Manifest{
		Name: name,
		Versions: map[string]VersionManifest{
			e.Version: {
				Dependencies: e.Dependencies,
				Dist:         Dist{Tarball: e.URL, Shasum: e.Shasum},
			},
		},
		Order: []string{e.Version},
	}
}

// NewLockEntry captures the resolution of a version from its manifest record.
func NewLockEntry(version string, vm VersionManifest) LockEntry {
	return LockEntry{
		Version:      version,
		URL:          vm.Dist.Tarball,
		Shasum:       vm.Dist.Shasum,
		Dependencies: vm.Dependencies,
	}
}
