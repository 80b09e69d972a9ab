package domain

import "go.trai.ch/zerr"

// Dist describes where the artifact of a published version lives.
type Dist struct {
	// Tarball is the URL of the gzipped package archive.
	Tarball string

	// Shasum is the hex encoded SHA-1 digest of the archive.
	Shasum string
}

// VersionManifest is the registry record of one published version.
type VersionManifest struct {
	// Dependencies maps dependency names to the range this version declares.
	Dependencies map[string]string

	// Dist locates the artifact.
	Dist Dist
}

// Manifest is the immutable registry record of a package name.
// Versions holds every published version. Order lists the same versions in
// publication order, oldest first.
type Manifest struct {
	Name     string
	Versions map[string]VersionManifest
	Order    []string
}

// Latest returns the most recently published version.
func (m *Manifest) Latest() (string, bool) {
	if len(m.Order) == 0 {
		return "", false
	}
	return m.Order[len(m.Order)-1], true
}

// Match picks the version a consumer declaring constraint receives: the
// most recently published version when the constraint is empty, otherwise
// the highest version satisfying it.
func (m *Manifest) Match(constraint string) (string, error) {
	if IsUnconstrained(constraint) {
		if latest, ok := m.Latest(); ok {
			return latest, nil
		}
		return "", m.noMatch(constraint)
	}

	matched, err := MaxSatisfying(m.Order, constraint)
	if err != nil {
		return "", zerr.With(err, "package", m.Name)
	}
	if matched == "" {
		return "", m.noMatch(constraint)
	}
	return matched, nil
}

func (m *Manifest) noMatch(constraint string) error {
	err := zerr.With(zerr.Wrap(ErrNoSatisfyingVersion, "failed to match version"), "package", m.Name)
	return zerr.With(err, "constraint", constraint)
}
