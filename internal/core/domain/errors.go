package domain

import "go.trai.ch/zerr"

var (
	// ErrNoSatisfyingVersion is returned when no published version of a package satisfies the requested range.
	ErrNoSatisfyingVersion = zerr.New("no satisfying version")

	// ErrInvalidConstraint is returned when a version range cannot be parsed.
	ErrInvalidConstraint = zerr.New("invalid version constraint")

	// ErrEmptyPackageName is returned when a dependency is declared without a name.
	ErrEmptyPackageName = zerr.New("package name must not be empty")

	// ErrPackageNotFound is returned when the registry has no record of a package.
	ErrPackageNotFound = zerr.New("package not found in registry")

	// ErrRegistryUnavailable is returned when the registry cannot be reached or answers with a server error.
	ErrRegistryUnavailable = zerr.New("registry unavailable")

	// ErrRegistryParseFailed is returned when a registry document cannot be decoded.
	ErrRegistryParseFailed = zerr.New("failed to parse registry document")

	// ErrResolutionFailed is returned when the dependency graph cannot be resolved.
	ErrResolutionFailed = zerr.New("dependency resolution failed")

	// ErrInstallFailed is returned when one or more artifacts could not be installed.
	ErrInstallFailed = zerr.New("install failed")

	// ErrDownloadFailed is returned when a tarball cannot be downloaded.
	ErrDownloadFailed = zerr.New("failed to download tarball")

	// ErrChecksumMismatch is returned when a downloaded tarball does not match its published shasum.
	ErrChecksumMismatch = zerr.New("tarball checksum mismatch")

	// ErrExtractFailed is returned when a tarball cannot be extracted.
	ErrExtractFailed = zerr.New("failed to extract tarball")

	// ErrUnsafeArchivePath is returned when a tarball entry would be written outside its destination.
	ErrUnsafeArchivePath = zerr.New("archive entry escapes destination")

	// ErrProjectNotFound is returned when no package.json exists in the working directory or its parents.
	ErrProjectNotFound = zerr.New("could not find package.json")

	// ErrProjectReadFailed is returned when package.json cannot be read.
	ErrProjectReadFailed = zerr.New("failed to read package.json")

	// ErrProjectParseFailed is returned when package.json is not a valid JSON object.
	ErrProjectParseFailed = zerr.New("failed to parse package.json")

	// ErrProjectWriteFailed is returned when package.json cannot be written.
	ErrProjectWriteFailed = zerr.New("failed to write package.json")

	// ErrLockReadFailed is returned when the lockfile cannot be read.
	ErrLockReadFailed = zerr.New("failed to read lockfile")

	// ErrLockMarshalFailed is returned when the lockfile cannot be marshaled.
	ErrLockMarshalFailed = zerr.New("failed to marshal lockfile")

	// ErrLockWriteFailed is returned when the lockfile cannot be written.
	ErrLockWriteFailed = zerr.New("failed to write lockfile")

	// ErrLockNotLoaded is returned when the lockfile is flushed before it was loaded.
	ErrLockNotLoaded = zerr.New("lockfile was not loaded")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidPackageSpec is returned when a command line package argument cannot be parsed.
	ErrInvalidPackageSpec = zerr.New("invalid package specification, expected name or name@range")
)
