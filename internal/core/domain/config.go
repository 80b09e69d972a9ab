package domain

import (
	"runtime"
	"time"
)

const (
	// DefaultTimeout is the HTTP timeout for registry and tarball requests.
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is the registry retry budget.
	DefaultRetries = 3
)

// Config holds the settings of a run.
type Config struct {
	// Registry is the base URL of the package registry.
	Registry string
	// Concurrency bounds the number of parallel installs.
	Concurrency int
	// ResolveJobs bounds the fan-out of each resolver level. Zero or less
	// means unlimited.
	ResolveJobs int
	// Lockfile is the lockfile name relative to the project root.
	Lockfile string
	// ModulesDir is the modules directory name.
	ModulesDir string
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
	// Retries is the number of registry retries after the first attempt.
	Retries int
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Registry:    DefaultRegistryURL,
		Concurrency: runtime.NumCPU(),
		Lockfile:    DefaultLockFileName,
		ModulesDir:  DefaultModulesDirName,
		Timeout:     DefaultTimeout,
		Retries:     DefaultRetries,
	}
}
