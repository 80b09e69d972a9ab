package ports

import "go.trai.ch/fans/internal/core/domain"

// LockStore is the persisted name@constraint cache of resolutions.
// All methods are safe for concurrent use.
//
//go:generate mockgen -source=lock_store.go -destination=mocks/mock_lock_store.go -package=mocks
type LockStore interface {
	// Load reads the lockfile at path. A missing file yields an empty cache.
	Load(path string) error

	// Get returns the entry for name@constraint.
	Get(name, constraint string) (domain.LockEntry, bool)

	// Put writes or overwrites the entry under key.
	Put(key string, entry domain.LockEntry)

	// Prune drops loaded entries that were not written during this run.
	Prune()

	// Flush persists the cache to the path given to Load.
	Flush() error
}
