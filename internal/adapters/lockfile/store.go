// Package lockfile implements the persisted lock cache.
package lockfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/fans/internal/core/ports"
	"go.trai.ch/zerr"
)

// Store implements ports.LockStore using a single JSON file.
type Store struct {
	logger ports.Logger

	mu      sync.RWMutex
	path    string
	loaded  map[string]domain.LockEntry
	written map[string]domain.LockEntry
}

// NewStore creates an empty Store. Call Load before Flush.
func NewStore(logger ports.Logger) *Store {
	return &Store{
		logger:  logger,
		loaded:  make(map[string]domain.LockEntry),
		written: make(map[string]domain.LockEntry),
	}
}

// Load reads the lockfile at path. A missing file leaves the cache empty.
// A file that fails its integrity check is discarded with a warning.
func (s *Store) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.path = filepath.Clean(path)
	s.loaded = make(map[string]domain.LockEntry)

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(domain.ErrLockReadFailed, err.Error()), "path", s.path)
	}
	if len(data) == 0 {
		return nil
	}

	var lf domain.Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		s.logger.Warn(fmt.Sprintf("ignoring unreadable lockfile %s: %v", s.path, err))
		return nil
	}
	if lf.Version != domain.LockfileVersion {
		s.logger.Warn(fmt.Sprintf("ignoring lockfile %s with unknown version %d", s.path, lf.Version))
		return nil
	}

	sum, err := checksum(lf.Entries)
	if err != nil {
		return err
	}
	if sum != lf.Checksum {
		s.logger.Warn(fmt.Sprintf("ignoring lockfile %s: checksum mismatch", s.path))
		return nil
	}

	if lf.Entries != nil {
		s.loaded = lf.Entries
	}
	return nil
}

// Get returns the entry for name@constraint, preferring entries written
// during this run over loaded ones.
func (s *Store) Get(name, constraint string) (domain.LockEntry, bool) {
	key := domain.LockKey(name, constraint)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.written[key]; ok {
		return e, true
	}
	e, ok := s.loaded[key]
	return e, ok
}

// Put records an entry written during this run.
func (s *Store) Put(key string, entry domain.LockEntry) {
	s.mu.Lock()
	s.written[key] = entry
	s.mu.Unlock()
}

// Prune drops every loaded entry that was not re-written during this run.
func (s *Store) Prune() {
	s.mu.Lock()
	s.loaded = make(map[string]domain.LockEntry)
	s.mu.Unlock()
}

// Flush writes loaded and written entries to the lockfile atomically.
func (s *Store) Flush() error {
	s.mu.RLock()
	path := s.path
	entries := make(map[string]domain.LockEntry, len(s.loaded)+len(s.written))
	for k, v := range s.loaded {
		entries[k] = v
	}
	for k, v := range s.written {
		entries[k] = v
	}
	s.mu.RUnlock()

	if path == "" {
		return domain.ErrLockNotLoaded
	}

	sum, err := checksum(entries)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(domain.Lockfile{
		Version:  domain.LockfileVersion,
		Checksum: sum,
		Entries:  entries,
	}, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrLockMarshalFailed.Error())
	}
	data = append(data, '\n')

	if err := atomicWriteFile(path, data); err != nil {
		return zerr.With(err, "path", path)
	}
	return nil
}

// checksum hashes the canonical encoding of entries. encoding/json writes
// map keys sorted, so equal maps hash equally.
func checksum(entries map[string]domain.LockEntry) (string, error) {
	if entries == nil {
		entries = map[string]domain.LockEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrLockMarshalFailed.Error())
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}

func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrLockWriteFailed.Error())
	}

	tmp, err := os.CreateTemp(dir, ".fans-lock-*.tmp")
	if err != nil {
		return zerr.Wrap(err, domain.ErrLockWriteFailed.Error())
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrLockWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrLockWriteFailed.Error())
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrLockWriteFailed.Error())
	}
	if err := os.Rename(tmpName, path); err != nil {
		return zerr.Wrap(err, domain.ErrLockWriteFailed.Error())
	}
	return nil
}
