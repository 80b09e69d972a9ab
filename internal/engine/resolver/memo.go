package resolver

import (
	"context"
	"sync"

	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/fans/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

// memo caches registry manifests for one run. Concurrent requests for the
// same name share a single fetch. Failures are not cached.
type memo struct {
	registry ports.Registry
	group    singleflight.Group

	mu        sync.RWMutex
	manifests map[string]*domain.Manifest
}

func newMemo(registry ports.Registry) *memo {
	return &memo{
		registry:  registry,
		manifests: make(map[string]*domain.Manifest),
	}
}

func (m *memo) fetch(ctx context.Context, name string) (*domain.Manifest, error) {
	m.mu.RLock()
	manifest, ok := m.manifests[name]
	m.mu.RUnlock()
	if ok {
		return manifest, nil
	}

	v, err, _ := m.group.Do(name, func() (any, error) {
		m.mu.RLock()
		cached, ok := m.manifests[name]
		m.mu.RUnlock()
		if ok {
			return cached, nil
		}

		manifest, err := m.registry.Fetch(ctx, name)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.manifests[name] = manifest
		m.mu.Unlock()
		return manifest, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Manifest), nil
}
