package resolver_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/fans/internal/core/ports"
	"go.trai.ch/fans/internal/core/ports/mocks"
	"go.trai.ch/fans/internal/engine/resolver"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// fakeRegistry is an in-memory version catalog that counts fetches.
type fakeRegistry struct {
	mu        sync.Mutex
	manifests map[string]*domain.Manifest
	fetches   map[string]int
	failures  map[string]error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		manifests: make(map[string]*domain.Manifest),
		fetches:   make(map[string]int),
		failures:  make(map[string]error),
	}
}

// publish appends a version to name's manifest in publication order.
func (r *fakeRegistry) publish(name, version string, deps map[string]string) *fakeRegistry {
	m, ok := r.manifests[name]
	if !ok {
		m = &domain.Manifest{Name: name, Versions: make(map[string]domain.VersionManifest)}
		r.manifests[name] = m
	}
	m.Versions[version] = domain.VersionManifest{
		Dependencies: deps,
		Dist: domain.Dist{
			Tarball: fmt.Sprintf("https://registry.test/%s/-/%s-%s.tgz", name, name, version),
			Shasum:  name + "-" + version,
		},
	}
	m.Order = append(m.Order, version)
	return r
}

func (r *fakeRegistry) fail(name string, err error) {
	r.failures[name] = err
}

func (r *fakeRegistry) Fetch(_ context.Context, name string) (*domain.Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches[name]++
	if err, ok := r.failures[name]; ok {
		return nil, err
	}
	m, ok := r.manifests[name]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, "failed to fetch"), "package", name)
	}
	return m, nil
}

func (r *fakeRegistry) fetchCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches[name]
}

// memLocks is an in-memory lock store.
type memLocks struct {
	mu      sync.Mutex
	entries map[string]domain.LockEntry
}

func newMemLocks() *memLocks {
	return &memLocks{entries: make(map[string]domain.LockEntry)}
}

func (l *memLocks) Load(string) error { return nil }

func (l *memLocks) Get(name, constraint string) (domain.LockEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[domain.LockKey(name, constraint)]
	return e, ok
}

func (l *memLocks) Put(key string, entry domain.LockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key] = entry
}

func (l *memLocks) Prune() {}

func (l *memLocks) Flush() error { return nil }

func (l *memLocks) has(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[key]
	return ok
}

type resolverTestMocks struct {
	logger *mocks.MockLogger
	tracer *mocks.MockTracer
}

func setupResolverTest(t *testing.T, registry ports.Registry, locks ports.LockStore) (*resolver.Resolver, resolverTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := resolverTestMocks{
		logger: mocks.NewMockLogger(ctrl),
		tracer: mocks.NewMockTracer(ctrl),
	}

	mockSpan := mocks.NewMockSpan(ctrl)
	mockSpan.EXPECT().End().AnyTimes()
	mockSpan.EXPECT().RecordError(gomock.Any()).AnyTimes()
	mockSpan.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()

	m.tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, mockSpan
		},
	).AnyTimes()

	return resolver.New(registry, locks, m.tracer, m.logger), m
}
