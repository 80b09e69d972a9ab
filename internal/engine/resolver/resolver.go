// Package resolver turns a project's declared dependencies into an install plan.
package resolver

import (
	"context"
	"maps"
	"slices"
	"sync"

	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/fans/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Resolver walks the dependency graph of a project and places every package
// at the shared top level or nested under an ancestor.
type Resolver struct {
	registry ports.Registry
	locks    ports.LockStore
	tracer   ports.Tracer
	logger   ports.Logger
	jobs     int
}

// New creates a Resolver. Every level of the graph fans out without limit
// unless WithJobs is used.
func New(registry ports.Registry, locks ports.LockStore, tracer ports.Tracer, logger ports.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		locks:    locks,
		tracer:   tracer,
		logger:   logger,
		jobs:     -1,
	}
}

// WithJobs bounds the number of concurrent resolutions per graph level.
// A value of one replays the graph depth first in sorted name order.
func (r *Resolver) WithJobs(jobs int) *Resolver {
	if jobs > 0 {
		r.jobs = jobs
	} else {
		r.jobs = -1
	}
	return r
}

// frame is one package under expansion on the current resolution path.
type frame struct {
	name         string
	version      string
	dependencies map[string]string
}

type nestedKey struct {
	name       string
	parentPath string
}

// run holds the state shared by every branch of one Resolve call.
type run struct {
	*Resolver
	memo *memo

	mu     sync.Mutex
	plan   *domain.Plan
	nested map[nestedKey]struct{}
}

// Resolve computes the install plan for project. Empty ranges in the
// project's dependency maps are backfilled with a caret range of the version
// they resolved to. Non-empty ranges are never changed.
//
// Which of two conflicting transitive requests claims a top-level slot first
// depends on scheduling unless the resolver runs with a single job.
func (r *Resolver) Resolve(ctx context.Context, project *domain.Project) (*domain.Plan, error) {
	ctx, span := r.tracer.Start(ctx, "Resolving dependencies")
	defer span.End()

	state := &run{
		Resolver: r,
		memo:     newMemo(r.registry),
		plan:     domain.NewPlan(),
		nested:   make(map[nestedKey]struct{}),
	}

	if err := state.claimRoots(ctx, project); err != nil {
		span.RecordError(err)
		return nil, err
	}

	for _, deps := range []map[string]string{project.Dependencies, project.DevDependencies} {
		if err := state.resolveRoots(ctx, deps); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	span.SetAttribute("top_level", len(state.plan.TopLevel))
	span.SetAttribute("unsatisfied", len(state.plan.Unsatisfied))
	return state.plan, nil
}

type rootRequest struct {
	name       string
	constraint string
}

// claimRoots gives every direct dependency its top-level slot before any
// subtree is expanded. Production dependencies claim before development ones.
func (s *run) claimRoots(ctx context.Context, project *domain.Project) error {
	var requests []rootRequest
	for _, deps := range []map[string]string{project.Dependencies, project.DevDependencies} {
		for _, name := range slices.Sorted(maps.Keys(deps)) {
			requests = append(requests, rootRequest{name: name, constraint: deps[name]})
		}
	}

	claims := make([]domain.TopLevelEntry, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)
	for i, req := range requests {
		g.Go(func() error {
			manifest, _, err := s.lookup(gctx, req.name, req.constraint)
			if err != nil {
				return err
			}
			matched, err := manifest.Match(req.constraint)
			if err != nil {
				return err
			}
			dist := manifest.Versions[matched].Dist
			claims[i] = domain.TopLevelEntry{URL: dist.Tarball, Version: matched, Shasum: dist.Shasum}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, req := range requests {
		if _, ok := s.plan.TopLevel[req.name]; !ok {
			s.plan.TopLevel[req.name] = claims[i]
		}
	}
	return nil
}

// resolveRoots resolves one root dependency map concurrently and writes
// backfilled ranges into it once every entry succeeded.
func (s *run) resolveRoots(ctx context.Context, deps map[string]string) error {
	if len(deps) == 0 {
		return nil
	}

	names := slices.Sorted(maps.Keys(deps))
	backfills := make([]*domain.Backfill, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)
	for i, name := range names {
		constraint := deps[name]
		g.Go(func() error {
			backfill, err := s.resolve(gctx, name, constraint, nil)
			if err != nil {
				return err
			}
			backfills[i] = backfill
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, b := range backfills {
		if b != nil {
			deps[b.Name] = b.Range
		}
	}
	return nil
}

// resolve matches name against constraint, places it, expands its
// dependencies and commits the lock entry once the subtree resolved.
// A Backfill is returned when constraint is empty.
func (s *run) resolve(ctx context.Context, name, constraint string, path []frame) (*domain.Backfill, error) {
	if name == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrEmptyPackageName, "failed to resolve"), "constraint", constraint)
	}

	ctx, span := s.tracer.Start(ctx, name)
	defer span.End()
	span.SetAttribute("package", name)
	span.SetAttribute("constraint", constraint)

	manifest, lockHit, err := s.lookup(ctx, name, constraint)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("lock_hit", lockHit)

	matched, err := manifest.Match(constraint)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("version", matched)

	record := manifest.Versions[matched]
	placement := s.place(name, constraint, matched, record, path)
	span.SetAttribute("placement", string(placement))

	if len(record.Dependencies) > 0 {
		next := append(slices.Clone(path), frame{name: name, version: matched, dependencies: record.Dependencies})
		if err := s.expand(ctx, record.Dependencies, next); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.locks.Put(domain.LockKey(name, constraint), domain.NewLockEntry(matched, record))

	if domain.IsUnconstrained(constraint) {
		return &domain.Backfill{Name: name, Range: "^" + matched}, nil
	}
	return nil, nil
}

// expand resolves the dependencies of the innermost frame of path, one task
// per edge, and waits for all of them.
func (s *run) expand(ctx context.Context, deps map[string]string, path []frame) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)

	for _, dep := range slices.Sorted(maps.Keys(deps)) {
		constraint := deps[dep]
		if closesCycle(path, dep, constraint) {
			continue
		}
		g.Go(func() error {
			_, err := s.resolve(gctx, dep, constraint, path)
			return err
		})
	}
	return g.Wait()
}

// lookup serves a request from the lock cache or the registry.
func (s *run) lookup(ctx context.Context, name, constraint string) (*domain.Manifest, bool, error) {
	if entry, ok := s.locks.Get(name, constraint); ok {
		return entry.ToManifest(name), true, nil
	}
	manifest, err := s.memo.fetch(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return manifest, false, nil
}
