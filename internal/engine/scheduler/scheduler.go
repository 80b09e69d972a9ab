// Package scheduler drives the installation of a resolved plan.
package scheduler

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/fans/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// ArtifactStatus represents the status of an artifact install.
type ArtifactStatus string

const (
	// StatusPending indicates the artifact is waiting for its phase.
	StatusPending ArtifactStatus = "Pending"
	// StatusRunning indicates the artifact is being downloaded and extracted.
	StatusRunning ArtifactStatus = "Running"
	// StatusCompleted indicates the artifact was installed.
	StatusCompleted ArtifactStatus = "Completed"
	// StatusFailed indicates the install failed.
	StatusFailed ArtifactStatus = "Failed"
)

// Scheduler installs the artifacts of a plan in phases: every top-level entry
// first, then nested entries from the shallowest parent path to the deepest.
// A phase starts only after the previous one fully succeeded.
type Scheduler struct {
	installer ports.Installer
	tracer    ports.Tracer

	mu     sync.RWMutex
	status map[string]ArtifactStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(installer ports.Installer, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		installer: installer,
		tracer:    tracer,
		status:    make(map[string]ArtifactStatus),
	}
}

// Phases lays the plan out as install phases rooted at root/modulesDir.
func Phases(plan *domain.Plan, root, modulesDir string) [][]domain.Artifact {
	topLevel := make([]domain.Artifact, 0, len(plan.TopLevel))
	for _, name := range plan.TopLevelNames() {
		entry := plan.TopLevel[name]
		topLevel = append(topLevel, domain.Artifact{
			Name:       name,
			Version:    entry.Version,
			TarballURL: entry.URL,
			Shasum:     entry.Shasum,
			Path:       domain.InstallPath(root, modulesDir, "", name),
		})
	}

	phases := [][]domain.Artifact{topLevel}
	for _, nested := range plan.NestedPhases() {
		phase := make([]domain.Artifact, 0, len(nested))
		for _, u := range nested {
			phase = append(phase, domain.Artifact{
				Name:       u.Name,
				Version:    u.Version,
				TarballURL: u.URL,
				Shasum:     u.Shasum,
				Path:       domain.InstallPath(root, modulesDir, u.ParentPath, u.Name),
			})
		}
		phases = append(phases, phase)
	}
	return phases
}

// Run installs every artifact of phases with at most parallelism concurrent
// installs. A non-positive parallelism uses the number of CPUs.
func (s *Scheduler) Run(ctx context.Context, phases [][]domain.Artifact, parallelism int) error {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	planned := make([]string, 0)
	for _, phase := range phases {
		for _, a := range phase {
			s.updateStatus(a.Path, StatusPending)
			planned = append(planned, a.Name+"@"+a.Version)
		}
	}
	s.tracer.EmitPlan(ctx, planned)

	for i, phase := range phases {
		if len(phase) == 0 {
			continue
		}
		if err := s.runPhase(ctx, phase, parallelism); err != nil {
			return zerr.With(err, "phase", i)
		}
	}
	return nil
}

// runPhase installs one phase. Sibling installs keep running when one fails
// so every failure of the phase is reported.
func (s *Scheduler) runPhase(ctx context.Context, phase []domain.Artifact, parallelism int) error {
	var (
		mu   sync.Mutex
		errs error
	)

	g := new(errgroup.Group)
	g.SetLimit(parallelism)
	for _, artifact := range phase {
		g.Go(func() error {
			if err := s.install(ctx, artifact); err != nil {
				mu.Lock()
				errs = errors.Join(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

func (s *Scheduler) install(ctx context.Context, artifact domain.Artifact) error {
	if err := ctx.Err(); err != nil {
		s.updateStatus(artifact.Path, StatusFailed)
		return err
	}

	ctx, span := s.tracer.Start(ctx, artifact.Name+"@"+artifact.Version)
	defer span.End()
	span.SetAttribute("path", artifact.Path)
	span.SetAttribute("url", artifact.TarballURL)

	s.updateStatus(artifact.Path, StatusRunning)
	if err := s.installer.Install(ctx, artifact); err != nil {
		span.RecordError(err)
		s.updateStatus(artifact.Path, StatusFailed)
		return zerr.With(err, "package", artifact.Name)
	}
	s.updateStatus(artifact.Path, StatusCompleted)
	return nil
}

func (s *Scheduler) updateStatus(path string, status ArtifactStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[path] = status
}

// Status returns the status of the artifact installed at path.
func (s *Scheduler) Status(path string) ArtifactStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[path]
}
