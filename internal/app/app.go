// Package app implements the application layer for fans.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/fans/internal/adapters/telemetry"
	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/fans/internal/core/ports"
	"go.trai.ch/fans/internal/engine/resolver"
	"go.trai.ch/fans/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	config    *domain.Config
	projects  ports.ProjectStore
	locks     ports.LockStore
	registry  ports.Registry
	installer ports.Installer
	logger    ports.Logger
	out       io.Writer
	workDir   string
}

// New creates a new App instance.
func New(
	cfg *domain.Config,
	projects ports.ProjectStore,
	locks ports.LockStore,
	registry ports.Registry,
	installer ports.Installer,
	log ports.Logger,
) *App {
	return &App{
		config:    cfg,
		projects:  projects,
		locks:     locks,
		registry:  registry,
		installer: installer,
		logger:    log,
		out:       os.Stdout,
		workDir:   ".",
	}
}

// WithOutput sets the writer the plan and the run summary are printed to.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithWorkDir sets the directory the project search starts from.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// InstallOptions configuration for the Install method.
type InstallOptions struct {
	// Packages are name[@range] arguments to add before resolving.
	Packages []string
	// Dev adds Packages to devDependencies.
	Dev bool
	// Production resolves without devDependencies.
	Production bool
	// DryRun prints the plan without installing or writing files.
	DryRun bool
	// TracePath, if set, receives the spans of the run.
	TracePath string
	// Jobs overrides the configured install concurrency when positive.
	Jobs int
}

// Install resolves the project's dependency graph, installs the plan and
// writes backfilled ranges back to the project file.
//
//nolint:cyclop // orchestration function
func (a *App) Install(ctx context.Context, opts InstallOptions) error {
	start := time.Now()

	// 1. Locate and load the project
	root, err := a.projects.DiscoverRoot(a.workDir)
	if err != nil {
		return err
	}
	project, err := a.projects.Load(root)
	if err != nil {
		return err
	}

	for _, spec := range opts.Packages {
		name, constraint, err := domain.ParsePackageSpec(spec)
		if err != nil {
			return err
		}
		project.AddDependency(name, constraint, opts.Dev)
	}

	// 2. Initialize Telemetry
	summary := telemetry.NewSummary()
	tp, shutdown, err := setupOTel(summary, opts.TracePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn(fmt.Sprintf("failed to write trace: %v", err))
		}
	}()
	tracer := telemetry.NewOTelTracerWithProvider(tp, telemetry.InstrumentationName)

	// 3. Resolve
	if err := a.locks.Load(filepath.Join(root, a.config.Lockfile)); err != nil {
		return err
	}

	target := project
	if opts.Production {
		target = &domain.Project{Name: project.Name, Dependencies: project.Dependencies}
	}

	res := resolver.New(a.registry, a.locks, tracer, a.logger).WithJobs(a.config.ResolveJobs)
	plan, err := res.Resolve(ctx, target)
	if err != nil {
		return errors.Join(domain.ErrResolutionFailed, err)
	}
	a.locks.Prune()

	if opts.DryRun {
		a.printPlan(plan)
		return nil
	}

	// 4. Install and flush the lockfile concurrently
	parallelism := a.config.Concurrency
	if opts.Jobs > 0 {
		parallelism = opts.Jobs
	}
	sched := scheduler.NewScheduler(a.installer, tracer)
	phases := scheduler.Phases(plan, root, a.config.ModulesDir)

	var g errgroup.Group
	g.Go(a.locks.Flush)
	g.Go(func() error {
		if err := sched.Run(ctx, phases, parallelism); err != nil {
			return errors.Join(domain.ErrInstallFailed, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	// 5. Persist backfilled ranges
	if err := a.projects.Save(root, project); err != nil {
		return err
	}

	a.printSummary(summary.Snapshot(), time.Since(start))
	return nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Lock bool
}

// Clean removes the modules directory and, optionally, the lockfile.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	root, err := a.projects.DiscoverRoot(a.workDir)
	if err != nil {
		return err
	}

	var errs error

	// Helper to remove a path and log the action
	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	remove(filepath.Join(root, a.config.ModulesDir), a.config.ModulesDir)

	if options.Lock {
		remove(filepath.Join(root, a.config.Lockfile), a.config.Lockfile)
	}

	return errs
}

// setupOTel builds the tracer provider of one run and registers it globally.
// The summary always observes spans. With a trace path, spans are also
// exported to that file.
func setupOTel(summary *telemetry.Summary, tracePath string) (*sdktrace.TracerProvider, func(context.Context) error, error) {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithSpanProcessor(summary)}

	var traceFile *os.File
	if tracePath != "" {
		//nolint:gosec // Path is provided by the user on the command line
		f, err := os.Create(tracePath)
		if err != nil {
			return nil, nil, zerr.With(zerr.Wrap(err, "failed to create trace file"), "path", tracePath)
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
		if err != nil {
			_ = f.Close()
			return nil, nil, zerr.Wrap(err, "failed to create trace exporter")
		}
		traceFile = f
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	shutdown := func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if traceFile != nil {
			err = errors.Join(err, traceFile.Close())
		}
		return err
	}
	return tp, shutdown, nil
}
