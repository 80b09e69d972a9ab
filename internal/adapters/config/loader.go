// Package config provides the configuration loader for fans.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// EnvRegistry overrides the registry URL.
	EnvRegistry = "FANS_REGISTRY"
	// EnvConcurrency overrides the install concurrency.
	EnvConcurrency = "FANS_CONCURRENCY"
)

// Loader implements ports.ConfigLoader using an optional YAML file.
type Loader struct {
	getenv func(string) string
}

// NewLoader creates a Loader that reads overrides from the process environment.
func NewLoader() *Loader {
	return &Loader{getenv: os.Getenv}
}

// Load finds .fansrc.yaml in cwd or the nearest parent, applies it over the
// defaults and then applies environment overrides.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	path, err := findConfiguration(cwd)
	if err != nil {
		return nil, err
	}
	if path != "" {
		var rc Fansrc
		if err := readAndUnmarshalYAML(path, &rc); err != nil {
			return nil, err
		}
		if err := apply(cfg, &rc); err != nil {
			return nil, zerr.With(err, "path", path)
		}
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfiguration returns the path of the nearest .fansrc.yaml, or "" if
// there is none up to the filesystem root.
func findConfiguration(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", candidate)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", nil
		}
		currentDir = parentDir
	}
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath comes from the upward search
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", configPath)
	}

	if parseErr := yaml.Unmarshal(data, target); parseErr != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, parseErr.Error()), "path", configPath)
	}
	return nil
}

func apply(cfg *domain.Config, rc *Fansrc) error {
	if rc.Registry != "" {
		cfg.Registry = strings.TrimRight(rc.Registry, "/")
	}
	if rc.Concurrency != nil {
		if *rc.Concurrency < 1 {
			return invalid("concurrency", *rc.Concurrency)
		}
		cfg.Concurrency = *rc.Concurrency
	}
	if rc.ResolveJobs != nil {
		cfg.ResolveJobs = *rc.ResolveJobs
	}
	if rc.Lockfile != "" {
		cfg.Lockfile = rc.Lockfile
	}
	if rc.ModulesDir != "" {
		if strings.ContainsAny(rc.ModulesDir, `/\`) {
			return invalid("modulesDir", rc.ModulesDir)
		}
		cfg.ModulesDir = rc.ModulesDir
	}
	if rc.Timeout != "" {
		d, err := time.ParseDuration(rc.Timeout)
		if err != nil || d <= 0 {
			return invalid("timeout", rc.Timeout)
		}
		cfg.Timeout = d
	}
	if rc.Retries != nil {
		if *rc.Retries < 0 {
			return invalid("retries", *rc.Retries)
		}
		cfg.Retries = *rc.Retries
	}
	return nil
}

func (l *Loader) applyEnv(cfg *domain.Config) error {
	if registry := l.getenv(EnvRegistry); registry != "" {
		cfg.Registry = strings.TrimRight(registry, "/")
	}
	if raw := l.getenv(EnvConcurrency); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return zerr.With(invalid("concurrency", raw), "env", EnvConcurrency)
		}
		cfg.Concurrency = n
	}
	return nil
}

func invalid(key string, value any) error {
	err := zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "invalid value"), "key", key)
	return zerr.With(err, "value", value)
}
