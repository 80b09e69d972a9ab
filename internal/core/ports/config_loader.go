package ports

import "go.trai.ch/fans/internal/core/domain"

// ConfigLoader defines the interface for loading the run configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads .fansrc.yaml from cwd or the nearest parent and applies
	// environment overrides. Defaults are returned when no file exists.
	Load(cwd string) (*domain.Config, error)
}
