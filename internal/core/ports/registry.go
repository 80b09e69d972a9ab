// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/fans/internal/core/domain"
)

// Registry fetches package manifests from the version catalog.
//
//go:generate mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
type Registry interface {
	// Fetch returns every published version of the named package.
	//
	// It fails with domain.ErrPackageNotFound when the name is unknown and
	// with domain.ErrRegistryUnavailable when the catalog cannot be reached.
	Fetch(ctx context.Context, name string) (*domain.Manifest, error)
}
