package ports

import (
	"context"

	"go.trai.ch/fans/internal/core/domain"
)

// Installer downloads an artifact and extracts it into its install path.
//
//go:generate mockgen -source=installer.go -destination=mocks/mock_installer.go -package=mocks
type Installer interface {
	Install(ctx context.Context, artifact domain.Artifact) error
}
