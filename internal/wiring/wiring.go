// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/fans/internal/adapters/config"
	_ "go.trai.ch/fans/internal/adapters/lockfile"
	_ "go.trai.ch/fans/internal/adapters/logger"
	_ "go.trai.ch/fans/internal/adapters/project"
	_ "go.trai.ch/fans/internal/adapters/registry"
	_ "go.trai.ch/fans/internal/adapters/tarball"
	// Register app nodes.
	_ "go.trai.ch/fans/internal/app"
)
