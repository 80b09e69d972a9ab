package tarball

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/fans/internal/adapters/config"
	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/fans/internal/core/ports"
)

// NodeID is the unique identifier for the tarball installer Graft node.
const NodeID graft.ID = "adapter.tarball"

func init() {
	graft.Register(graft.Node[ports.Installer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID},
		Run: func(ctx context.Context) (ports.Installer, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewInstaller(cfg), nil
		},
	})
}
