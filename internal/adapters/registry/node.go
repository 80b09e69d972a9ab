package registry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/fans/internal/adapters/config"
	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/fans/internal/core/ports"
)

// NodeID is the unique identifier for the registry client Graft node.
const NodeID graft.ID = "adapter.registry"

func init() {
	graft.Register(graft.Node[ports.Registry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID},
		Run: func(ctx context.Context) (ports.Registry, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewClient(cfg), nil
		},
	})
}
