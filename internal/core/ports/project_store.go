package ports

import "go.trai.ch/fans/internal/core/domain"

// ProjectStore reads and writes the project manifest.
//
//go:generate mockgen -source=project_store.go -destination=mocks/mock_project_store.go -package=mocks
type ProjectStore interface {
	// DiscoverRoot walks up from cwd to the directory containing package.json.
	DiscoverRoot(cwd string) (string, error)

	// Load reads the project manifest in root.
	Load(root string) (*domain.Project, error)

	// Save writes the dependency maps of project back to the manifest in root.
	// Fields the project does not model are left as they are.
	Save(root string, project *domain.Project) error
}
