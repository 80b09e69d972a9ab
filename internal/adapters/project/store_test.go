package project_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fans/internal/adapters/project"
	"go.trai.ch/fans/internal/core/domain"
)

func writeProject(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ProjectFileName), []byte(content), domain.FilePerm))
}

func TestStore_DiscoverRoot(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, `{"name":"app"}`)
	nested := filepath.Join(root, "src", "components")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	got, err := project.NewStore().DiscoverRoot(nested)
	require.NoError(t, err)

	want, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_DiscoverRoot_NotFound(t *testing.T) {
	_, err := project.NewStore().DiscoverRoot(t.TempDir())
	require.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestStore_Load(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, `{
  "name": "app",
  "dependencies": {"left-pad": "^1.0.0", "ms": ""},
  "devDependencies": {"jest": "~29.0.0"}
}`)

	p, err := project.NewStore().Load(root)
	require.NoError(t, err)

	assert.Equal(t, &domain.Project{
		Name:            "app",
		Dependencies:    map[string]string{"left-pad": "^1.0.0", "ms": ""},
		DevDependencies: map[string]string{"jest": "~29.0.0"},
	}, p)
}

func TestStore_Load_AbsentMaps(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, `{"name":"bare"}`)

	p, err := project.NewStore().Load(root)
	require.NoError(t, err)
	assert.Nil(t, p.Dependencies)
	assert.Nil(t, p.DevDependencies)
}

func TestStore_Load_Malformed(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, `{"name":`)

	_, err := project.NewStore().Load(root)
	require.ErrorIs(t, err, domain.ErrProjectParseFailed)

	writeProject(t, root, `["not", "an", "object"]`)
	_, err = project.NewStore().Load(root)
	require.ErrorIs(t, err, domain.ErrProjectParseFailed)
}

func TestStore_SavePreservesFieldOrder(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, `{
  "name": "app",
  "version": "0.1.0",
  "dependencies": {"ms": "", "left-pad": "^1.0.0"},
  "scripts": {"test": "jest"},
  "devDependencies": {"jest": "~29.0.0"}
}`)

	store := project.NewStore()
	p, err := store.Load(root)
	require.NoError(t, err)
	p.Dependencies["ms"] = "^2.1.3"
	p.DevDependencies = nil

	require.NoError(t, store.Save(root, p))

	data, err := os.ReadFile(filepath.Join(root, domain.ProjectFileName))
	require.NoError(t, err)
	assert.Equal(t, `{
  "name": "app",
  "version": "0.1.0",
  "dependencies": {
    "left-pad": "^1.0.0",
    "ms": "^2.1.3"
  },
  "scripts": {
    "test": "jest"
  },
  "devDependencies": {
    "jest": "~29.0.0"
  }
}
`, string(data))
}

func TestStore_SaveAddsMissingMap(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, `{"name":"app"}`)

	store := project.NewStore()
	p, err := store.Load(root)
	require.NoError(t, err)
	p.AddDependency("jest", "", true)

	require.NoError(t, store.Save(root, p))

	reloaded, err := store.Load(root)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"jest": ""}, reloaded.DevDependencies)
	assert.Nil(t, reloaded.Dependencies)
}
