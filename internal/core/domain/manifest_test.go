package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fans/internal/core/domain"
)

func leftPad() *domain.Manifest {
	return &domain.Manifest{
		Name: "left-pad",
		Versions: map[string]domain.VersionManifest{
			"1.0.0": {Dist: domain.Dist{Tarball: "https://r/left-pad-1.0.0.tgz"}},
			"1.3.0": {Dist: domain.Dist{Tarball: "https://r/left-pad-1.3.0.tgz"}},
			"1.1.0": {Dist: domain.Dist{Tarball: "https://r/left-pad-1.1.0.tgz"}},
		},
		// 1.1.0 was a backport published after 1.3.0.
		Order: []string{"1.0.0", "1.3.0", "1.1.0"},
	}
}

func TestManifest_Match(t *testing.T) {
	m := leftPad()

	got, err := m.Match("^1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", got)

	got, err = m.Match("")
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", got, "unconstrained picks the most recently published version")
}

func TestManifest_Match_NoSatisfyingVersion(t *testing.T) {
	_, err := leftPad().Match("^99.0.0")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoSatisfyingVersion)
}

func TestManifest_Match_Empty(t *testing.T) {
	m := &domain.Manifest{Name: "ghost"}
	_, err := m.Match("")
	assert.ErrorIs(t, err, domain.ErrNoSatisfyingVersion)
}

func TestLockEntry_ToManifest(t *testing.T) {
	entry := domain.LockEntry{
		Version:      "2.0.1",
		URL:          "https://r/a-2.0.1.tgz",
		Shasum:       "abc",
		Dependencies: map[string]string{"b": "^1.0.0"},
	}

	m := entry.ToManifest("a")
	got, err := m.Match("^2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "2.0.1", got)
	assert.Equal(t, entry, domain.NewLockEntry(got, m.Versions[got]))
	assert.Equal(t, "a@^2.0.0", domain.LockKey("a", "^2.0.0"))
	assert.Equal(t, "a@", domain.LockKey("a", ""))
}
