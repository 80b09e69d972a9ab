package resolver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/fans/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func TestResolve_HoistsSharedDependencies(t *testing.T) {
	reg := newFakeRegistry()
	reg.publish("a", "1.0.0", map[string]string{"c": "^1.0.0"})
	reg.publish("b", "1.0.0", map[string]string{"c": "^1.1.0"})
	reg.publish("c", "1.0.0", nil).publish("c", "1.1.0", nil).publish("c", "1.2.0", nil)

	r, _ := setupResolverTest(t, reg, newMemLocks())
	project := &domain.Project{Dependencies: map[string]string{"a": "^1.0.0", "b": "^1.0.0"}}

	plan, err := r.Resolve(context.Background(), project)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, plan.TopLevelNames())
	assert.Equal(t, "1.2.0", plan.TopLevel["c"].Version)
	assert.Equal(t, "https://registry.test/c/-/c-1.2.0.tgz", plan.TopLevel["c"].URL)
	assert.Empty(t, plan.Unsatisfied)
	assert.Equal(t, 1, reg.fetchCount("c"), "shared dependency is fetched once per run")
}

func TestResolve_NestsConflictUnderSibling(t *testing.T) {
	reg := newFakeRegistry()
	reg.publish("pkg-x", "1.2.0", nil).publish("pkg-x", "2.0.0", nil).publish("pkg-x", "2.3.1", nil)
	reg.publish("sibling", "1.0.0", map[string]string{"pkg-x": "^2.0.0"})

	r, _ := setupResolverTest(t, reg, newMemLocks())
	project := &domain.Project{Dependencies: map[string]string{
		"pkg-x":   "^1.0.0",
		"sibling": "^1.0.0",
	}}

	plan, err := r.Resolve(context.Background(), project)
	require.NoError(t, err)

	assert.Equal(t, "1.2.0", plan.TopLevel["pkg-x"].Version)
	require.Len(t, plan.Unsatisfied, 1)
	assert.Equal(t, domain.UnsatisfiedEntry{
		Name:       "pkg-x",
		ParentPath: "sibling",
		URL:        "https://registry.test/pkg-x/-/pkg-x-2.3.1.tgz",
		Version:    "2.3.1",
		Shasum:     "pkg-x-2.3.1",
	}, plan.Unsatisfied[0])
}

func TestResolve_AncestorConflict(t *testing.T) {
	tests := []struct {
		name       string
		aDeclares  string
		wantNested []domain.UnsatisfiedEntry
	}{
		{
			name:      "AncestorRangeExcludesMatch",
			aDeclares: "~1.0.0",
			wantNested: []domain.UnsatisfiedEntry{{
				Name:       "c",
				ParentPath: "a/b",
				URL:        "https://registry.test/c/-/c-1.5.0.tgz",
				Version:    "1.5.0",
				Shasum:     "c-1.5.0",
			}},
		},
		{
			name:      "AncestorRangeCoversMatch",
			aDeclares: "^1.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newFakeRegistry()
			reg.publish("a", "1.0.0", map[string]string{"b": "^1.0.0", "c": tt.aDeclares})
			reg.publish("b", "1.0.0", map[string]string{"c": "^1.0.0"})
			reg.publish("c", "1.0.0", nil).publish("c", "1.5.0", nil)

			r, _ := setupResolverTest(t, reg, newMemLocks())
			project := &domain.Project{Dependencies: map[string]string{
				"a": "^1.0.0",
				"c": "1.0.0",
			}}

			plan, err := r.Resolve(context.Background(), project)
			require.NoError(t, err)

			assert.Equal(t, "1.0.0", plan.TopLevel["c"].Version)
			if tt.wantNested == nil {
				assert.Empty(t, plan.Unsatisfied)
				return
			}
			assert.Equal(t, tt.wantNested, plan.Unsatisfied)
		})
	}
}

func TestResolve_CycleTerminates(t *testing.T) {
	reg := newFakeRegistry()
	reg.publish("a", "1.0.0", map[string]string{"b": "^1.0.0"})
	reg.publish("b", "1.0.0", map[string]string{"a": "^1.0.0"})

	r, _ := setupResolverTest(t, reg, newMemLocks())
	project := &domain.Project{Dependencies: map[string]string{"a": "^1.0.0"}}

	plan, err := r.Resolve(context.Background(), project)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, plan.TopLevelNames())
	assert.Empty(t, plan.Unsatisfied)
}

func TestResolve_NoSatisfyingVersion(t *testing.T) {
	reg := newFakeRegistry()
	reg.publish("left-pad", "1.0.0", nil).publish("left-pad", "1.3.0", nil)

	locks := newMemLocks()
	r, _ := setupResolverTest(t, reg, locks)
	project := &domain.Project{Dependencies: map[string]string{"left-pad": "^99.0.0"}}

	_, err := r.Resolve(context.Background(), project)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoSatisfyingVersion)
	assert.False(t, locks.has("left-pad@^99.0.0"))
}

func TestResolve_FailedSubtreeCommitsNoLockEntry(t *testing.T) {
	reg := newFakeRegistry()
	reg.publish("app", "1.0.0", map[string]string{"broken": "^1.0.0", "ok": "^1.0.0"})
	reg.publish("ok", "1.0.0", nil)
	reg.fail("broken", zerr.Wrap(domain.ErrRegistryUnavailable, "registry returned 503"))

	locks := newMemLocks()
	r, _ := setupResolverTest(t, reg, locks)
	r.WithJobs(1)
	project := &domain.Project{Dependencies: map[string]string{"app": "^1.0.0"}}

	_, err := r.Resolve(context.Background(), project)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRegistryUnavailable)
	assert.False(t, locks.has("app@^1.0.0"), "parent of a failed branch is not committed")
	assert.False(t, locks.has("broken@^1.0.0"))
}

func TestResolve_UnconstrainedBackfill(t *testing.T) {
	reg := newFakeRegistry()
	reg.publish("some-pkg", "3.0.0", nil).publish("some-pkg", "3.4.1", nil)
	reg.publish("dev-tool", "0.2.0", nil)

	locks := newMemLocks()
	r, _ := setupResolverTest(t, reg, locks)
	project := &domain.Project{
		Dependencies:    map[string]string{"some-pkg": "", "pinned": "~3.0.0"},
		DevDependencies: map[string]string{"dev-tool": ""},
	}
	reg.publish("pinned", "3.0.5", nil)

	_, err := r.Resolve(context.Background(), project)
	require.NoError(t, err)

	assert.Equal(t, "^3.4.1", project.Dependencies["some-pkg"])
	assert.Equal(t, "~3.0.0", project.Dependencies["pinned"])
	assert.Equal(t, "^0.2.0", project.DevDependencies["dev-tool"])
	assert.True(t, locks.has("some-pkg@"))
}

func TestResolve_ReusesLockEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockRegistry(ctrl)
	// No Fetch expectation: any registry call fails the test.

	locks := newMemLocks()
	locks.Put("a@^1.0.0", domain.LockEntry{
		Version:      "1.4.0",
		URL:          "https://registry.test/a/-/a-1.4.0.tgz",
		Dependencies: map[string]string{"b": "~2.0.0"},
	})
	locks.Put("b@~2.0.0", domain.LockEntry{
		Version: "2.0.3",
		URL:     "https://registry.test/b/-/b-2.0.3.tgz",
	})

	r, _ := setupResolverTest(t, registry, locks)
	project := &domain.Project{Dependencies: map[string]string{"a": "^1.0.0"}}

	plan, err := r.Resolve(context.Background(), project)
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", plan.TopLevel["a"].Version)
	assert.Equal(t, "2.0.3", plan.TopLevel["b"].Version)
}

func TestResolve_RootConflictBetweenDependencyMaps(t *testing.T) {
	reg := newFakeRegistry()
	reg.publish("x", "1.0.0", nil).publish("x", "2.0.0", nil)

	r, m := setupResolverTest(t, reg, newMemLocks())
	m.logger.EXPECT().Warn(gomock.Any()).Times(1)

	project := &domain.Project{
		Dependencies:    map[string]string{"x": "^1.0.0"},
		DevDependencies: map[string]string{"x": "^2.0.0"},
	}

	plan, err := r.Resolve(context.Background(), project)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", plan.TopLevel["x"].Version)
	assert.Empty(t, plan.Unsatisfied)
}

func TestResolve_DirectDependencyKeepsTopLevel(t *testing.T) {
	// "deep" asks for a newer "shared" than the project does. The project's
	// own request must win the top-level slot regardless of scheduling.
	reg := newFakeRegistry()
	reg.publish("deep", "1.0.0", map[string]string{"shared": "^2.0.0"})
	reg.publish("shared", "1.0.0", nil).publish("shared", "2.0.0", nil)

	r, _ := setupResolverTest(t, reg, newMemLocks())
	project := &domain.Project{Dependencies: map[string]string{
		"deep":   "^1.0.0",
		"shared": "^1.0.0",
	}}

	plan, err := r.Resolve(context.Background(), project)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", plan.TopLevel["shared"].Version)
	require.Len(t, plan.Unsatisfied, 1)
	assert.Equal(t, "deep", plan.Unsatisfied[0].ParentPath)
}

func TestResolve_SequentialReplayIsDeterministic(t *testing.T) {
	newRegistry := func() *fakeRegistry {
		reg := newFakeRegistry()
		reg.publish("a", "1.0.0", map[string]string{"d": "^1.0.0", "e": "^1.0.0"})
		reg.publish("b", "1.0.0", map[string]string{"d": "^2.0.0"})
		reg.publish("c", "1.0.0", map[string]string{"e": "^2.0.0", "d": "^2.0.0"})
		reg.publish("d", "1.0.0", nil).publish("d", "2.0.0", nil)
		reg.publish("e", "1.0.0", nil).publish("e", "2.0.0", nil)
		return reg
	}

	var plans []*domain.Plan
	for range 3 {
		r, _ := setupResolverTest(t, newRegistry(), newMemLocks())
		r.WithJobs(1)
		project := &domain.Project{Dependencies: map[string]string{"a": "", "b": "", "c": ""}}
		plan, err := r.Resolve(context.Background(), project)
		require.NoError(t, err)
		plans = append(plans, plan)
	}

	assert.Equal(t, plans[0], plans[1])
	assert.Equal(t, plans[1], plans[2])
	assert.Equal(t, "1.0.0", plans[0].TopLevel["d"].Version)
	assert.Len(t, plans[0].Unsatisfied, 3)
}

func TestResolve_PackageNotFound(t *testing.T) {
	r, _ := setupResolverTest(t, newFakeRegistry(), newMemLocks())
	project := &domain.Project{Dependencies: map[string]string{"ghost": "^1.0.0"}}

	_, err := r.Resolve(context.Background(), project)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPackageNotFound))
}

func TestResolve_EmptyProject(t *testing.T) {
	r, _ := setupResolverTest(t, newFakeRegistry(), newMemLocks())

	plan, err := r.Resolve(context.Background(), &domain.Project{})
	require.NoError(t, err)
	assert.Empty(t, plan.TopLevel)
	assert.Empty(t, plan.Unsatisfied)
}
