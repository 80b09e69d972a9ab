package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/fans/internal/core/domain"
)

func TestPlan_NestedPhases(t *testing.T) {
	plan := domain.NewPlan()
	plan.TopLevel["b"] = domain.TopLevelEntry{Version: "1.0.0"}
	plan.TopLevel["a"] = domain.TopLevelEntry{Version: "1.0.0"}
	plan.Unsatisfied = []domain.UnsatisfiedEntry{
		{Name: "x", ParentPath: "a/b"},
		{Name: "y", ParentPath: "b"},
		{Name: "x", ParentPath: "a"},
		{Name: "z", ParentPath: "@s/c/d"},
	}

	phases := plan.NestedPhases()
	assert.Equal(t, [][]domain.UnsatisfiedEntry{
		{
			{Name: "x", ParentPath: "a"},
			{Name: "y", ParentPath: "b"},
		},
		{
			{Name: "z", ParentPath: "@s/c/d"},
			{Name: "x", ParentPath: "a/b"},
		},
	}, phases)
	assert.Equal(t, []string{"a", "b"}, plan.TopLevelNames())
}

func TestPlan_NestedPhases_Empty(t *testing.T) {
	assert.Empty(t, domain.NewPlan().NestedPhases())
}
