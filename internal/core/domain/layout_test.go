package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/fans/internal/core/domain"
)

func TestInstallPath(t *testing.T) {
	tests := []struct {
		name       string
		parentPath string
		pkg        string
		expected   string
	}{
		{
			name:     "TopLevel",
			pkg:      "left-pad",
			expected: filepath.Join("/p", "node_modules", "left-pad"),
		},
		{
			name:       "Nested",
			parentPath: "a/b",
			pkg:        "c",
			expected:   filepath.Join("/p", "node_modules", "a", "node_modules", "b", "node_modules", "c"),
		},
		{
			name:       "ScopedParent",
			parentPath: "@babel/core/debug",
			pkg:        "ms",
			expected: filepath.Join("/p", "node_modules", "@babel", "core", "node_modules",
				"debug", "node_modules", "ms"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.InstallPath("/p", "node_modules", tt.parentPath, tt.pkg)
			if got != tt.expected {
				t.Errorf("InstallPath() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParentPathSegments(t *testing.T) {
	assert.Equal(t, []string{"@babel/core", "debug"}, domain.SplitParentPath("@babel/core/debug"))
	assert.Nil(t, domain.SplitParentPath(""))
	assert.Equal(t, 2, domain.NestingDepth("@babel/core/debug"))
	assert.Equal(t, 0, domain.NestingDepth(""))
	assert.Equal(t, "a/b", domain.JoinParentPath([]string{"a", "b"}))
}
