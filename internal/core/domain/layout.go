package domain

import (
	"path/filepath"
	"strings"
)

const (
	// ProjectFileName is the name of the project manifest.
	ProjectFileName = "package.json"

	// ConfigFileName is the name of the optional fans configuration file.
	ConfigFileName = ".fansrc.yaml"

	// DefaultLockFileName is the default name of the lock cache file.
	DefaultLockFileName = "fans-lock.json"

	// DefaultModulesDirName is the default name of the shared install directory.
	DefaultModulesDirName = "node_modules"

	// DefaultRegistryURL is the registry queried when none is configured.
	DefaultRegistryURL = "https://registry.npmjs.org"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// ExecFilePerm is the permission for files that carry an executable bit in the archive.
	ExecFilePerm = 0o755
)

// InstallPath returns the directory a package is extracted into.
// An empty parentPath means the shared top-level location. Otherwise every
// "/"-separated segment of parentPath is one level of nested modules directory,
// so "a/b" yields <root>/<modules>/a/<modules>/b/<modules>/<name>.
func InstallPath(root, modulesDir, parentPath, name string) string {
	parts := []string{root, modulesDir}
	if parentPath != "" {
		for _, segment := range SplitParentPath(parentPath) {
			parts = append(parts, segment, modulesDir)
		}
	}
	parts = append(parts, name)
	return filepath.Join(parts...)
}

// SplitParentPath splits a parent path into the ancestor names it is made of.
// Scoped names keep their "@scope/name" form as a single segment.
func SplitParentPath(parentPath string) []string {
	if parentPath == "" {
		return nil
	}
	raw := strings.Split(parentPath, "/")
	segments := make([]string, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if strings.HasPrefix(raw[i], "@") && i+1 < len(raw) {
			segments = append(segments, raw[i]+"/"+raw[i+1])
			i++
			continue
		}
		segments = append(segments, raw[i])
	}
	return segments
}

// JoinParentPath joins ancestor names into a parent path.
func JoinParentPath(names []string) string {
	return strings.Join(names, "/")
}

// NestingDepth reports how many ancestors a parent path names.
func NestingDepth(parentPath string) int {
	return len(SplitParentPath(parentPath))
}
