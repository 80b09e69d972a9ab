package resolver

import "go.trai.ch/fans/internal/core/domain"

// closesCycle reports whether an ancestor on path already stands in for the
// edge to name@constraint.
func closesCycle(path []frame, name, constraint string) bool {
	for _, f := range path {
		if f.name == name && domain.Satisfies(f.version, constraint) {
			return true
		}
	}
	return false
}
