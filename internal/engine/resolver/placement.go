package resolver

import (
	"fmt"

	"go.trai.ch/fans/internal/core/domain"
)

// place decides where a resolved package is installed. The read of the plan,
// the decision and the write happen under one lock so two branches can never
// both claim the same top-level slot.
func (s *run) place(
	name, constraint, matched string,
	record domain.VersionManifest,
	path []frame,
) domain.Placement {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.plan.TopLevel[name]
	if !ok {
		s.plan.TopLevel[name] = domain.TopLevelEntry{
			URL:     record.Dist.Tarball,
			Version: matched,
			Shasum:  record.Dist.Shasum,
		}
		return domain.PlacementTopLevel
	}

	// A root request finds the slot it claimed up front.
	if len(path) == 0 && existing.Version == matched {
		return domain.PlacementTopLevel
	}

	if domain.Satisfies(existing.Version, constraint) {
		parentPath, conflict := ancestorConflict(name, matched, path)
		if !conflict {
			return domain.PlacementCovered
		}
		s.nest(name, parentPath, matched, record)
		return domain.PlacementNested
	}

	if len(path) == 0 {
		s.logger.Warn(fmt.Sprintf(
			"%s@%s conflicts with %s@%s already requested by the project, keeping %s",
			name, constraint, name, existing.Version, existing.Version,
		))
		return domain.PlacementSkipped
	}

	s.nest(name, path[len(path)-1].name, matched, record)
	return domain.PlacementNested
}

// nest appends an unsatisfied entry unless one exists for the same location.
// Callers must hold s.mu.
func (s *run) nest(name, parentPath, matched string, record domain.VersionManifest) {
	key := nestedKey{name: name, parentPath: parentPath}
	if _, ok := s.nested[key]; ok {
		return
	}
	s.nested[key] = struct{}{}
	s.plan.Unsatisfied = append(s.plan.Unsatisfied, domain.UnsatisfiedEntry{
		Name:       name,
		ParentPath: parentPath,
		URL:        record.Dist.Tarball,
		Version:    matched,
		Shasum:     record.Dist.Shasum,
	})
}

// ancestorConflict scans the ancestors above the direct parent, innermost
// first, for the first one that declares name. It reports a conflict when
// matched does not satisfy that declaration.
//
// The returned parent path starts two frames above the declaring ancestor
// and runs to the end of the path. This approximates Node's lookup order and
// is not guaranteed to be the offending ancestor's own directory.
func ancestorConflict(name, matched string, path []frame) (string, bool) {
	for i := len(path) - 2; i >= 0; i-- {
		declared, ok := path[i].dependencies[name]
		if !ok {
			continue
		}
		if domain.Satisfies(matched, declared) {
			return "", false
		}

		names := make([]string, 0, len(path))
		for _, f := range path[max(i-2, 0):] {
			names = append(names, f.name)
		}
		return domain.JoinParentPath(names), true
	}
	return "", false
}
