package domain

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/zerr"
)

// IsUnconstrained reports whether a range places no restriction on the version.
func IsUnconstrained(constraint string) bool {
	return strings.TrimSpace(constraint) == ""
}

// MaxSatisfying returns the highest version in versions that satisfies
// constraint, or "" if none does. Versions that are not valid semantic
// versions are ignored. Prerelease versions only match ranges whose
// comparators carry a prerelease themselves.
func MaxSatisfying(versions []string, constraint string) (string, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return "", zerr.With(zerr.Wrap(ErrInvalidConstraint, err.Error()), "constraint", constraint)
	}

	var (
		best    *semver.Version
		bestRaw string
	)
	for _, raw := range versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		if !c.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestRaw = raw
		}
	}
	return bestRaw, nil
}

// Satisfies reports whether version satisfies constraint. An empty constraint
// is satisfied by every version. Unparsable input never satisfies.
func Satisfies(version, constraint string) bool {
	if IsUnconstrained(constraint) {
		return true
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return c.Check(v)
}
