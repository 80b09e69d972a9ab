package domain

import (
	"cmp"
	"slices"
)

// Placement names the decision taken for a resolved package.
type Placement string

const (
	// PlacementTopLevel means the package claimed the shared top-level slot.
	PlacementTopLevel Placement = "top-level"
	// PlacementCovered means an existing top-level copy already serves the consumer.
	PlacementCovered Placement = "covered"
	// PlacementNested means the package must be installed under an ancestor.
	PlacementNested Placement = "nested"
	// PlacementSkipped means no install location could be recorded.
	PlacementSkipped Placement = "skipped"
)

// TopLevelEntry is a package installed at the shared top-level location.
type TopLevelEntry struct {
	URL     string
	Version string
	Shasum  string
}

// UnsatisfiedEntry is a package that must be installed nested under ParentPath.
type UnsatisfiedEntry struct {
	Name       string
	ParentPath string
	URL        string
	Version    string
	Shasum     string
}

// Plan is the outcome of a resolution run consumed by the installer.
type Plan struct {
	TopLevel    map[string]TopLevelEntry
	Unsatisfied []UnsatisfiedEntry
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{TopLevel: make(map[string]TopLevelEntry)}
}

// NestedPhases groups unsatisfied entries by nesting depth, shallowest first.
// Within a phase entries are ordered by parent path and name.
func (p *Plan) NestedPhases() [][]UnsatisfiedEntry {
	byDepth := make(map[int][]UnsatisfiedEntry)
	for _, u := range p.Unsatisfied {
		d := NestingDepth(u.ParentPath)
		byDepth[d] = append(byDepth[d], u)
	}

	depths := make([]int, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	slices.Sort(depths)

	phases := make([][]UnsatisfiedEntry, 0, len(depths))
	for _, d := range depths {
		phase := byDepth[d]
		slices.SortFunc(phase, func(a, b UnsatisfiedEntry) int {
			return cmp.Or(cmp.Compare(a.ParentPath, b.ParentPath), cmp.Compare(a.Name, b.Name))
		})
		phases = append(phases, phase)
	}
	return phases
}

// TopLevelNames returns the top-level package names in sorted order.
func (p *Plan) TopLevelNames() []string {
	names := make([]string, 0, len(p.TopLevel))
	for name := range p.TopLevel {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Backfill is returned for a request that declared no range. Range is the
// caret range the project should record.
type Backfill struct {
	Name  string
	Range string
}

// Artifact is one tarball to install at Path.
type Artifact struct {
	Name       string
	Version    string
	TarballURL string
	Shasum     string
	Path       string
}
