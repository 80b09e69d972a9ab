package app

import (
	"fmt"
	"time"

	"go.trai.ch/fans/internal/adapters/telemetry"
	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/fans/internal/ui/output"
	"go.trai.ch/fans/internal/ui/style"
)

// printPlan lists what an install would do: top-level entries as
// name@version, nested entries as "parentPath > name@version".
func (a *App) printPlan(plan *domain.Plan) {
	o := output.New(a.out)
	dim := o.Color(string(style.Slate))
	accent := o.Color(string(style.Iris))

	for _, name := range plan.TopLevelNames() {
		entry := plan.TopLevel[name]
		_, _ = fmt.Fprintf(a.out, "%s %s@%s\n",
			o.String(style.Dot).Foreground(accent), name, entry.Version)
	}
	for _, phase := range plan.NestedPhases() {
		for _, entry := range phase {
			_, _ = fmt.Fprintf(a.out, "%s %s %s %s@%s\n",
				o.String(style.Circle).Foreground(dim),
				o.String(entry.ParentPath).Foreground(dim),
				o.String(style.Arrow).Foreground(dim),
				entry.Name, entry.Version)
		}
	}
}

func (a *App) printSummary(stats telemetry.Stats, elapsed time.Duration) {
	o := output.New(a.out)
	green := o.Color(string(style.Green))
	dim := o.Color(string(style.Slate))

	_, _ = fmt.Fprintf(a.out, "%s installed %d packages %s\n",
		o.String(style.Check).Foreground(green),
		stats.Installed,
		o.String(fmt.Sprintf("(%d top-level, %d nested, %d from lockfile) in %s",
			stats.TopLevel, stats.Nested, stats.LockHits, elapsed.Round(time.Millisecond))).Foreground(dim),
	)
}
