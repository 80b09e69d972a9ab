package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/fans/internal/app"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "install [package[@range]...]",
		Aliases: []string{"i", "add"},
		Short:   "Install the project's dependencies, adding any named packages first",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			saveDev, _ := cmd.Flags().GetBool("save-dev")
			dev, _ := cmd.Flags().GetBool("dev")
			production, _ := cmd.Flags().GetBool("production")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			jobs, _ := cmd.Flags().GetInt("jobs")
			tracePath, _ := cmd.Flags().GetString("trace")

			return c.app.Install(cmd.Context(), app.InstallOptions{
				Packages:   args,
				Dev:        saveDev || dev,
				Production: production,
				DryRun:     dryRun,
				TracePath:  tracePath,
				Jobs:       jobs,
			})
		},
	}
	cmd.Flags().BoolP("save-dev", "D", false, "Add the named packages to devDependencies")
	cmd.Flags().Bool("dev", false, "Alias for --save-dev")
	cmd.Flags().Bool("production", false, "Skip devDependencies")
	cmd.Flags().Bool("dry-run", false, "Print the install plan without installing")
	cmd.Flags().IntP("jobs", "j", 0, "Number of parallel installs (default: configured concurrency)")
	cmd.Flags().String("trace", "", "Write an OpenTelemetry trace of the run to this file")
	return cmd
}
