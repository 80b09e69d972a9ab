package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/fans/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the modules directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lock, _ := cmd.Flags().GetBool("lock")
			return c.app.Clean(cmd.Context(), app.CleanOptions{Lock: lock})
		},
	}

	cmd.Flags().Bool("lock", false, "Also remove the lockfile")

	return cmd
}
