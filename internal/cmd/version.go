package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gcdevkit/devkit/internal/config"
	"github.com/gcdevkit/devkit/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(_ *config.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show devkit version information.

Displays:
  - devkit version, commit, and build date
  - CUE SDK version (used for config and manifest schemas)`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			fmt.Fprintln(c.OutOrStdout(), version.Get().String())
			return nil
		},
	}
}
