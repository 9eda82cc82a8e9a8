package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/webuildworld/webuild/internal/config"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version number of webuild",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noAppAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return outputJSON(cmd, map[string]string{
					"version": config.Version,
					"commit":  config.Commit,
					"date":    config.Date,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "webuild version %s (commit %s, built %s)\n", config.Version, config.Commit, config.Date)
			return nil
		},
	}
}
