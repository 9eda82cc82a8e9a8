package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/webuildworld/webuild/internal/cli/render"
	"github.com/webuildworld/webuild/internal/usecase"
)

// NewComposeCmd creates the compose command
func NewComposeCmd() *cobra.Command {
	var (
		resume          bool
		continueOnError bool
		dryRun          bool
		only            []string
		selectBricks    bool
	)

	cmd := &cobra.Command{
		Use:   "compose <manifest.yaml>",
		Short: "Add the bricks of a YAML manifest in order",
		Long: `Add every brick listed in a YAML manifest. Progress is saved in
.webuild/compose so a failed run can be resumed without adding bricks twice.

Manifest format:
  group: launch
  from: owner
  bricks:
    - name: footer
      title: Fix the footer
      value: 0.5eth
      tags: [web, css]
    - name: logo
      title: Draw a logo
      value: 1
      from: alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ComposeParams{
				ManifestPath:    args[0],
				Resume:          resume,
				ContinueOnError: continueOnError,
				DryRun:          dryRun,
				Only:            only,
			}
			if selectBricks {
				if app.Config.NonInteractive {
					return fmt.Errorf("--select needs an interactive terminal; use --only instead")
				}
				plan, err := app.ComposeBricks.Plan(cmd.Context(), params)
				if err != nil {
					return err
				}
				if params.Only, err = SelectComposeBricks(plan.Manifest.Bricks, plan.Added, "Select bricks to add:"); err != nil {
					return err
				}
			}

			result, err := app.ComposeBricks.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				if err := outputJSON(cmd, result); err != nil {
					return err
				}
			} else if err := render.NewComposeRenderer(cmd.OutOrStdout(), dryRun).RenderComposeResult(result); err != nil {
				return err
			}

			if !result.Success() {
				return fmt.Errorf("compose failed: %d of %d bricks failed", result.Failed, len(result.Steps))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Skip bricks added by the previous run")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep adding bricks after a failure")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the manifest without sending transactions")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Only add these manifest entries (by name)")
	cmd.Flags().BoolVar(&selectBricks, "select", false, "Pick the manifest entries to add interactively")
	cmd.MarkFlagsMutuallyExclusive("only", "select")

	return cmd
}
