package cli

import (
	"github.com/spf13/cobra"

	"github.com/webuildworld/webuild/internal/cli/render"
	"github.com/webuildworld/webuild/internal/usecase"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var (
		label    string
		noLink   bool
		redeploy bool
	)

	cmd := &cobra.Command{
		Use:   "deploy [contract...]",
		Short: "Deploy the registry contracts",
		Long: `Deploy WeBuildWorldImplementation and WeBuildWorld and record them in
.webuild/deployments.json. Once both exist they are linked: setMain on the
implementation, then upgradeProvider on the main contract.

Contracts that are already recorded and still have code are reused.`,
		Example: `  # Deploy and link both contracts on the in-process dev chain
  webuild deploy

  # Deploy a labelled implementation only
  webuild deploy WeBuildWorldImplementation --label v2 --no-link`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.DeployContracts.Run(cmd.Context(), usecase.DeployContractsParams{
				Label:     label,
				Contracts: args,
				Link:      !noLink,
				Redeploy:  redeploy,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return outputJSON(cmd, result)
			}
			return render.NewDeploymentsRenderer(cmd.OutOrStdout()).RenderDeploy(result)
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Label of the new deployments")
	cmd.Flags().BoolVar(&noLink, "no-link", false, "Skip setMain and upgradeProvider")
	cmd.Flags().BoolVar(&redeploy, "redeploy", false, "Deploy even if a recorded deployment still has code")

	return cmd
}

// NewLinkCmd creates the link command
func NewLinkCmd() *cobra.Command {
	var implementation string

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Link an implementation to the main contract",
		Long: `Run setMain(main) on the implementation and upgradeProvider(implementation)
on the main contract. Steps already in effect are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.LinkContracts.Run(cmd.Context(), usecase.LinkContractsParams{
				Implementation: implementation,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return outputJSON(cmd, result)
			}
			return render.NewDeploymentsRenderer(cmd.OutOrStdout()).RenderLink(result)
		},
	}

	cmd.Flags().StringVar(&implementation, "implementation", "", "Implementation to link (defaults to WeBuildWorldImplementation)")

	return cmd
}

// NewUpgradeCmd creates the upgrade command
func NewUpgradeCmd() *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "upgrade [implementation]",
		Short: "Point the main contract at a new implementation",
		Long: `Deploy a new WeBuildWorldImplementation (or use an existing one) and make it
the provider of the main contract. Bricks stored in the main contract survive
the upgrade.`,
		Example: `  # Deploy and link a fresh implementation labelled v<n>
  webuild upgrade

  # Link an implementation that is already deployed
  webuild upgrade WeBuildWorldImplementation:v2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.UpgradeProviderParams{Label: label}
			if len(args) == 1 {
				params.Implementation = args[0]
			}

			result, err := app.UpgradeProvider.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return outputJSON(cmd, result)
			}
			return render.NewDeploymentsRenderer(cmd.OutOrStdout()).RenderUpgrade(result)
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Label of the new implementation (default v<n>)")

	return cmd
}
