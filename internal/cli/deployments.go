package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/webuildworld/webuild/internal/cli/render"
	"github.com/webuildworld/webuild/internal/domain/models"
	"github.com/webuildworld/webuild/internal/usecase"
)

// NewDeploymentsCmd creates the deployments command
func NewDeploymentsCmd() *cobra.Command {
	var (
		contractName string
		label        string
		deployType   string
		verify       bool
	)

	cmd := &cobra.Command{
		Use:     "deployments",
		Aliases: []string{"ls"},
		Short:   "List recorded deployments on the current chain",
		Example: `  # List all deployments
  webuild deployments

  # Check every implementation still has code
  webuild deployments --type implementation --verify`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var deploymentType models.DeploymentType
			switch strings.ToLower(deployType) {
			case "":
			case "main":
				deploymentType = models.MainDeployment
			case "implementation", "impl":
				deploymentType = models.ImplementationDeployment
			default:
				return fmt.Errorf("invalid deployment type: %s (valid: main, implementation)", deployType)
			}

			result, err := app.ListDeployments.Run(cmd.Context(), usecase.ListDeploymentsParams{
				ContractName: contractName,
				Label:        label,
				Type:         deploymentType,
				Verify:       verify,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return outputJSON(cmd, result)
			}
			return render.NewDeploymentsRenderer(cmd.OutOrStdout()).RenderDeploymentList(result)
		},
	}

	cmd.Flags().StringVar(&contractName, "contract", "", "Filter by contract name")
	cmd.Flags().StringVar(&label, "label", "", "Filter by label")
	cmd.Flags().StringVar(&deployType, "type", "", "Filter by deployment type (main, implementation)")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check each deployment still has code on chain")

	return cmd
}
