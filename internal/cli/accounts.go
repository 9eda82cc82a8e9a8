package cli

import (
	"github.com/spf13/cobra"

	"github.com/webuildworld/webuild/internal/cli/render"
	"github.com/webuildworld/webuild/internal/usecase"
)

// NewAccountsCmd creates the accounts command
func NewAccountsCmd() *cobra.Command {
	var balances bool

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List configured accounts",
		Long: `List the accounts of webuild.toml. Dev networks also have the built-in
owner, builder, alice and bob accounts. The default sender is marked with *.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListAccounts.Run(cmd.Context(), usecase.ListAccountsParams{Balances: balances})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return outputJSON(cmd, result)
			}
			return render.NewAccountsRenderer(cmd.OutOrStdout()).RenderAccounts(result)
		},
	}

	cmd.Flags().BoolVar(&balances, "balances", false, "Show balances on the current network")

	return cmd
}
