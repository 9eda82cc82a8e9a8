package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/webuildworld/webuild/internal/cli/render"
	"github.com/webuildworld/webuild/internal/usecase"
)

// NewDevnetCmd creates the devnet command group
func NewDevnetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devnet",
		Short: "Manage the bundled dev chain",
		Long: `The dev chain executes the registry contracts natively and stores its state
in .webuild/devnet. Commands on the devnet network open it in-process;
"devnet serve" exposes it over JSON-RPC for the localhost network and other
tools.`,
	}

	cmd.AddCommand(newDevnetServeCmd())
	cmd.AddCommand(newDevnetResetCmd())

	return cmd
}

func newDevnetServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Serve the dev chain over JSON-RPC",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noTimeoutAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			renderer := render.NewDevnetRenderer(cmd.OutOrStdout())
			return app.ManageDevnet.Serve(cmd.Context(), usecase.ServeDevnetParams{
				Listen: listen,
				OnListening: func(addr string) {
					renderer.RenderListening(addr, app.Config.Devnet.ChainID)
				},
			})
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from [devnet] listen or 127.0.0.1:8545)")

	return cmd
}

func newDevnetResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe the dev chain and its recorded deployments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			if !yes {
				if app.Config.NonInteractive {
					return fmt.Errorf("refusing to reset without --yes in non-interactive mode")
				}
				if !confirmPrompt(fmt.Sprintf("Delete dev chain %d", app.Config.Devnet.ChainID)) {
					fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled.")
					return nil
				}
			}

			result, err := app.ManageDevnet.Reset(cmd.Context())
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return outputJSON(cmd, result)
			}
			return render.NewDevnetRenderer(cmd.OutOrStdout()).RenderReset(result)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
