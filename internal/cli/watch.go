package cli

import (
	"github.com/spf13/cobra"

	"github.com/webuildworld/webuild/internal/cli/render"
	"github.com/webuildworld/webuild/internal/domain/models"
	"github.com/webuildworld/webuild/internal/usecase"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	var (
		params  usecase.WatchBricksParams
		brickID string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream registry events",
		Long: `Replay registry events from a block and follow new ones until interrupted.
On the devnet network the chain is opened in-process; use "webuild devnet serve"
and --network localhost to watch while other commands send transactions.`,
		Example: `  # Follow every event
  webuild watch -n localhost

  # Replay the history of brick 3
  webuild watch --brick 3 --from-block 0`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noTimeoutAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			if brickID != "" {
				if params.BrickID, err = parseBrickID(brickID); err != nil {
					return err
				}
			}

			events := render.NewEventsRenderer(cmd.OutOrStdout())
			params.OnEvent = func(ev *models.ContractEvent) error {
				if app.Config.JSON {
					return outputJSON(cmd, ev)
				}
				return events.RenderEvent(ev)
			}

			_, err = app.WatchBricks.Run(cmd.Context(), params)
			return err
		},
	}

	cmd.Flags().Uint64Var(&params.FromBlock, "from-block", 0, "Replay events from this block")
	cmd.Flags().StringSliceVar(&params.Events, "event", nil, "Only these events (BrickAdded, WorkStarted, WorkAccepted, BrickCancelled, ProviderUpgraded, MainUpdated)")
	cmd.Flags().StringVar(&brickID, "brick", "", "Only events of this brick")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "Stop after this many events")

	return cmd
}
