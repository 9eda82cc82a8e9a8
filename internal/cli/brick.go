package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/webuildworld/webuild/internal/cli/render"
	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
	"github.com/webuildworld/webuild/internal/usecase"
)

// NewBrickCmd creates the brick command group
func NewBrickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brick",
		Short: "Add, query and work on bricks",
		Long: `Bricks are small paid tasks. The owner escrows the value when adding a
brick; builders start work; the owner accepts one builder's work, paying them
the value, or cancels the brick and gets the value back.`,
	}

	cmd.AddCommand(
		newBrickAddCmd(),
		newBrickListCmd(),
		newBrickShowCmd(),
		newBrickAccountCmd("mine", models.RoleOwner, "List bricks owned by an account"),
		newBrickAccountCmd("building", models.RoleBuilder, "List bricks an account started work on"),
		newBrickWorkCmd(usecase.WorkStart),
		newBrickWorkCmd(usecase.WorkAccept),
		newBrickWorkCmd(usecase.WorkCancel),
	)

	return cmd
}

func newBrickAddCmd() *cobra.Command {
	var (
		brick     models.NewBrick
		value     string
		timestamp uint64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a brick with an ether bounty",
		Example: `  webuild brick add --title "Fix the footer" --value 1 --tags web,css \
    --url https://example.com/issue/1 --from alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			brick.Value, err = domain.ParseValue(value)
			if err != nil {
				return err
			}
			brick.Timestamp = timestamp

			result, err := app.AddBrick.Run(cmd.Context(), usecase.AddBrickParams{Brick: brick})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return outputJSON(cmd, result)
			}
			return render.NewBricksRenderer(cmd.OutOrStdout()).RenderAdded(result)
		},
	}

	cmd.Flags().StringVar(&brick.Title, "title", "", "Title of the brick")
	cmd.Flags().StringVar(&brick.URL, "url", "", "Reference URL")
	cmd.Flags().StringVar(&brick.Description, "description", "", "Description")
	cmd.Flags().StringSliceVar(&brick.Tags, "tags", nil, "Tags (comma separated, at most 10)")
	cmd.Flags().StringVar(&value, "value", "", "Bounty, e.g. 1, 0.5eth, 20gwei")
	cmd.Flags().Uint64Var(&timestamp, "timestamp", 0, "Unix timestamp of the brick (default now)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newBrickListCmd() *cobra.Command {
	var (
		query  domain.BrickQuery
		order  string
		oldest bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bricks with getBrickIds filters",
		Long: `List bricks that are not cancelled. Bricks match when they carry any of the
given tags and their timestamp falls within --since and --until (inclusive).`,
		Example: `  # Newest ten bricks
  webuild brick list

  # Oldest first, tagged web or css, second page of 20
  webuild brick list --order oldest --tags web,css --offset 20 --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			switch strings.ToLower(order) {
			case "newest", "desc", "-1":
				query.Order = domain.OrderNewestFirst
			case "oldest", "asc", "1":
				query.Order = domain.OrderOldestFirst
			default:
				return fmt.Errorf("invalid order %q (valid: newest, oldest)", order)
			}
			if oldest {
				query.Order = domain.OrderOldestFirst
			}

			result, err := app.ListBricks.Run(cmd.Context(), usecase.ListBricksParams{Query: query})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return outputJSON(cmd, result)
			}
			return render.NewBricksRenderer(cmd.OutOrStdout()).RenderList(result)
		},
	}

	cmd.Flags().Uint64Var(&query.Offset, "offset", 0, "Skip this many matching bricks")
	cmd.Flags().Uint64Var(&query.Limit, "limit", domain.DefaultBrickLimit, fmt.Sprintf("Maximum bricks to return (at most %d)", domain.MaxBrickLimit))
	cmd.Flags().StringSliceVar(&query.Tags, "tags", nil, "Only bricks with any of these tags")
	cmd.Flags().StringVar(&order, "order", "newest", "Sort order (newest, oldest)")
	cmd.Flags().BoolVar(&oldest, "oldest", false, "Shorthand for --order oldest")
	cmd.Flags().Uint64Var(&query.FromTime, "since", 0, "Only bricks with timestamp >= this unix time")
	cmd.Flags().Uint64Var(&query.ToTime, "until", 0, "Only bricks with timestamp <= this unix time")

	return cmd
}

func newBrickShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a brick and its builders",
		Long:  `Show a brick. Without an id the brick is picked interactively from the newest bricks.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var params usecase.ShowBrickParams
			if len(args) == 1 {
				if params.ID, err = parseBrickID(args[0]); err != nil {
					return err
				}
			}

			result, err := app.ShowBrick.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return outputJSON(cmd, result.Brick)
			}
			return render.NewBricksRenderer(cmd.OutOrStdout()).RenderBrick(result.Main, result.Brick)
		},
	}
}

func newBrickAccountCmd(use string, role models.BrickRole, short string) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   use + " [account]",
		Short: short,
		Long:  short + ". The account defaults to the sender (--from).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ListAccountBricksParams{Role: role}
			if len(args) == 1 {
				params.Account = args[0]
			}
			if params.Status, err = parseBrickStatus(status); err != nil {
				return err
			}

			result, err := app.ListAccountBricks.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return outputJSON(cmd, result)
			}
			return render.NewBricksRenderer(cmd.OutOrStdout()).RenderAccountBricks(result)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only bricks in this status (open, started, completed, cancelled)")

	return cmd
}

func newBrickWorkCmd(op usecase.WorkOperation) *cobra.Command {
	cmd := &cobra.Command{
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ManageWorkParams{Operation: op}
			if params.BrickID, err = parseBrickID(args[0]); err != nil {
				return err
			}
			if op == usecase.WorkAccept {
				params.Builder = args[1]
			}

			result, err := app.ManageWork.Execute(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return outputJSON(cmd, result)
			}
			return render.NewBricksRenderer(cmd.OutOrStdout()).RenderWork(result)
		},
	}

	switch op {
	case usecase.WorkStart:
		cmd.Use = "start <id>"
		cmd.Short = "Start work on a brick as a builder"
	case usecase.WorkAccept:
		cmd.Use = "accept <id> <builder>"
		cmd.Short = "Accept a builder's work and pay them the brick value"
		cmd.Args = cobra.ExactArgs(2)
	case usecase.WorkCancel:
		cmd.Use = "cancel <id>"
		cmd.Short = "Cancel a brick and refund its value"
	}

	return cmd
}
