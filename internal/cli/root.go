package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/webuildworld/webuild/internal/app"
	"github.com/webuildworld/webuild/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"

	// noTimeoutAnnotation marks long-running commands that ignore --timeout
	noTimeoutAnnotation = "webuild/no-timeout"
	// noAppAnnotation marks commands that run without a project
	noAppAnnotation = "webuild/no-app"
)

// session holds the app created for one invocation so it can be closed after the command
type session struct {
	app    *app.App
	cancel context.CancelFunc
}

func (s *session) close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.app == nil {
		return nil
	}
	return s.app.Close()
}

// Execute runs the CLI and releases the app afterwards
func Execute(ctx context.Context) error {
	rootCmd, s := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := s.close(); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to close: %w", closeErr)
	}
	return err
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd, _ := newRootCmd()
	return rootCmd
}

func newRootCmd() (*cobra.Command, *session) {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:   "webuild",
		Short: "Post and build bricks on the WeBuildWorld registry",
		Long: `WeBuild deploys and links the WeBuildWorld registry contracts, posts bricks
(small paid tasks with an ether bounty) and tracks the builders working on them.

It ships a native dev chain: the "devnet" network runs in-process, and
"webuild devnet serve" exposes the same chain over JSON-RPC as "localhost".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipApp(cmd) {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)

			appInstance, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			s.app = appInstance

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 && cmd.Annotations[noTimeoutAnnotation] == "" {
				ctx, s.cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
			}
			cmd.SetContext(ctx)

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (devnet, localhost, a [networks] name or an RPC URL)")
	rootCmd.PersistentFlags().String("from", "", "Account that sends transactions (name or address)")
	rootCmd.PersistentFlags().String("main", "", "Main contract (name, name:label, address or deployment id)")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Timeout for blocking operations (default 2m)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "deployment",
		Title: "Deployment Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	// Main commands
	for _, cmd := range []*cobra.Command{
		NewBrickCmd(),
		NewComposeCmd(),
		NewWatchCmd(),
	} {
		cmd.GroupID = "main"
		rootCmd.AddCommand(cmd)
	}

	// Deployment commands
	for _, cmd := range []*cobra.Command{
		NewDeployCmd(),
		NewLinkCmd(),
		NewUpgradeCmd(),
		NewDeploymentsCmd(),
	} {
		cmd.GroupID = "deployment"
		rootCmd.AddCommand(cmd)
	}

	// Management commands
	for _, cmd := range []*cobra.Command{
		NewAccountsCmd(),
		NewDevnetCmd(),
		NewConfigCmd(),
	} {
		cmd.GroupID = "management"
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd, s
}

// skipApp reports whether cmd runs without initializing the app
func skipApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	return cmd.Annotations[noAppAnnotation] != ""
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	a, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return a, nil
}
