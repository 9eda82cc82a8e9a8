//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/webuildworld/webuild/internal/adapters"
	"github.com/webuildworld/webuild/internal/config"
	"github.com/webuildworld/webuild/internal/logging"
	"github.com/webuildworld/webuild/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewResolveDeployment,
		usecase.NewLinkContracts,
		usecase.NewDeployContracts,
		usecase.NewUpgradeProvider,
		usecase.NewListDeployments,
		usecase.NewAddBrick,
		usecase.NewListBricks,
		usecase.NewListAccountBricks,
		usecase.NewShowBrick,
		usecase.NewManageWork,
		usecase.NewComposeBricks,
		usecase.NewWatchBricks,
		usecase.NewListAccounts,
		usecase.NewManageDevnet,
		usecase.NewManageConfig,

		// App
		NewApp,
	)
	return nil, nil
}
