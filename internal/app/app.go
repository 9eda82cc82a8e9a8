package app

import (
	"time"

	"github.com/webuildworld/webuild/internal/adapters/blockchain"
	"github.com/webuildworld/webuild/internal/domain/config"
	"github.com/webuildworld/webuild/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Shared dependencies
	Progress usecase.ProgressSink

	// Contract lifecycle
	DeployContracts *usecase.DeployContracts
	LinkContracts   *usecase.LinkContracts
	UpgradeProvider *usecase.UpgradeProvider
	ResolveMain     *usecase.ResolveDeployment
	ListDeployments *usecase.ListDeployments

	// Bricks
	AddBrick          *usecase.AddBrick
	ListBricks        *usecase.ListBricks
	ListAccountBricks *usecase.ListAccountBricks
	ShowBrick         *usecase.ShowBrick
	ManageWork        *usecase.ManageWork
	ComposeBricks     *usecase.ComposeBricks
	WatchBricks       *usecase.WatchBricks

	// Management
	ListAccounts *usecase.ListAccounts
	ManageDevnet *usecase.ManageDevnet
	ManageConfig *usecase.ManageConfig

	connector *blockchain.Connector
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	progress usecase.ProgressSink,
	connector *blockchain.Connector,
	deployContracts *usecase.DeployContracts,
	linkContracts *usecase.LinkContracts,
	upgradeProvider *usecase.UpgradeProvider,
	resolveMain *usecase.ResolveDeployment,
	listDeployments *usecase.ListDeployments,
	addBrick *usecase.AddBrick,
	listBricks *usecase.ListBricks,
	listAccountBricks *usecase.ListAccountBricks,
	showBrick *usecase.ShowBrick,
	manageWork *usecase.ManageWork,
	composeBricks *usecase.ComposeBricks,
	watchBricks *usecase.WatchBricks,
	listAccounts *usecase.ListAccounts,
	manageDevnet *usecase.ManageDevnet,
	manageConfig *usecase.ManageConfig,
) (*App, error) {
	return &App{
		Config:            cfg,
		Progress:          progress,
		DeployContracts:   deployContracts,
		LinkContracts:     linkContracts,
		UpgradeProvider:   upgradeProvider,
		ResolveMain:       resolveMain,
		ListDeployments:   listDeployments,
		AddBrick:          addBrick,
		ListBricks:        listBricks,
		ListAccountBricks: listAccountBricks,
		ShowBrick:         showBrick,
		ManageWork:        manageWork,
		ComposeBricks:     composeBricks,
		WatchBricks:       watchBricks,
		ListAccounts:      listAccounts,
		ManageDevnet:      manageDevnet,
		ManageConfig:      manageConfig,
		connector:         connector,
	}, nil
}

// Close stops progress output and releases the chain connection
func (a *App) Close() error {
	if s, ok := a.Progress.(interface{ Stop() time.Duration }); ok {
		s.Stop()
	}
	if a.connector == nil {
		return nil
	}
	return a.connector.Close()
}
