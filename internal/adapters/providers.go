package adapters

import (
	"github.com/google/wire"

	"github.com/webuildworld/webuild/internal/adapters/blockchain"
	"github.com/webuildworld/webuild/internal/adapters/contracts/webuild"
	"github.com/webuildworld/webuild/internal/adapters/devnode"
	"github.com/webuildworld/webuild/internal/adapters/fs"
	"github.com/webuildworld/webuild/internal/adapters/interactive"
	"github.com/webuildworld/webuild/internal/adapters/progress"
	"github.com/webuildworld/webuild/internal/adapters/repository/deployments"
	"github.com/webuildworld/webuild/internal/adapters/senders"
	"github.com/webuildworld/webuild/internal/domain/config"
	"github.com/webuildworld/webuild/internal/usecase"
)

// ProvideDeploymentRepository opens the deployment registry in the data dir
func ProvideDeploymentRepository(cfg *config.RuntimeConfig) (*deployments.FileRepository, error) {
	return deployments.NewFileRepository(cfg.DataDir)
}

// RepositorySet provides the file-backed deployment and transaction registry
var RepositorySet = wire.NewSet(
	ProvideDeploymentRepository,
	wire.Bind(new(usecase.DeploymentRepository), new(*deployments.FileRepository)),
	wire.Bind(new(usecase.TransactionRepository), new(*deployments.FileRepository)),
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewLocalConfigStoreAdapter,
	wire.Bind(new(usecase.LocalConfigStore), new(*fs.LocalConfigStoreAdapter)),

	fs.NewComposeFileLoader,
	wire.Bind(new(usecase.ComposeLoader), new(*fs.ComposeFileLoader)),

	fs.NewComposeStateStoreAdapter,
	wire.Bind(new(usecase.ComposeStateStore), new(*fs.ComposeStateStoreAdapter)),
)

// BlockchainSet provides chain access, the registry binding and the dev chain
var BlockchainSet = wire.NewSet(
	blockchain.NewConnector,
	wire.Bind(new(webuild.BackendSource), new(*blockchain.Connector)),

	blockchain.NewCheckerAdapter,
	wire.Bind(new(usecase.BlockchainChecker), new(*blockchain.CheckerAdapter)),

	webuild.NewBinding,
	wire.Bind(new(usecase.RegistryClient), new(*webuild.Binding)),

	devnode.NewNode,
	wire.Bind(new(usecase.DevnetNode), new(*devnode.Node)),
)

// SendersSet provides account resolution
var SendersSet = wire.NewSet(
	senders.NewService,
	wire.Bind(new(usecase.AccountResolver), new(*senders.Service)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.BrickSelector), new(*interactive.SelectorAdapter)),
	wire.Bind(new(usecase.DeploymentSelector), new(*interactive.SelectorAdapter)),
)

// ProgressSet provides the progress sink for the output mode
var ProgressSet = wire.NewSet(
	progress.NewSink,
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	RepositorySet,
	FSSet,
	BlockchainSet,
	SendersSet,
	InteractiveSet,
	ProgressSet,
)
