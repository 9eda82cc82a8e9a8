package usecase

import (
	"context"
	"math/big"
	"net"

	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// DeploymentRepository handles persistence of deployments
type DeploymentRepository interface {
	GetDeployment(ctx context.Context, id string) (*models.Deployment, error)
	GetDeploymentByAddress(ctx context.Context, chainID uint64, address string) (*models.Deployment, error)
	ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error)
	SaveDeployment(ctx context.Context, deployment *models.Deployment) error
	DeleteDeployment(ctx context.Context, id string) error
	Reset(ctx context.Context, chainID uint64) (int, error)
}

// TransactionRepository records the transactions webuild sends
type TransactionRepository interface {
	SaveTransaction(ctx context.Context, tx *models.TransactionResult) error
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*models.TransactionResult, error)
}

// RegistryClient talks to the WeBuildWorld contracts on the selected network
type RegistryClient interface {
	ChainID(ctx context.Context) (uint64, error)
	Balance(ctx context.Context, addr common.Address) (*big.Int, error)
	HasCode(ctx context.Context, addr common.Address) (bool, error)

	Deploy(ctx context.Context, contractName string, from *models.Account) (*models.TransactionResult, error)
	Owner(ctx context.Context, contract common.Address) (common.Address, error)
	Provider(ctx context.Context, main common.Address) (common.Address, error)
	MainOf(ctx context.Context, implementation common.Address) (common.Address, error)
	SetMain(ctx context.Context, implementation, main common.Address, from *models.Account) (*models.TransactionResult, error)
	UpgradeProvider(ctx context.Context, main, implementation common.Address, from *models.Account) (*models.TransactionResult, error)

	AddBrick(ctx context.Context, main common.Address, from *models.Account, brick *models.NewBrick) (uint64, *models.TransactionResult, error)
	StartWork(ctx context.Context, main common.Address, from *models.Account, id uint64) (*models.TransactionResult, error)
	AcceptWork(ctx context.Context, main common.Address, from *models.Account, id uint64, builder common.Address) (*models.TransactionResult, error)
	CancelBrick(ctx context.Context, main common.Address, from *models.Account, id uint64) (*models.TransactionResult, error)

	BrickIDs(ctx context.Context, main common.Address, q domain.BrickQuery) ([]uint64, error)
	BrickIDsByOwner(ctx context.Context, main common.Address, owner common.Address) ([]uint64, error)
	BrickIDsByBuilder(ctx context.Context, main common.Address, builder common.Address) ([]uint64, error)
	Brick(ctx context.Context, main common.Address, id uint64) (*models.Brick, error)
	BrickBuilders(ctx context.Context, main common.Address, id uint64) ([]common.Address, error)
	BrickCount(ctx context.Context, main common.Address) (uint64, error)

	WatchEvents(ctx context.Context, main common.Address, fromBlock uint64, handle func(*models.ContractEvent) error) error
}

// AccountResolver resolves named senders and addresses
type AccountResolver interface {
	// ResolveAccount resolves a configured name, or a hex address as a watch-only account.
	// An empty ref resolves the default sender.
	ResolveAccount(ctx context.Context, ref string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
}

// BlockchainChecker checks on-chain state of contracts and transactions
type BlockchainChecker interface {
	CheckDeploymentExists(ctx context.Context, address common.Address) (exists bool, reason string, err error)
	CheckTransactionExists(ctx context.Context, txHash common.Hash) (exists bool, blockNumber uint64, reason string, err error)
}

// DevnetNode runs the bundled dev chain
type DevnetNode interface {
	// Serve runs the JSON-RPC server on l until ctx is cancelled
	Serve(ctx context.Context, l net.Listener) error
	// Reset wipes the dev chain data directory
	Reset(ctx context.Context) error
	DataDir() string
}

// ComposeLoader reads brick manifests
type ComposeLoader interface {
	Load(ctx context.Context, path string) (*domain.ComposeManifest, error)
}

// BrickSelector handles interactive selection of bricks
type BrickSelector interface {
	SelectBrick(ctx context.Context, bricks []*models.Brick, prompt string) (*models.Brick, error)
}

// DeploymentSelector handles interactive selection of deployments
type DeploymentSelector interface {
	SelectDeployment(ctx context.Context, deployments []*models.Deployment, prompt string) (*models.Deployment, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}
