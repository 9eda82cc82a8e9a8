package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/domain/models"
)

// LinkContracts wires an implementation and a main contract together:
// setMain(main) on the implementation, then upgradeProvider(implementation) on main.
type LinkContracts struct {
	resolver *ResolveDeployment
	accounts AccountResolver
	client   RegistryClient
	repo     DeploymentRepository
	txs      TransactionRepository
	progress ProgressSink
	clock    func() time.Time
}

// NewLinkContracts creates a new link use case
func NewLinkContracts(
	resolver *ResolveDeployment,
	accounts AccountResolver,
	client RegistryClient,
	repo DeploymentRepository,
	txs TransactionRepository,
	progress ProgressSink,
) *LinkContracts {
	return &LinkContracts{
		resolver: resolver,
		accounts: accounts,
		client:   client,
		repo:     repo,
		txs:      txs,
		progress: progress,
		clock:    time.Now,
	}
}

// LinkContractsParams contains parameters for linking
type LinkContractsParams struct {
	Main           string
	Implementation string
	From           string
}

// LinkContractsResult contains the result of linking
type LinkContractsResult struct {
	Main             *models.Deployment
	Implementation   *models.Deployment
	PreviousProvider common.Address
	SetMainTx        *models.TransactionResult
	UpgradeTx        *models.TransactionResult
}

// AlreadyLinked reports whether nothing had to be sent
func (r *LinkContractsResult) AlreadyLinked() bool {
	return r.SetMainTx == nil && r.UpgradeTx == nil
}

// Run links the contracts, skipping calls whose effect is already on chain
func (l *LinkContracts) Run(ctx context.Context, params LinkContractsParams) (*LinkContractsResult, error) {
	main, err := l.resolver.Main(ctx, params.Main)
	if err != nil {
		return nil, err
	}
	impl, err := l.resolver.Implementation(ctx, params.Implementation)
	if err != nil {
		return nil, err
	}
	return l.link(ctx, main, impl, params.From)
}

func (l *LinkContracts) link(ctx context.Context, main, impl *models.Deployment, fromRef string) (*LinkContractsResult, error) {
	from, err := l.accounts.ResolveAccount(ctx, fromRef)
	if err != nil {
		return nil, err
	}

	mainAddr := mainAddress(main)
	implAddr := common.HexToAddress(impl.Address)
	result := &LinkContractsResult{Main: main, Implementation: impl}

	currentMain, err := l.client.MainOf(ctx, implAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to read main of %s: %w", impl.GetShortID(), err)
	}
	if currentMain != mainAddr {
		l.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "set_main",
			Message: fmt.Sprintf("Setting main of %s to %s", impl.GetShortID(), main.Address),
			Spinner: true,
		})
		tx, err := l.client.SetMain(ctx, implAddr, mainAddr, from)
		if tx != nil {
			recordTransaction(ctx, l.txs, l.progress, tx)
		}
		if err != nil {
			return nil, fmt.Errorf("setMain failed: %w", err)
		}
		result.SetMainTx = tx
	}

	result.PreviousProvider, err = l.client.Provider(ctx, mainAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider of %s: %w", main.GetShortID(), err)
	}
	if result.PreviousProvider != implAddr {
		l.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "upgrade_provider",
			Message: fmt.Sprintf("Upgrading provider of %s to %s", main.GetShortID(), impl.Address),
			Spinner: true,
		})
		tx, err := l.client.UpgradeProvider(ctx, mainAddr, implAddr, from)
		if tx != nil {
			recordTransaction(ctx, l.txs, l.progress, tx)
		}
		if err != nil {
			return nil, fmt.Errorf("upgradeProvider failed: %w", err)
		}
		result.UpgradeTx = tx

		if main.Type != models.UnknownDeployment {
			main.RecordUpgrade(impl.Address, tx.Hash.Hex(), l.clock())
			if err := l.repo.SaveDeployment(ctx, main); err != nil {
				return nil, fmt.Errorf("failed to record provider: %w", err)
			}
		}
	}

	return result, nil
}
