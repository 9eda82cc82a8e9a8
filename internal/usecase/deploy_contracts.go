package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/contracts/webuildworld"
	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// DeployContracts deploys the registry contracts and records them
type DeployContracts struct {
	accounts AccountResolver
	client   RegistryClient
	repo     DeploymentRepository
	txs      TransactionRepository
	linker   *LinkContracts
	progress ProgressSink
	clock    func() time.Time
}

// NewDeployContracts creates a new deploy use case
func NewDeployContracts(
	accounts AccountResolver,
	client RegistryClient,
	repo DeploymentRepository,
	txs TransactionRepository,
	linker *LinkContracts,
	progress ProgressSink,
) *DeployContracts {
	return &DeployContracts{
		accounts: accounts,
		client:   client,
		repo:     repo,
		txs:      txs,
		linker:   linker,
		progress: progress,
		clock:    time.Now,
	}
}

// DeployContractsParams contains parameters for deploying
type DeployContractsParams struct {
	From  string
	Label string
	// Contracts to deploy; empty means the implementation followed by main
	Contracts []string
	// Link runs setMain and upgradeProvider once both contracts exist
	Link bool
	// Redeploy replaces recorded deployments that still have code
	Redeploy bool
}

// DeployContractsResult contains the result of deploying
type DeployContractsResult struct {
	ChainID     uint64
	Deployed    []*models.Deployment
	Existing    []*models.Deployment
	Link        *LinkContractsResult
	Transaction map[string]*models.TransactionResult
}

// All returns deployed and existing deployments
func (r *DeployContractsResult) All() []*models.Deployment {
	return append(append([]*models.Deployment{}, r.Deployed...), r.Existing...)
}

// Run deploys the contracts in order
func (d *DeployContracts) Run(ctx context.Context, params DeployContractsParams) (*DeployContractsResult, error) {
	names := params.Contracts
	if len(names) == 0 {
		names = []string{webuildworld.ImplementationName, webuildworld.MainName}
	}
	for _, name := range names {
		if _, ok := webuildworld.ABIFor(name); !ok {
			return nil, fmt.Errorf("unknown contract %q: %w", name, domain.ErrNotFound)
		}
	}

	from, err := d.accounts.ResolveAccount(ctx, params.From)
	if err != nil {
		return nil, err
	}
	chainID, err := d.client.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	result := &DeployContractsResult{
		ChainID:     chainID,
		Transaction: make(map[string]*models.TransactionResult),
	}
	byName := make(map[string]*models.Deployment, len(names))

	for i, name := range names {
		id := models.DeploymentID(chainID, name, params.Label)

		existing, err := d.existing(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing != nil && !params.Redeploy {
			result.Existing = append(result.Existing, existing)
			byName[name] = existing
			continue
		}

		d.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "deploying",
			Current: i + 1,
			Total:   len(names),
			Message: fmt.Sprintf("Deploying %s", name),
			Spinner: true,
		})

		tx, err := d.client.Deploy(ctx, name, from)
		if tx != nil {
			recordTransaction(ctx, d.txs, d.progress, tx)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to deploy %s: %w", name, err)
		}

		now := d.clock()
		dep := &models.Deployment{
			ID:              id,
			ChainID:         chainID,
			ContractName:    name,
			Label:           params.Label,
			Address:         tx.ContractAddress.Hex(),
			Type:            deploymentType(name),
			TransactionHash: tx.Hash.Hex(),
			BlockNumber:     tx.BlockNumber,
			Deployer:        from.Address.Hex(),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if existing != nil {
			dep.CreatedAt = existing.CreatedAt
		}
		if err := d.repo.SaveDeployment(ctx, dep); err != nil {
			return nil, fmt.Errorf("failed to record %s: %w", name, err)
		}

		result.Deployed = append(result.Deployed, dep)
		result.Transaction[name] = tx
		byName[name] = dep
	}

	main, hasMain := byName[webuildworld.MainName]
	impl, hasImpl := byName[webuildworld.ImplementationName]
	if params.Link && hasMain && hasImpl {
		result.Link, err = d.linker.link(ctx, main, impl, params.From)
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// existing returns the recorded deployment if its contract still has code. Records
// whose code is gone (a reset dev chain) are treated as absent.
func (d *DeployContracts) existing(ctx context.Context, id string) (*models.Deployment, error) {
	dep, err := d.repo.GetDeployment(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ok, err := d.client.HasCode(ctx, common.HexToAddress(dep.Address))
	if err != nil {
		return nil, err
	}
	if !ok {
		d.progress.Info(fmt.Sprintf("Recorded %s at %s has no code, redeploying", dep.GetShortID(), dep.Address))
		if err := d.repo.DeleteDeployment(ctx, dep.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return dep, nil
}

func deploymentType(name string) models.DeploymentType {
	switch name {
	case webuildworld.MainName:
		return models.MainDeployment
	case webuildworld.ImplementationName:
		return models.ImplementationDeployment
	}
	return models.UnknownDeployment
}
