package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// AddBrick posts a new brick with an ether bounty
type AddBrick struct {
	resolver *ResolveDeployment
	accounts AccountResolver
	client   RegistryClient
	txs      TransactionRepository
	progress ProgressSink
	clock    func() time.Time
}

// NewAddBrick creates a new add brick use case
func NewAddBrick(
	resolver *ResolveDeployment,
	accounts AccountResolver,
	client RegistryClient,
	txs TransactionRepository,
	progress ProgressSink,
) *AddBrick {
	return &AddBrick{
		resolver: resolver,
		accounts: accounts,
		client:   client,
		txs:      txs,
		progress: progress,
		clock:    time.Now,
	}
}

// AddBrickParams contains parameters for adding a brick
type AddBrickParams struct {
	Main  string
	From  string
	Brick models.NewBrick
}

// AddBrickResult contains the new brick id and its transaction
type AddBrickResult struct {
	BrickID     uint64
	Main        *models.Deployment
	Sender      *models.Account
	Transaction *models.TransactionResult
}

// Run validates and submits the brick
func (a *AddBrick) Run(ctx context.Context, params AddBrickParams) (*AddBrickResult, error) {
	brick := params.Brick
	brick.Tags = domain.NormalizeTags(brick.Tags)
	if err := domain.ValidateNewBrick(brick.Title, brick.Value, brick.Tags); err != nil {
		return nil, err
	}
	if brick.Timestamp == 0 {
		brick.Timestamp = uint64(a.clock().Unix())
	}

	main, err := a.resolver.Main(ctx, params.Main)
	if err != nil {
		return nil, err
	}
	from, err := a.accounts.ResolveAccount(ctx, params.From)
	if err != nil {
		return nil, err
	}

	a.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "add_brick",
		Message: fmt.Sprintf("Adding %q with %s ETH from %s", brick.Title, domain.FormatEther(brick.Value), from.Name),
		Spinner: true,
	})

	id, tx, err := a.client.AddBrick(ctx, mainAddress(main), from, &brick)
	if tx != nil {
		recordTransaction(ctx, a.txs, a.progress, tx)
	}
	if err != nil {
		return nil, fmt.Errorf("addBrick failed: %w", err)
	}

	return &AddBrickResult{
		BrickID:     id,
		Main:        main,
		Sender:      from,
		Transaction: tx,
	}, nil
}
