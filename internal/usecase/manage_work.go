package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// WorkOperation is a brick life cycle transition
type WorkOperation string

const (
	WorkStart  WorkOperation = "start"
	WorkAccept WorkOperation = "accept"
	WorkCancel WorkOperation = "cancel"
)

// ManageWork moves a brick through its life cycle
type ManageWork struct {
	resolver *ResolveDeployment
	accounts AccountResolver
	client   RegistryClient
	txs      TransactionRepository
	progress ProgressSink
}

// NewManageWork creates a new work management use case
func NewManageWork(
	resolver *ResolveDeployment,
	accounts AccountResolver,
	client RegistryClient,
	txs TransactionRepository,
	progress ProgressSink,
) *ManageWork {
	return &ManageWork{
		resolver: resolver,
		accounts: accounts,
		client:   client,
		txs:      txs,
		progress: progress,
	}
}

// ManageWorkParams contains parameters for a life cycle transition
type ManageWorkParams struct {
	Operation WorkOperation
	Main      string
	From      string
	BrickID   uint64
	// Builder is the account whose work is accepted
	Builder string
}

// ManageWorkResult contains the brick after the transition
type ManageWorkResult struct {
	Operation   WorkOperation
	Brick       *models.Brick
	Sender      *models.Account
	Transaction *models.TransactionResult
}

// Execute performs the transition
func (m *ManageWork) Execute(ctx context.Context, params ManageWorkParams) (*ManageWorkResult, error) {
	if params.BrickID == 0 {
		return nil, fmt.Errorf("brick id is required")
	}
	main, err := m.resolver.Main(ctx, params.Main)
	if err != nil {
		return nil, err
	}
	from, err := m.accounts.ResolveAccount(ctx, params.From)
	if err != nil {
		return nil, err
	}
	addr := mainAddress(main)

	brick, err := m.client.Brick(ctx, addr, params.BrickID)
	if err != nil {
		return nil, fmt.Errorf("brick %d: %w", params.BrickID, err)
	}

	if err := checkTransition(params.Operation, brick, from.Address); err != nil {
		return nil, err
	}

	var tx *models.TransactionResult
	switch params.Operation {
	case WorkStart:
		m.progress.Info(fmt.Sprintf("Starting work on brick %d as %s", brick.ID, from.Name))
		tx, err = m.client.StartWork(ctx, addr, from, brick.ID)
	case WorkAccept:
		if params.Builder == "" {
			return nil, fmt.Errorf("a builder is required to accept work")
		}
		builder, rerr := m.accounts.ResolveAccount(ctx, params.Builder)
		if rerr != nil {
			return nil, rerr
		}
		builders, berr := m.client.BrickBuilders(ctx, addr, brick.ID)
		if berr != nil {
			return nil, berr
		}
		if !slices.Contains(builders, builder.Address) {
			return nil, fmt.Errorf("%s has not started work on brick %d: %w", builder.Address.Hex(), brick.ID, domain.ErrBrickState)
		}
		m.progress.Info(fmt.Sprintf("Accepting work on brick %d from %s", brick.ID, builder.Address.Hex()))
		tx, err = m.client.AcceptWork(ctx, addr, from, brick.ID, builder.Address)
	case WorkCancel:
		m.progress.Info(fmt.Sprintf("Cancelling brick %d and refunding %s ETH", brick.ID, domain.FormatEther(brick.Value)))
		tx, err = m.client.CancelBrick(ctx, addr, from, brick.ID)
	}
	if tx != nil {
		recordTransaction(ctx, m.txs, m.progress, tx)
	}
	if err != nil {
		return nil, err
	}

	updated, err := m.client.Brick(ctx, addr, brick.ID)
	if err != nil {
		return nil, err
	}
	if updated.Builders, err = m.client.BrickBuilders(ctx, addr, brick.ID); err != nil {
		return nil, err
	}
	return &ManageWorkResult{
		Operation:   params.Operation,
		Brick:       updated,
		Sender:      from,
		Transaction: tx,
	}, nil
}

// checkTransition applies the contract's life cycle rules before sending a transaction
func checkTransition(op WorkOperation, b *models.Brick, sender common.Address) error {
	closed := b.Status == models.BrickCompleted || b.Status == models.BrickCancelled
	switch op {
	case WorkStart:
		if closed {
			return fmt.Errorf("brick %d is %s: %w", b.ID, b.Status, domain.ErrBrickState)
		}
		if b.Owner == sender {
			return fmt.Errorf("owner cannot build own brick %d: %w", b.ID, domain.ErrBrickState)
		}
	case WorkAccept:
		if b.Owner != sender {
			return fmt.Errorf("brick %d is owned by %s: %w", b.ID, b.Owner.Hex(), domain.ErrNotOwner)
		}
		if b.Status != models.BrickStarted {
			return fmt.Errorf("brick %d is %s, not started: %w", b.ID, b.Status, domain.ErrBrickState)
		}
	case WorkCancel:
		if b.Owner != sender {
			return fmt.Errorf("brick %d is owned by %s: %w", b.ID, b.Owner.Hex(), domain.ErrNotOwner)
		}
		if closed {
			return fmt.Errorf("brick %d is already %s: %w", b.ID, b.Status, domain.ErrBrickState)
		}
	default:
		return fmt.Errorf("unknown operation: %s", op)
	}
	return nil
}
