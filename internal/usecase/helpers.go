package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/domain/models"
)

func mainAddress(d *models.Deployment) common.Address {
	return common.HexToAddress(d.Address)
}

// recordTransaction stores a sent transaction; failures only warn since the chain already has it
func recordTransaction(ctx context.Context, txs TransactionRepository, progress ProgressSink, tx *models.TransactionResult) {
	if err := txs.SaveTransaction(ctx, tx); err != nil {
		progress.Error(fmt.Sprintf("Warning: failed to record transaction %s: %v", tx.Hash.Hex(), err))
	}
}
