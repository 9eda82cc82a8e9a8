package blockchain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/usecase"
)

const checkTimeout = 5 * time.Second

// CheckerAdapter implements the BlockchainChecker interface on the connected backend
type CheckerAdapter struct {
	connector *Connector
}

// NewCheckerAdapter creates a new blockchain checker adapter
func NewCheckerAdapter(connector *Connector) *CheckerAdapter {
	return &CheckerAdapter{connector: connector}
}

// CheckDeploymentExists checks if a contract exists at the given address
func (c *CheckerAdapter) CheckDeploymentExists(ctx context.Context, address common.Address) (exists bool, reason string, err error) {
	backend, err := c.connector.Backend(ctx)
	if err != nil {
		return false, "", err
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	code, err := backend.CodeAt(ctx, address, nil)
	if err != nil {
		return false, fmt.Sprintf("failed to check code: %v", err), nil
	}

	// If no code at address, contract doesn't exist
	if len(code) == 0 {
		return false, "no code at address", nil
	}

	return true, "", nil
}

// CheckTransactionExists checks if a transaction was mined
func (c *CheckerAdapter) CheckTransactionExists(ctx context.Context, txHash common.Hash) (exists bool, blockNumber uint64, reason string, err error) {
	backend, err := c.connector.Backend(ctx)
	if err != nil {
		return false, 0, "", err
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	receipt, err := backend.TransactionReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return false, 0, "transaction not found on-chain", nil
		}
		return false, 0, "", fmt.Errorf("failed to get transaction receipt: %w", err)
	}

	if receipt.BlockNumber != nil {
		return true, receipt.BlockNumber.Uint64(), "", nil
	}
	return true, 0, "", nil
}

// Ensure the adapter implements the interface
var _ usecase.BlockchainChecker = (*CheckerAdapter)(nil)
