// Package webuild binds the WeBuildWorld registry contracts over any chain backend.
package webuild

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/webuildworld/webuild/internal/adapters/blockchain"
	"github.com/webuildworld/webuild/internal/contracts/webuildworld"
	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/config"
	"github.com/webuildworld/webuild/internal/domain/models"
	"github.com/webuildworld/webuild/internal/usecase"
)

var (
	// MainMetaData describes the WeBuildWorld main contract
	MainMetaData = bind.MetaData{
		ABI: webuildworld.MainABI,
		ID:  webuildworld.MainName,
	}
	// ImplementationMetaData describes the WeBuildWorldImplementation provider contract
	ImplementationMetaData = bind.MetaData{
		ABI: webuildworld.ImplementationABI,
		ID:  webuildworld.ImplementationName,
	}
)

// BackendSource hands out the backend of the selected network
type BackendSource interface {
	Backend(ctx context.Context) (blockchain.Backend, error)
}

// Binding talks to deployed registry contracts
type Binding struct {
	backends  BackendSource
	artifacts *ArtifactLoader
	native    bool
	mainABI   *abi.ABI
	implABI   *abi.ABI
	log       *slog.Logger
}

// NewBinding creates a binding for the runtime network
func NewBinding(backends BackendSource, cfg *config.RuntimeConfig, log *slog.Logger) (*Binding, error) {
	mainABI, err := MainMetaData.ParseABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s ABI: %w", MainMetaData.ID, err)
	}
	implABI, err := ImplementationMetaData.ParseABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s ABI: %w", ImplementationMetaData.ID, err)
	}

	native := cfg.Network != nil && cfg.Network.NativeContracts
	return &Binding{
		backends:  backends,
		artifacts: NewArtifactLoader(cfg.ArtifactsDir),
		native:    native,
		mainABI:   mainABI,
		implABI:   implABI,
		log:       log.With("component", "WeBuildBinding"),
	}, nil
}

// ChainID returns the chain id of the connected network
func (b *Binding) ChainID(ctx context.Context) (uint64, error) {
	backend, err := b.backends.Backend(ctx)
	if err != nil {
		return 0, err
	}
	id, err := backend.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return id.Uint64(), nil
}

// Balance returns the latest balance of addr in wei
func (b *Binding) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	backend, err := b.backends.Backend(ctx)
	if err != nil {
		return nil, err
	}
	return backend.BalanceAt(ctx, addr, nil)
}

// HasCode reports whether a contract is deployed at addr
func (b *Binding) HasCode(ctx context.Context, addr common.Address) (bool, error) {
	backend, err := b.backends.Backend(ctx)
	if err != nil {
		return false, err
	}
	code, err := backend.CodeAt(ctx, addr, nil)
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

func (b *Binding) instance(backend blockchain.Backend, addr common.Address, parsed *abi.ABI) *bind.BoundContract {
	return bind.NewBoundContract(addr, *parsed, backend, backend, backend)
}

func (b *Binding) transactOpts(ctx context.Context, backend blockchain.Backend, from *models.Account, value *big.Int) (*bind.TransactOpts, error) {
	if from == nil || !from.CanSign() {
		name := "<nil>"
		if from != nil {
			name = from.Name
		}
		return nil, fmt.Errorf("account %s has no private key: %w", name, domain.ErrUnknownAccount)
	}
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	opts := bind.NewKeyedTransactor(from.PrivateKey, chainID)
	opts.Context = ctx
	opts.Value = value
	return opts, nil
}

// call runs a view method and unpacks its outputs
func (b *Binding) call(ctx context.Context, addr common.Address, parsed *abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	backend, err := b.backends.Backend(ctx)
	if err != nil {
		return nil, err
	}
	calldata, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	out, err := bind.Call(b.instance(backend, addr, parsed), &bind.CallOpts{Context: ctx}, calldata,
		func(data []byte) ([]interface{}, error) {
			return parsed.Unpack(method, data)
		})
	if err != nil {
		return nil, callError(method, err)
	}
	return out, nil
}

// transact sends a state-changing method call and waits for its receipt
func (b *Binding) transact(ctx context.Context, addr common.Address, parsed *abi.ABI, from *models.Account, value *big.Int, method string, args ...interface{}) (*models.TransactionResult, error) {
	backend, err := b.backends.Backend(ctx)
	if err != nil {
		return nil, err
	}
	calldata, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	opts, err := b.transactOpts(ctx, backend, from, value)
	if err != nil {
		return nil, err
	}

	tx, err := bind.Transact(b.instance(backend, addr, parsed), opts, calldata)
	if err != nil {
		return nil, callError(method, err)
	}
	b.log.Debug("sent transaction", "method", method, "hash", tx.Hash(), "from", opts.From, "to", addr)

	receipt, err := bind.WaitMined(ctx, backend, tx.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed waiting for %s receipt: %w", method, err)
	}
	return b.result(method, opts.From, tx, receipt)
}

func (b *Binding) result(method string, from common.Address, tx *types.Transaction, receipt *types.Receipt) (*models.TransactionResult, error) {
	res := &models.TransactionResult{
		Hash:        tx.Hash(),
		ChainID:     tx.ChainId().Uint64(),
		Method:      method,
		From:        from,
		To:          tx.To(),
		Value:       tx.Value(),
		Status:      models.TransactionStatusSuccess,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
		Events:      b.decodeLogs(receipt.Logs),
	}
	if tx.To() == nil {
		addr := receipt.ContractAddress
		res.ContractAddress = &addr
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		res.Status = models.TransactionStatusFailed
		return res, &domain.TransactionFailedError{Hash: tx.Hash().Hex(), Method: method}
	}
	return res, nil
}

const revertedMarker = "execution reverted"

// callError turns backend reverts into domain errors
func callError(method string, err error) error {
	reason, ok := revertReason(err)
	if !ok {
		return fmt.Errorf("%s failed: %w", method, err)
	}
	if reason == "brick not found" {
		return fmt.Errorf("%s: %w", reason, domain.ErrNotFound)
	}
	if reason == "provider not set" {
		return domain.ErrNotLinked
	}
	return &domain.RevertedError{Method: method, Reason: reason}
}

// revertReason extracts the Error(string) reason of a revert, from rpc error data
// when the backend is remote, or from the message otherwise.
func revertReason(err error) (string, bool) {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if s, ok := dataErr.ErrorData().(string); ok {
			if data, decErr := hexutil.Decode(s); decErr == nil {
				if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return reason, true
				}
			}
		}
	}

	msg := err.Error()
	i := strings.Index(msg, revertedMarker)
	if i < 0 {
		return "", false
	}
	return strings.TrimPrefix(msg[i+len(revertedMarker):], ": "), true
}

// Ensure the binding implements the interface
var _ usecase.RegistryClient = (*Binding)(nil)
