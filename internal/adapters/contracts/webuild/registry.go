package webuild

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/contracts/webuildworld"
	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// Deploy creates a registry contract from the given account and waits for the receipt
func (b *Binding) Deploy(ctx context.Context, contractName string, from *models.Account) (*models.TransactionResult, error) {
	if _, ok := webuildworld.ABIFor(contractName); !ok {
		return nil, fmt.Errorf("unknown contract %q: %w", contractName, domain.ErrNotFound)
	}
	bytecode, err := b.bytecode(contractName)
	if err != nil {
		return nil, err
	}

	backend, err := b.backends.Backend(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := b.transactOpts(ctx, backend, from, nil)
	if err != nil {
		return nil, err
	}

	addr, tx, err := bind.DeployContract(opts, bytecode, backend, nil)
	if err != nil {
		return nil, callError("deploy "+contractName, err)
	}
	b.log.Debug("sent deployment", "contract", contractName, "hash", tx.Hash(), "address", addr)

	receipt, err := bind.WaitMined(ctx, backend, tx.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed waiting for %s deployment: %w", contractName, err)
	}
	res, err := b.result("deploy "+contractName, opts.From, tx, receipt)
	if err != nil {
		return res, err
	}
	if *res.ContractAddress != addr {
		return res, fmt.Errorf("deployment address mismatch: expected %s, receipt has %s", addr.Hex(), res.ContractAddress.Hex())
	}
	return res, nil
}

// bytecode returns the creation code of a contract for the selected network
func (b *Binding) bytecode(contractName string) ([]byte, error) {
	if b.native {
		return webuildworld.InitCode(contractName), nil
	}
	code, err := b.artifacts.Bytecode(contractName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s needs compiled bytecode: %v", domain.ErrUnsupported, contractName, err)
	}
	return code, nil
}

// Owner returns the owner of a registry contract
func (b *Binding) Owner(ctx context.Context, contract common.Address) (common.Address, error) {
	out, err := b.call(ctx, contract, b.mainABI, "owner")
	if err != nil {
		return common.Address{}, err
	}
	return *abiConvert[common.Address](out[0]), nil
}

// Provider returns the implementation main forwards to
func (b *Binding) Provider(ctx context.Context, main common.Address) (common.Address, error) {
	out, err := b.call(ctx, main, b.mainABI, "getProvider")
	if err != nil {
		return common.Address{}, err
	}
	return *abiConvert[common.Address](out[0]), nil
}

// MainOf returns the main contract an implementation serves
func (b *Binding) MainOf(ctx context.Context, implementation common.Address) (common.Address, error) {
	out, err := b.call(ctx, implementation, b.implABI, "main")
	if err != nil {
		return common.Address{}, err
	}
	return *abiConvert[common.Address](out[0]), nil
}

// SetMain tells implementation which main contract it serves
func (b *Binding) SetMain(ctx context.Context, implementation, main common.Address, from *models.Account) (*models.TransactionResult, error) {
	return b.transact(ctx, implementation, b.implABI, from, nil, "setMain", main)
}

// UpgradeProvider points main at a new implementation
func (b *Binding) UpgradeProvider(ctx context.Context, main, implementation common.Address, from *models.Account) (*models.TransactionResult, error) {
	return b.transact(ctx, main, b.mainABI, from, nil, "upgradeProvider", implementation)
}
