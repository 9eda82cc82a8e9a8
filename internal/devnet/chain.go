// Package devnet is a single node, automining chain that executes the registry
// contracts natively and speaks the Ethereum JSON-RPC subset used by ethclient.
package devnet

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/params"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/webuildworld/webuild/internal/devnet/kv"
	"github.com/webuildworld/webuild/internal/devnet/vm"
	domainconfig "github.com/webuildworld/webuild/internal/domain/config"
)

const (
	txGas          = 21_000
	txDataGas      = 16
	contractGas    = 50_000
	blockGasLimit  = 30_000_000
	clientIdentity = "webuild-devnet/v1"
)

var (
	ErrNonceTooLow        = errors.New("nonce too low")
	ErrNonceTooHigh       = errors.New("nonce too high")
	ErrIntrinsicGas       = errors.New("intrinsic gas too low")
	ErrInsufficientFunds  = errors.New("insufficient funds for gas * price + value")
	ErrAlreadyKnown       = errors.New("already known")
	ErrMissingDestination = errors.New("call without destination")
)

// Config configures a dev chain
type Config struct {
	ChainID  uint64
	GasPrice *big.Int
	// Alloc funds accounts at genesis
	Alloc     map[common.Address]*big.Int
	Contracts []vm.Contract
	// Registerer receives the chain metrics; nil leaves them unregistered
	Registerer prometheus.Registerer
	Clock      func() time.Time
}

// DefaultAlloc funds every dev account with 10000 ether
func DefaultAlloc() map[common.Address]*big.Int {
	alloc := make(map[common.Address]*big.Int, len(domainconfig.DevAccounts))
	for _, acct := range domainconfig.DevAccounts {
		key, err := crypto.HexToECDSA(acct.PrivateKey)
		if err != nil {
			panic(fmt.Sprintf("invalid dev key %s: %v", acct.Name, err))
		}
		alloc[crypto.PubkeyToAddress(key.PublicKey)] = new(big.Int).Mul(big.NewInt(10_000), big.NewInt(params.Ether))
	}
	return alloc
}

// Chain is the dev chain state machine
type Chain struct {
	mu        sync.RWMutex
	store     kv.Store
	cfg       Config
	chainID   *big.Int
	signer    types.Signer
	contracts map[string]vm.Contract
	logFeed   event.Feed
	metrics   *metrics
	log       *slog.Logger
}

// New opens a chain on store, writing the genesis block when the store is empty
func New(store kv.Store, cfg Config, log *slog.Logger) (*Chain, error) {
	if cfg.ChainID == 0 {
		cfg.ChainID = domainconfig.DefaultDevnetChainID
	}
	if cfg.GasPrice == nil {
		cfg.GasPrice = big.NewInt(params.GWei)
	}
	if cfg.Alloc == nil {
		cfg.Alloc = DefaultAlloc()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	m, err := newMetrics(cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	c := &Chain{
		store:     store,
		cfg:       cfg,
		chainID:   new(big.Int).SetUint64(cfg.ChainID),
		signer:    types.LatestSignerForChainID(new(big.Int).SetUint64(cfg.ChainID)),
		contracts: make(map[string]vm.Contract, len(cfg.Contracts)),
		metrics:   m,
		log:       log.With("component", "devnet"),
	}
	for _, contract := range cfg.Contracts {
		c.contracts[contract.Name()] = contract
	}

	head, ok, err := getHead(store)
	if err != nil {
		return nil, fmt.Errorf("failed to read head: %w", err)
	}
	if !ok {
		if err := c.writeGenesis(); err != nil {
			return nil, fmt.Errorf("failed to write genesis: %w", err)
		}
		c.log.Info("initialized dev chain", "chainId", cfg.ChainID, "accounts", len(cfg.Alloc))
	} else {
		c.log.Debug("opened dev chain", "chainId", cfg.ChainID, "head", head)
		c.metrics.height.Set(float64(head))
	}
	return c, nil
}

func (c *Chain) writeGenesis() error {
	genesis := &types.Header{
		Number:     big.NewInt(0),
		GasLimit:   blockGasLimit,
		Time:       uint64(c.cfg.Clock().Unix()),
		Difficulty: big.NewInt(0),
		Extra:      []byte(clientIdentity),
		UncleHash:  types.EmptyUncleHash,
		Root:       types.EmptyRootHash,
		TxHash:     types.EmptyTxsHash,
	}
	return c.store.Batch(func(w kv.Writer) error {
		for addr, amount := range c.cfg.Alloc {
			if err := setBalance(w, addr, amount); err != nil {
				return err
			}
		}
		return writeBlock(w, genesis, nil, nil)
	})
}

// ChainConfigID returns the configured chain id
func (c *Chain) ChainConfigID() uint64 {
	return c.cfg.ChainID
}

// Head returns the latest block header
func (c *Chain) Head() (*types.Header, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.head()
}

func (c *Chain) head() (*types.Header, error) {
	number, _, err := getHead(c.store)
	if err != nil {
		return nil, err
	}
	return getHeader(c.store, number)
}

func (c *Chain) requiredGas(r kv.Reader, to *common.Address, data []byte) (uint64, error) {
	gas := uint64(txGas) + uint64(len(data))*txDataGas
	if to == nil {
		return gas + contractGas, nil
	}
	code, err := getCode(r, *to)
	if err != nil {
		return 0, err
	}
	if len(code) > 0 {
		gas += contractGas
	}
	return gas, nil
}

func effectiveGasPrice(tx *types.Transaction) *big.Int {
	switch tx.Type() {
	case types.LegacyTxType, types.AccessListTxType:
		return tx.GasPrice()
	}
	// without a base fee the tip is the whole price, bounded by the fee cap
	if tx.GasTipCap().Cmp(tx.GasFeeCap()) < 0 {
		return tx.GasTipCap()
	}
	return tx.GasFeeCap()
}

// applyTransaction validates, executes and mines tx in its own block
func (c *Chain) applyTransaction(tx *types.Transaction) (*types.Receipt, error) {
	from, err := types.Sender(c.signer, tx)
	if err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if known, err := c.store.Has(hashKey(txPrefix, tx.Hash())); err != nil {
		return nil, err
	} else if known {
		return nil, ErrAlreadyKnown
	}

	parent, err := c.head()
	if err != nil {
		return nil, err
	}
	outer := kv.NewOverlay(c.store)

	nonce, err := getNonce(outer, from)
	if err != nil {
		return nil, err
	}
	switch {
	case tx.Nonce() < nonce:
		return nil, fmt.Errorf("%w: address %s, tx: %d state: %d", ErrNonceTooLow, from.Hex(), tx.Nonce(), nonce)
	case tx.Nonce() > nonce:
		return nil, fmt.Errorf("%w: address %s, tx: %d state: %d", ErrNonceTooHigh, from.Hex(), tx.Nonce(), nonce)
	}

	gas, err := c.requiredGas(outer, tx.To(), tx.Data())
	if err != nil {
		return nil, err
	}
	if tx.Gas() < gas {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrIntrinsicGas, tx.Gas(), gas)
	}

	price := effectiveGasPrice(tx)
	fee := new(big.Int).Mul(new(big.Int).SetUint64(gas), price)
	balance, err := getBalance(outer, from)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(new(big.Int).Add(fee, tx.Value())) < 0 {
		return nil, fmt.Errorf("%w: address %s have %s want %s", ErrInsufficientFunds, from.Hex(), balance, new(big.Int).Add(fee, tx.Value()))
	}
	if err := setBalance(outer, from, balance.Sub(balance, fee)); err != nil {
		return nil, err
	}
	if err := setNonce(outer, from, nonce+1); err != nil {
		return nil, err
	}

	number := parent.Number.Uint64() + 1
	blockTime := uint64(c.cfg.Clock().Unix())
	if blockTime <= parent.Time {
		blockTime = parent.Time + 1
	}

	exec := &execution{
		contracts:   c.contracts,
		state:       kv.NewOverlay(outer),
		blockNumber: number,
		time:        blockTime,
	}

	status := types.ReceiptStatusSuccessful
	var contractAddress common.Address
	if tx.To() == nil {
		contractAddress, err = exec.create(from, nonce, tx.Value(), tx.Data())
	} else {
		_, err = exec.call(from, *tx.To(), tx.Value(), tx.Data())
	}
	switch {
	case err == nil:
		if err := exec.state.Commit(outer); err != nil {
			return nil, err
		}
	case isExecutionFailure(err):
		status = types.ReceiptStatusFailed
		exec.logs = nil
		c.log.Debug("transaction reverted", "hash", tx.Hash(), "reason", revertReason(err))
	default:
		return nil, fmt.Errorf("execution failed: %w", err)
	}

	bloom := types.CreateBloom(&types.Receipt{Logs: exec.logs})
	header := &types.Header{
		ParentHash: parent.Hash(),
		UncleHash:  types.EmptyUncleHash,
		Root:       types.EmptyRootHash,
		TxHash:     tx.Hash(),
		Number:     new(big.Int).SetUint64(number),
		GasLimit:   blockGasLimit,
		GasUsed:    gas,
		Time:       blockTime,
		Difficulty: big.NewInt(0),
		Extra:      []byte(clientIdentity),
		Bloom:      bloom,
	}
	blockHash := header.Hash()

	logs := make([]*types.Log, 0, len(exec.logs))
	for i, l := range exec.logs {
		l.BlockNumber = number
		l.BlockHash = blockHash
		l.TxHash = tx.Hash()
		l.TxIndex = 0
		l.Index = uint(i)
		logs = append(logs, l)
	}

	receipt := &types.Receipt{
		Type:              tx.Type(),
		Status:            status,
		CumulativeGasUsed: gas,
		Logs:              logs,
		Bloom:             bloom,
		TxHash:            tx.Hash(),
		GasUsed:           gas,
		EffectiveGasPrice: price,
		BlockHash:         blockHash,
		BlockNumber:       new(big.Int).SetUint64(number),
		TransactionIndex:  0,
	}
	if tx.To() == nil && status == types.ReceiptStatusSuccessful {
		receipt.ContractAddress = contractAddress
	}

	if err := writeBlock(outer, header, tx, receipt); err != nil {
		return nil, err
	}
	if err := c.store.Batch(outer.Commit); err != nil {
		return nil, fmt.Errorf("failed to commit block %d: %w", number, err)
	}
	return receipt, nil
}

// simulate runs a message on a throwaway overlay. A nil to creates a contract.
func (c *Chain) simulate(from common.Address, to *common.Address, value *big.Int, data []byte) ([]byte, uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	parent, err := c.head()
	if err != nil {
		return nil, 0, err
	}
	exec := &execution{
		contracts:   c.contracts,
		state:       kv.NewOverlay(c.store),
		blockNumber: parent.Number.Uint64() + 1,
		time:        max(uint64(c.cfg.Clock().Unix()), parent.Time+1),
	}
	gas, err := c.requiredGas(exec.state, to, data)
	if err != nil {
		return nil, 0, err
	}

	var out []byte
	if to == nil {
		nonce, err := getNonce(exec.state, from)
		if err != nil {
			return nil, 0, err
		}
		_, err = exec.create(from, nonce, value, data)
		if err != nil {
			return nil, 0, c.simulationError(err)
		}
		return nil, gas, nil
	}
	out, err = exec.call(from, *to, value, data)
	if err != nil {
		return nil, 0, c.simulationError(err)
	}
	return out, gas, nil
}

func (c *Chain) simulationError(err error) error {
	if errors.Is(err, vm.ErrInsufficientBalance) {
		return vm.Revert("insufficient balance for transfer")
	}
	if _, ok := vm.IsRevert(err); ok {
		c.metrics.reverts.Inc()
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, kv.ErrNotFound)
}

// ClientVersion identifies the node over web3_clientVersion
func ClientVersion() string {
	return clientIdentity
}
