package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/webuildworld/webuild/internal/contracts/webuildworld"
	"github.com/webuildworld/webuild/internal/devnet"
	"github.com/webuildworld/webuild/internal/devnet/kv"
	"github.com/webuildworld/webuild/internal/domain/config"
)

// Backend is the chain access the registry binding needs. It is satisfied by
// *ethclient.Client and by the in-process *devnet.Chain.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

var (
	_ Backend = (*ethclient.Client)(nil)
	_ Backend = (*devnet.Chain)(nil)
)

// Connector opens the backend of the selected network on first use
type Connector struct {
	cfg *config.RuntimeConfig
	log *slog.Logger

	mu      sync.Mutex
	backend Backend
	chain   *devnet.Chain
	store   kv.Store
	client  *ethclient.Client
}

// NewConnector creates a connector for the runtime network
func NewConnector(cfg *config.RuntimeConfig, log *slog.Logger) *Connector {
	return &Connector{
		cfg: cfg,
		log: log.With("component", "Connector"),
	}
}

// Backend returns the backend for the selected network, connecting if needed
func (c *Connector) Backend(ctx context.Context) (Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backend != nil {
		return c.backend, nil
	}

	network := c.cfg.Network
	if network == nil {
		return nil, errors.New("no network selected")
	}

	if network.InProcess {
		chain, err := c.openDevnet(nil)
		if err != nil {
			return nil, err
		}
		c.backend = chain
		return c.backend, nil
	}

	client, err := ethclient.DialContext(ctx, network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	// Verify chain ID matches
	networkChainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID from %s: %w", network.RPCURL, err)
	}
	if network.ChainID == 0 {
		network.ChainID = networkChainID.Uint64()
	} else if networkChainID.Uint64() != network.ChainID {
		client.Close()
		return nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", network.ChainID, networkChainID.Uint64())
	}

	c.log.Debug("connected", "network", network.Name, "rpc", network.RPCURL, "chainId", network.ChainID)
	c.client = client
	c.backend = client
	return c.backend, nil
}

// Devnet opens the dev chain on the configured data dir. Metrics are
// registered with reg when the chain is opened by this call.
func (c *Connector) Devnet(reg prometheus.Registerer) (*devnet.Chain, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.openDevnet(reg)
}

func (c *Connector) openDevnet(reg prometheus.Registerer) (*devnet.Chain, error) {
	if c.chain != nil {
		return c.chain, nil
	}

	store, err := kv.OpenBadger(c.cfg.Devnet.DataDir, c.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open devnet data dir %s: %w", c.cfg.Devnet.DataDir, err)
	}

	chain, err := devnet.New(store, devnet.Config{
		ChainID:    c.cfg.Devnet.ChainID,
		Contracts:  webuildworld.Contracts(),
		Registerer: reg,
	}, c.log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	c.store = store
	c.chain = chain
	return chain, nil
}

// Close releases the RPC connection or the dev chain store
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
	var err error
	if c.store != nil {
		err = c.store.Close()
		c.store = nil
	}
	c.chain = nil
	c.backend = nil
	return err
}
