package devnet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// Chain is usable in-process wherever an ethclient would be
var (
	_ bind.ContractBackend = (*Chain)(nil)
	_ bind.DeployBackend   = (*Chain)(nil)
)

func (c *Chain) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.chainID), nil
}

func (c *Chain) BlockNumber(ctx context.Context) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, _, err := getHead(c.store)
	return n, err
}

func (c *Chain) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return getBalance(c.store, account)
}

func (c *Chain) NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return getNonce(c.store, account)
}

func (c *Chain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return c.NonceAt(ctx, account, nil)
}

func (c *Chain) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return getCode(c.store, contract)
}

func (c *Chain) PendingCodeAt(ctx context.Context, contract common.Address) ([]byte, error) {
	return c.CodeAt(ctx, contract, nil)
}

func (c *Chain) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if msg.To == nil {
		return nil, ErrMissingDestination
	}
	out, _, err := c.simulate(msg.From, msg.To, msg.Value, msg.Data)
	return out, err
}

func (c *Chain) PendingCallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return c.CallContract(ctx, msg, nil)
}

func (c *Chain) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	_, gas, err := c.simulate(msg.From, msg.To, msg.Value, msg.Data)
	return gas, err
}

func (c *Chain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.cfg.GasPrice), nil
}

func (c *Chain) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.cfg.GasPrice), nil
}

// HeaderByNumber returns the header at number, or the head for nil. Headers carry no
// base fee, so clients build legacy transactions.
func (c *Chain) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if number == nil || number.Sign() < 0 {
		return c.head()
	}
	header, err := getHeader(c.store, number.Uint64())
	if isNotFound(err) {
		return nil, ethereum.NotFound
	}
	return header, err
}

// SendTransaction executes tx and mines it into a new block before returning
func (c *Chain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	receipt, err := c.applyTransaction(tx)
	c.mu.Unlock()
	if err != nil {
		c.metrics.rejected.Inc()
		return err
	}

	c.metrics.observe(receipt)
	c.log.Debug("mined transaction",
		"hash", tx.Hash(),
		"block", receipt.BlockNumber,
		"status", receipt.Status,
		"logs", len(receipt.Logs))
	if len(receipt.Logs) > 0 {
		c.logFeed.Send(receipt.Logs)
	}
	return nil
}

func (c *Chain) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	receipt, err := getReceipt(c.store, txHash)
	if isNotFound(err) {
		return nil, ethereum.NotFound
	}
	return receipt, err
}

// FilterLogs returns the logs of mined blocks matching q
func (c *Chain) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	head, _, err := getHead(c.store)
	if err != nil {
		return nil, err
	}
	from, to := uint64(0), head
	if q.BlockHash != nil {
		number, err := c.blockNumberByHash(*q.BlockHash, head)
		if err != nil {
			return nil, err
		}
		from, to = number, number
	} else {
		if q.FromBlock != nil && q.FromBlock.Sign() >= 0 {
			from = q.FromBlock.Uint64()
		}
		if q.ToBlock != nil && q.ToBlock.Sign() >= 0 && q.ToBlock.Uint64() < head {
			to = q.ToBlock.Uint64()
		}
	}

	logs := make([]types.Log, 0)
	for n := from; n <= to; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := c.store.Get(numberKey(blockTxPrefix, n))
		if isNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		receipt, err := getReceipt(c.store, common.BytesToHash(raw))
		if err != nil {
			return nil, err
		}
		for _, l := range receipt.Logs {
			if matchLog(q, l) {
				logs = append(logs, *l)
			}
		}
	}
	return logs, nil
}

func (c *Chain) blockNumberByHash(hash common.Hash, head uint64) (uint64, error) {
	for n := head; ; n-- {
		header, err := getHeader(c.store, n)
		if err != nil {
			return 0, err
		}
		if header.Hash() == hash {
			return n, nil
		}
		if n == 0 {
			return 0, ethereum.NotFound
		}
	}
}

// SubscribeFilterLogs streams logs matching q as blocks are mined. The block range of
// q is ignored.
func (c *Chain) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	sink := make(chan []*types.Log, 16)
	sub := c.logFeed.Subscribe(sink)
	c.metrics.subscriptions.Inc()

	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer func() {
			sub.Unsubscribe()
			c.metrics.subscriptions.Dec()
		}()
		for {
			select {
			case logs := <-sink:
				for _, l := range logs {
					if !matchLog(q, l) {
						continue
					}
					select {
					case ch <- *l:
					case <-quit:
						return nil
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}), nil
}

// matchLog applies the address and topic criteria of q
func matchLog(q ethereum.FilterQuery, l *types.Log) bool {
	if len(q.Addresses) > 0 {
		found := false
		for _, a := range q.Addresses {
			if a == l.Address {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(q.Topics) > len(l.Topics) {
		return false
	}
	for i, alternatives := range q.Topics {
		if len(alternatives) == 0 {
			continue
		}
		match := false
		for _, t := range alternatives {
			if t == l.Topics[i] {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	return true
}
