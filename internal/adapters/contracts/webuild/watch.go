package webuild

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/webuildworld/webuild/internal/adapters/blockchain"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// PollInterval is how often endpoints without subscriptions are polled for logs
var PollInterval = 2 * time.Second

// WatchEvents replays the registry events of main from fromBlock and then follows new
// ones until ctx is cancelled or handle returns an error.
func (b *Binding) WatchEvents(ctx context.Context, main common.Address, fromBlock uint64, handle func(*models.ContractEvent) error) error {
	backend, err := b.backends.Backend(ctx)
	if err != nil {
		return err
	}

	// Subscribe before replaying so nothing mined in between is lost
	logs := make(chan types.Log, 64)
	sub, subErr := backend.SubscribeFilterLogs(ctx, ethereum.FilterQuery{Addresses: []common.Address{main}}, logs)
	if subErr == nil {
		defer sub.Unsubscribe()
	}

	head, err := backend.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get block number: %w", err)
	}
	if fromBlock <= head {
		if err := b.replay(ctx, backend, main, fromBlock, head, handle); err != nil {
			return err
		}
	}
	next := max(fromBlock, head+1)

	if subErr != nil {
		b.log.Debug("log subscription unavailable, polling", "error", subErr, "interval", PollInterval)
		return b.poll(ctx, backend, main, next, handle)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			if err == nil {
				return nil
			}
			return fmt.Errorf("log subscription failed: %w", err)
		case l := <-logs:
			if l.BlockNumber < next || l.Removed {
				continue
			}
			if err := b.dispatch(&l, handle); err != nil {
				return err
			}
		}
	}
}

func (b *Binding) replay(ctx context.Context, backend blockchain.Backend, main common.Address, from, to uint64, handle func(*models.ContractEvent) error) error {
	logs, err := backend.FilterLogs(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{main},
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
	})
	if err != nil {
		return fmt.Errorf("failed to filter logs %d..%d: %w", from, to, err)
	}
	for i := range logs {
		if err := b.dispatch(&logs[i], handle); err != nil {
			return err
		}
	}
	return nil
}

func (b *Binding) poll(ctx context.Context, backend blockchain.Backend, main common.Address, next uint64, handle func(*models.ContractEvent) error) error {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		head, err := backend.BlockNumber(ctx)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to get block number: %w", err)
		}
		if head < next {
			continue
		}
		if err := b.replay(ctx, backend, main, next, head, handle); err != nil {
			return err
		}
		next = head + 1
	}
}

func (b *Binding) dispatch(l *types.Log, handle func(*models.ContractEvent) error) error {
	ev, err := b.decodeLog(l)
	if err != nil {
		b.log.Debug("skipping undecodable log", "tx", l.TxHash, "error", err)
		return nil
	}
	return handle(ev)
}
