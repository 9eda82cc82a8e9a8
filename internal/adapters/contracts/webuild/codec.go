package webuild

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/samber/lo"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
)

func abiConvert[T any](v interface{}) *T {
	return abi.ConvertType(v, new(T)).(*T)
}

// TagsToBytes32 encodes tags as right-padded bytes32 values
func TagsToBytes32(tags []string) ([][32]byte, error) {
	tags = domain.NormalizeTags(tags)
	if err := domain.ValidateTags(tags); err != nil {
		return nil, err
	}
	out := make([][32]byte, len(tags))
	for i, tag := range tags {
		copy(out[i][:], tag)
	}
	return out, nil
}

// Bytes32ToTag decodes a right-padded bytes32 tag
func Bytes32ToTag(b [32]byte) string {
	return string(bytes.TrimRight(b[:], "\x00"))
}

// idsFromBig converts uint256 ids, dropping the zero id
func idsFromBig(ids []*big.Int) []uint64 {
	return lo.FilterMap(ids, func(id *big.Int, _ int) (uint64, bool) {
		return id.Uint64(), id.Sign() > 0
	})
}

// decodeBrick maps the getBrick outputs onto a Brick
func decodeBrick(id uint64, out []interface{}) (*models.Brick, error) {
	if len(out) != 12 {
		return nil, fmt.Errorf("getBrick returned %d values, expected 12", len(out))
	}
	rawTags := *abiConvert[[][32]byte](out[8])
	return &models.Brick{
		ID:            id,
		Title:         *abiConvert[string](out[0]),
		URL:           *abiConvert[string](out[1]),
		Owner:         *abiConvert[common.Address](out[2]),
		Value:         abiConvert[big.Int](out[3]),
		Timestamp:     abiConvert[big.Int](out[4]).Uint64(),
		DateCreated:   abiConvert[big.Int](out[5]).Uint64(),
		DateCompleted: abiConvert[big.Int](out[6]).Uint64(),
		Status:        models.BrickStatus(*abiConvert[uint8](out[7])),
		Tags:          lo.Map(rawTags, func(t [32]byte, _ int) string { return Bytes32ToTag(t) }),
		Description:   *abiConvert[string](out[9]),
		NumBuilders:   *abiConvert[uint32](out[10]),
		Winner:        *abiConvert[common.Address](out[11]),
	}, nil
}

// decodeLogs decodes the registry events of a receipt, skipping foreign logs
func (b *Binding) decodeLogs(logs []*types.Log) []*models.ContractEvent {
	events := make([]*models.ContractEvent, 0, len(logs))
	for _, l := range logs {
		ev, err := b.decodeLog(l)
		if err != nil {
			b.log.Debug("skipping undecodable log", "address", l.Address, "error", err)
			continue
		}
		events = append(events, ev)
	}
	return events
}

// decodeLog decodes a single registry log using whichever contract ABI declares its topic
func (b *Binding) decodeLog(l *types.Log) (*models.ContractEvent, error) {
	if len(l.Topics) == 0 {
		return nil, fmt.Errorf("anonymous log")
	}
	parsed := b.mainABI
	event, err := parsed.EventByID(l.Topics[0])
	if err != nil {
		parsed = b.implABI
		if event, err = parsed.EventByID(l.Topics[0]); err != nil {
			return nil, err
		}
	}

	fields := make(map[string]interface{})
	if len(l.Data) > 0 {
		if err := parsed.UnpackIntoMap(fields, event.Name, l.Data); err != nil {
			return nil, fmt.Errorf("failed to unpack %s data: %w", event.Name, err)
		}
	}
	var indexed abi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if err := abi.ParseTopicsIntoMap(fields, indexed, l.Topics[1:]); err != nil {
		return nil, fmt.Errorf("failed to parse %s topics: %w", event.Name, err)
	}

	ev := &models.ContractEvent{
		Name:        event.Name,
		Contract:    l.Address,
		BlockNumber: l.BlockNumber,
		TxHash:      l.TxHash,
		LogIndex:    l.Index,
	}
	if id, ok := fields["id"].(*big.Int); ok {
		ev.BrickID = id.Uint64()
	}
	if value, ok := fields["value"].(*big.Int); ok {
		ev.Value = value
	}
	for _, key := range []string{"owner", "builder", "current", "main"} {
		if addr, ok := fields[key].(common.Address); ok {
			ev.Account = addr
			break
		}
	}
	if prev, ok := fields["previous"].(common.Address); ok {
		ev.Previous = prev
	}
	return ev, nil
}
