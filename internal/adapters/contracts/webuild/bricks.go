package webuild

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// AddBrick submits addBrick through main with brick.Value attached and returns the new id
func (b *Binding) AddBrick(ctx context.Context, main common.Address, from *models.Account, brick *models.NewBrick) (uint64, *models.TransactionResult, error) {
	tags, err := TagsToBytes32(brick.Tags)
	if err != nil {
		return 0, nil, err
	}
	res, err := b.transact(ctx, main, b.mainABI, from, brick.Value, "addBrick",
		brick.Title, brick.URL, new(big.Int).SetUint64(brick.Timestamp), brick.Description, tags)
	if err != nil {
		return 0, res, err
	}

	added := res.FindEvent(models.EventBrickAdded)
	if added == nil {
		return 0, res, fmt.Errorf("addBrick receipt %s has no %s event", res.Hash.Hex(), models.EventBrickAdded)
	}
	return added.BrickID, res, nil
}

// StartWork joins a brick as a builder
func (b *Binding) StartWork(ctx context.Context, main common.Address, from *models.Account, id uint64) (*models.TransactionResult, error) {
	return b.transact(ctx, main, b.mainABI, from, nil, "startWork", new(big.Int).SetUint64(id))
}

// AcceptWork pays the brick value to builder and completes the brick
func (b *Binding) AcceptWork(ctx context.Context, main common.Address, from *models.Account, id uint64, builder common.Address) (*models.TransactionResult, error) {
	return b.transact(ctx, main, b.mainABI, from, nil, "acceptWork", new(big.Int).SetUint64(id), builder)
}

// CancelBrick refunds the brick value to its owner
func (b *Binding) CancelBrick(ctx context.Context, main common.Address, from *models.Account, id uint64) (*models.TransactionResult, error) {
	return b.transact(ctx, main, b.mainABI, from, nil, "cancel", new(big.Int).SetUint64(id))
}

// BrickIDs runs getBrickIds with the query filters
func (b *Binding) BrickIDs(ctx context.Context, main common.Address, q domain.BrickQuery) ([]uint64, error) {
	tags, err := TagsToBytes32(q.Tags)
	if err != nil {
		return nil, err
	}
	order := q.Order
	if order == 0 {
		order = domain.OrderOldestFirst
	}
	out, err := b.call(ctx, main, b.mainABI, "getBrickIds",
		new(big.Int).SetUint64(q.Offset),
		new(big.Int).SetUint64(q.Limit),
		tags,
		int8(order),
		new(big.Int).SetUint64(q.FromTime),
		new(big.Int).SetUint64(q.ToTime),
	)
	if err != nil {
		return nil, err
	}
	return idsFromBig(*abiConvert[[]*big.Int](out[0])), nil
}

// BrickIDsByOwner runs getBrickIdsByOwner
func (b *Binding) BrickIDsByOwner(ctx context.Context, main common.Address, owner common.Address) ([]uint64, error) {
	out, err := b.call(ctx, main, b.mainABI, "getBrickIdsByOwner", owner)
	if err != nil {
		return nil, err
	}
	return idsFromBig(*abiConvert[[]*big.Int](out[0])), nil
}

// BrickIDsByBuilder runs getBrickIdsByBuilder
func (b *Binding) BrickIDsByBuilder(ctx context.Context, main common.Address, builder common.Address) ([]uint64, error) {
	out, err := b.call(ctx, main, b.mainABI, "getBrickIdsByBuilder", builder)
	if err != nil {
		return nil, err
	}
	return idsFromBig(*abiConvert[[]*big.Int](out[0])), nil
}

// Brick runs getBrick and decodes the record
func (b *Binding) Brick(ctx context.Context, main common.Address, id uint64) (*models.Brick, error) {
	out, err := b.call(ctx, main, b.mainABI, "getBrick", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	return decodeBrick(id, out)
}

// BrickBuilders returns the builders who started work on a brick
func (b *Binding) BrickBuilders(ctx context.Context, main common.Address, id uint64) ([]common.Address, error) {
	out, err := b.call(ctx, main, b.mainABI, "getBrickBuilders", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	return *abiConvert[[]common.Address](out[0]), nil
}

// BrickCount returns the number of bricks ever added
func (b *Binding) BrickCount(ctx context.Context, main common.Address) (uint64, error) {
	out, err := b.call(ctx, main, b.mainABI, "getBrickCount")
	if err != nil {
		return 0, err
	}
	return abiConvert[big.Int](out[0]).Uint64(), nil
}
