package webuildworld

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/devnet/vm"
)

// Brick life cycle
const (
	StatusOpen uint8 = iota
	StatusStarted
	StatusCompleted
	StatusCancelled
)

const (
	maxTags      = 10
	defaultLimit = 10
	maxLimit     = 100

	newestFirst int8 = -1
)

// bricks executes brick methods against the registry state of env.Self
type bricks struct {
	env    *vm.Env
	st     state
	parsed abi.ABI
}

func (b *bricks) run(method *abi.Method, args []interface{}) ([]byte, error) {
	switch method.Name {
	case "addBrick":
		id, err := b.addBrick(args[0].(string), args[1].(string), args[2].(*big.Int), args[3].(string), args[4].([][32]byte))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(new(big.Int).SetUint64(id))
	case "startWork":
		return nil, b.startWork(toUint64(args[0].(*big.Int)))
	case "acceptWork":
		return nil, b.acceptWork(toUint64(args[0].(*big.Int)), args[1].(common.Address))
	case "cancel":
		return nil, b.cancel(toUint64(args[0].(*big.Int)))
	case "getBrickIds":
		ids, err := b.brickIDs(
			toUint64(args[0].(*big.Int)),
			toUint64(args[1].(*big.Int)),
			args[2].([][32]byte),
			args[3].(int8),
			toUint64(args[4].(*big.Int)),
			toUint64(args[5].(*big.Int)),
		)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(bigIDs(ids))
	case "getBrickIdsByOwner":
		ids, err := b.st.index(ownerIndexPrefix, args[0].(common.Address))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(bigIDs(ids))
	case "getBrickIdsByBuilder":
		ids, err := b.st.index(builderIndexPrefix, args[0].(common.Address))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(bigIDs(ids))
	case "getBrick":
		rec, err := b.st.brick(toUint64(args[0].(*big.Int)))
		if err != nil {
			return nil, err
		}
		tags := rec.Tags
		if tags == nil {
			tags = [][32]byte{}
		}
		return method.Outputs.Pack(
			rec.Title,
			rec.URL,
			rec.Owner,
			rec.Value,
			new(big.Int).SetUint64(rec.Timestamp),
			new(big.Int).SetUint64(rec.DateCreated),
			new(big.Int).SetUint64(rec.DateCompleted),
			rec.Status,
			tags,
			rec.Description,
			uint32(len(rec.Builders)),
			rec.Winner,
		)
	case "getBrickBuilders":
		rec, err := b.st.brick(toUint64(args[0].(*big.Int)))
		if err != nil {
			return nil, err
		}
		builders := rec.Builders
		if builders == nil {
			builders = []common.Address{}
		}
		return method.Outputs.Pack(builders)
	case "getBrickCount":
		n, err := b.st.brickCount()
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(new(big.Int).SetUint64(n))
	}
	return nil, vm.Revert("unknown method %s", method.Name)
}

func (b *bricks) addBrick(title, url string, timestamp *big.Int, description string, rawTags [][32]byte) (uint64, error) {
	if b.env.Value == nil || b.env.Value.Sign() <= 0 {
		return 0, vm.Revert("value must be positive")
	}
	if strings.TrimSpace(title) == "" {
		return 0, vm.Revert("title is required")
	}
	tags := uniqueTags(rawTags)
	if len(tags) > maxTags {
		return 0, vm.Revert("too many tags")
	}

	count, err := b.st.brickCount()
	if err != nil {
		return 0, err
	}
	id := count + 1
	rec := &brickRecord{
		Title:       title,
		URL:         url,
		Owner:       b.env.Caller,
		Value:       new(big.Int).Set(b.env.Value),
		Timestamp:   toUint64(timestamp),
		DateCreated: b.env.Time,
		Status:      StatusOpen,
		Tags:        tags,
		Description: description,
	}
	if err := b.st.putBrick(id, rec); err != nil {
		return 0, err
	}
	if err := b.st.setBrickCount(id); err != nil {
		return 0, err
	}
	if err := b.st.appendIndex(ownerIndexPrefix, rec.Owner, id); err != nil {
		return 0, err
	}
	return id, emit(b.env, b.parsed, "BrickAdded", []common.Hash{idTopic(id), addressTopic(rec.Owner)}, rec.Value)
}

func (b *bricks) startWork(id uint64) error {
	rec, err := b.st.brick(id)
	if err != nil {
		return err
	}
	switch {
	case rec.Status != StatusOpen && rec.Status != StatusStarted:
		return vm.Revert("brick is closed")
	case rec.Owner == b.env.Caller:
		return vm.Revert("owner cannot build own brick")
	case rec.hasBuilder(b.env.Caller):
		return vm.Revert("already building")
	}

	rec.Builders = append(rec.Builders, b.env.Caller)
	rec.Status = StatusStarted
	if err := b.st.putBrick(id, rec); err != nil {
		return err
	}
	if err := b.st.appendIndex(builderIndexPrefix, b.env.Caller, id); err != nil {
		return err
	}
	return emit(b.env, b.parsed, "WorkStarted", []common.Hash{idTopic(id), addressTopic(b.env.Caller)})
}

func (b *bricks) acceptWork(id uint64, builder common.Address) error {
	rec, err := b.st.brick(id)
	if err != nil {
		return err
	}
	switch {
	case rec.Owner != b.env.Caller:
		return vm.Revert("caller is not the brick owner")
	case rec.Status != StatusStarted:
		return vm.Revert("brick is not started")
	case !rec.hasBuilder(builder):
		return vm.Revert("builder has not started work")
	}

	if err := b.env.Host.Transfer(b.env.Self, builder, rec.Value); err != nil {
		return err
	}
	rec.Status = StatusCompleted
	rec.Winner = builder
	rec.DateCompleted = b.env.Time
	if err := b.st.putBrick(id, rec); err != nil {
		return err
	}
	return emit(b.env, b.parsed, "WorkAccepted", []common.Hash{idTopic(id), addressTopic(builder)}, rec.Value)
}

func (b *bricks) cancel(id uint64) error {
	rec, err := b.st.brick(id)
	if err != nil {
		return err
	}
	switch {
	case rec.Owner != b.env.Caller:
		return vm.Revert("caller is not the brick owner")
	case rec.Status != StatusOpen && rec.Status != StatusStarted:
		return vm.Revert("brick is closed")
	}

	if err := b.env.Host.Transfer(b.env.Self, rec.Owner, rec.Value); err != nil {
		return err
	}
	rec.Status = StatusCancelled
	rec.DateCompleted = b.env.Time
	if err := b.st.putBrick(id, rec); err != nil {
		return err
	}
	return emit(b.env, b.parsed, "BrickCancelled", []common.Hash{idTopic(id)})
}

// brickIDs filters bricks by tag (any match) and inclusive timestamp bounds, then
// orders and paginates. Cancelled bricks are skipped.
func (b *bricks) brickIDs(offset, limit uint64, tags [][32]byte, order int8, fromTime, toTime uint64) ([]uint64, error) {
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	wanted := uniqueTags(tags)

	count, err := b.st.brickCount()
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, limit)
	var skipped uint64
	for i := uint64(0); i < count && uint64(len(ids)) < limit; i++ {
		id := i + 1
		if order == newestFirst {
			id = count - i
		}
		rec, err := b.st.brick(id)
		if err != nil {
			return nil, err
		}
		if rec.Status == StatusCancelled {
			continue
		}
		if fromTime != 0 && rec.Timestamp < fromTime {
			continue
		}
		if toTime != 0 && rec.Timestamp > toTime {
			continue
		}
		if len(wanted) > 0 && !anyTag(rec.Tags, wanted) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func uniqueTags(tags [][32]byte) [][32]byte {
	seen := make(map[[32]byte]struct{}, len(tags))
	out := make([][32]byte, 0, len(tags))
	for _, t := range tags {
		if t == ([32]byte{}) {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func anyTag(have, wanted [][32]byte) bool {
	for _, h := range have {
		for _, w := range wanted {
			if h == w {
				return true
			}
		}
	}
	return false
}
