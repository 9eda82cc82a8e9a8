package webuildworld

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/webuildworld/webuild/internal/devnet/kv"
	"github.com/webuildworld/webuild/internal/devnet/vm"
)

// Key layout of a contract's storage. Each record kind has a one byte prefix.
const (
	ownerKey           byte = 0x00 // owner address
	providerKey        byte = 0x01 // main: current implementation
	mainKey            byte = 0x02 // implementation: registered main
	brickCountKey      byte = 0x03 // uint64 brick counter
	brickPrefix        byte = 0x04 // brickPrefix|id -> brickRecord
	ownerIndexPrefix   byte = 0x05 // ownerIndexPrefix|owner -> []uint64
	builderIndexPrefix byte = 0x06 // builderIndexPrefix|builder -> []uint64
)

var errBrickNotFound = vm.Revert("brick not found")

type brickRecord struct {
	Title         string
	URL           string
	Owner         common.Address
	Value         *big.Int
	Timestamp     uint64
	DateCreated   uint64
	DateCompleted uint64
	Status        uint8
	Tags          [][32]byte
	Description   string
	Builders      []common.Address
	Winner        common.Address
}

func (b *brickRecord) hasBuilder(addr common.Address) bool {
	for _, a := range b.Builders {
		if a == addr {
			return true
		}
	}
	return false
}

// state reads and writes the registry records of one account
type state struct {
	s vm.Storage
}

func brickKey(id uint64) []byte {
	k := make([]byte, 9)
	k[0] = brickPrefix
	binary.BigEndian.PutUint64(k[1:], id)
	return k
}

func indexKey(prefix byte, addr common.Address) []byte {
	return append([]byte{prefix}, addr.Bytes()...)
}

func (st state) address(key byte) (common.Address, error) {
	v, err := st.s.Get([]byte{key})
	if errors.Is(err, kv.ErrNotFound) {
		return common.Address{}, nil
	}
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(v), nil
}

func (st state) setAddress(key byte, addr common.Address) error {
	return st.s.Set([]byte{key}, addr.Bytes())
}

func (st state) brickCount() (uint64, error) {
	v, err := st.s.Get([]byte{brickCountKey})
	if errors.Is(err, kv.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

func (st state) setBrickCount(n uint64) error {
	return st.s.Set([]byte{brickCountKey}, binary.BigEndian.AppendUint64(nil, n))
}

func (st state) brick(id uint64) (*brickRecord, error) {
	v, err := st.s.Get(brickKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, errBrickNotFound
	}
	if err != nil {
		return nil, err
	}
	rec := new(brickRecord)
	if err := rlp.DecodeBytes(v, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (st state) putBrick(id uint64, rec *brickRecord) error {
	enc, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return err
	}
	return st.s.Set(brickKey(id), enc)
}

func (st state) index(prefix byte, addr common.Address) ([]uint64, error) {
	v, err := st.s.Get(indexKey(prefix, addr))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []uint64
	if err := rlp.DecodeBytes(v, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (st state) appendIndex(prefix byte, addr common.Address, id uint64) error {
	ids, err := st.index(prefix, addr)
	if err != nil {
		return err
	}
	enc, err := rlp.EncodeToBytes(append(ids, id))
	if err != nil {
		return err
	}
	return st.s.Set(indexKey(prefix, addr), enc)
}
