package devnet

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/webuildworld/webuild/internal/devnet/kv"
	"github.com/webuildworld/webuild/internal/devnet/vm"
)

// Chain key layout
const (
	balancePrefix byte = 0x00 // balancePrefix|addr -> big-endian wei
	noncePrefix   byte = 0x01 // noncePrefix|addr -> uint64
	codePrefix    byte = 0x02 // codePrefix|addr -> native init code
	storagePrefix byte = 0x03 // storagePrefix|addr|key -> contract storage
	txPrefix      byte = 0x04 // txPrefix|hash -> binary transaction
	receiptPrefix byte = 0x05 // receiptPrefix|hash -> receipt JSON
	headerPrefix  byte = 0x06 // headerPrefix|number -> header RLP
	blockTxPrefix byte = 0x07 // blockTxPrefix|number -> tx hash
	headKey       byte = 0x08 // head block number
)

func accountKey(prefix byte, addr common.Address) []byte {
	return append([]byte{prefix}, addr.Bytes()...)
}

func hashKey(prefix byte, h common.Hash) []byte {
	return append([]byte{prefix}, h.Bytes()...)
}

func numberKey(prefix byte, n uint64) []byte {
	return binary.BigEndian.AppendUint64([]byte{prefix}, n)
}

func getBalance(r kv.Reader, addr common.Address) (*big.Int, error) {
	v, err := r.Get(accountKey(balancePrefix, addr))
	if errors.Is(err, kv.ErrNotFound) {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(v), nil
}

func setBalance(w kv.Writer, addr common.Address, v *big.Int) error {
	return w.Set(accountKey(balancePrefix, addr), v.Bytes())
}

func getNonce(r kv.Reader, addr common.Address) (uint64, error) {
	v, err := r.Get(accountKey(noncePrefix, addr))
	if errors.Is(err, kv.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

func setNonce(w kv.Writer, addr common.Address, n uint64) error {
	return w.Set(accountKey(noncePrefix, addr), binary.BigEndian.AppendUint64(nil, n))
}

func getCode(r kv.Reader, addr common.Address) ([]byte, error) {
	v, err := r.Get(accountKey(codePrefix, addr))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func getHead(r kv.Reader) (uint64, bool, error) {
	v, err := r.Get([]byte{headKey})
	if errors.Is(err, kv.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return binary.BigEndian.Uint64(v), true, nil
}

func getHeader(r kv.Reader, number uint64) (*types.Header, error) {
	v, err := r.Get(numberKey(headerPrefix, number))
	if err != nil {
		return nil, err
	}
	header := new(types.Header)
	if err := rlp.DecodeBytes(v, header); err != nil {
		return nil, err
	}
	return header, nil
}

func getReceipt(r kv.Reader, hash common.Hash) (*types.Receipt, error) {
	v, err := r.Get(hashKey(receiptPrefix, hash))
	if err != nil {
		return nil, err
	}
	receipt := new(types.Receipt)
	if err := json.Unmarshal(v, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// writeBlock stores a mined block with its single transaction and advances the head
func writeBlock(w kv.Writer, header *types.Header, tx *types.Transaction, receipt *types.Receipt) error {
	number := header.Number.Uint64()
	enc, err := rlp.EncodeToBytes(header)
	if err != nil {
		return err
	}
	if err := w.Set(numberKey(headerPrefix, number), enc); err != nil {
		return err
	}
	if tx != nil {
		raw, err := tx.MarshalBinary()
		if err != nil {
			return err
		}
		if err := w.Set(hashKey(txPrefix, tx.Hash()), raw); err != nil {
			return err
		}
		if err := w.Set(numberKey(blockTxPrefix, number), tx.Hash().Bytes()); err != nil {
			return err
		}
	}
	if receipt != nil {
		raw, err := json.Marshal(receipt)
		if err != nil {
			return err
		}
		if err := w.Set(hashKey(receiptPrefix, receipt.TxHash), raw); err != nil {
			return err
		}
	}
	return w.Set([]byte{headKey}, binary.BigEndian.AppendUint64(nil, number))
}

// contractStorage scopes a contract's key space inside the chain state
type contractStorage struct {
	o      *kv.Overlay
	prefix []byte
}

var _ vm.Storage = contractStorage{}

func newContractStorage(o *kv.Overlay, addr common.Address) contractStorage {
	return contractStorage{o: o, prefix: accountKey(storagePrefix, addr)}
}

func (s contractStorage) key(k []byte) []byte {
	return append(append([]byte{}, s.prefix...), k...)
}

func (s contractStorage) Get(key []byte) ([]byte, error) {
	return s.o.Get(s.key(key))
}

func (s contractStorage) Set(key, value []byte) error {
	return s.o.Set(s.key(key), value)
}

func (s contractStorage) Delete(key []byte) error {
	return s.o.Delete(s.key(key))
}

func (s contractStorage) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	return s.o.Iterate(s.key(prefix), func(key, value []byte) error {
		return fn(key[len(s.prefix):], value)
	})
}
