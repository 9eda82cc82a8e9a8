// Package vmtest provides an in-memory Host for unit testing native contracts.
package vmtest

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/devnet/kv"
	"github.com/webuildworld/webuild/internal/devnet/vm"
)

// Log is an emitted event
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Host runs contracts against maps. Calls are not rolled back on revert.
type Host struct {
	Time      uint64
	Block     uint64
	Logs      []Log
	balances  map[common.Address]*big.Int
	storage   map[common.Address]*kv.MemoryStore
	contracts map[common.Address]vm.Contract
}

var _ vm.Host = (*Host)(nil)

func NewHost() *Host {
	return &Host{
		Time:      1_700_000_000,
		Block:     1,
		balances:  make(map[common.Address]*big.Int),
		storage:   make(map[common.Address]*kv.MemoryStore),
		contracts: make(map[common.Address]vm.Contract),
	}
}

// Fund sets the balance of addr
func (h *Host) Fund(addr common.Address, amount *big.Int) {
	h.balances[addr] = new(big.Int).Set(amount)
}

// Deploy installs c at addr and runs its constructor with caller as msg.sender
func (h *Host) Deploy(c vm.Contract, addr, caller common.Address) error {
	h.contracts[addr] = c
	if ctor, ok := c.(vm.Constructor); ok {
		return ctor.Construct(h.env(caller, addr, addr, nil), nil)
	}
	return nil
}

// Call sends a message call from caller to addr carrying value
func (h *Host) Call(caller, addr common.Address, value *big.Int, input []byte) ([]byte, error) {
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() > 0 {
		if err := h.Transfer(caller, addr, value); err != nil {
			return nil, err
		}
	}
	c, ok := h.contracts[addr]
	if !ok {
		return nil, fmt.Errorf("no contract at %s", addr)
	}
	h.Block++
	h.Time++
	return c.Run(h.env(caller, addr, addr, value), input)
}

func (h *Host) env(caller, self, code common.Address, value *big.Int) *vm.Env {
	if value == nil {
		value = new(big.Int)
	}
	return &vm.Env{
		Host:        h,
		Caller:      caller,
		Value:       value,
		Self:        self,
		Code:        code,
		BlockNumber: h.Block,
		Time:        h.Time,
	}
}

func (h *Host) Storage(addr common.Address) vm.Storage {
	s, ok := h.storage[addr]
	if !ok {
		s = kv.NewMemoryStore()
		h.storage[addr] = s
	}
	return s
}

func (h *Host) Balance(addr common.Address) (*big.Int, error) {
	if b, ok := h.balances[addr]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

func (h *Host) Transfer(from, to common.Address, amount *big.Int) error {
	fromBal, _ := h.Balance(from)
	if fromBal.Cmp(amount) < 0 {
		return vm.ErrInsufficientBalance
	}
	toBal, _ := h.Balance(to)
	h.balances[from] = fromBal.Sub(fromBal, amount)
	h.balances[to] = toBal.Add(toBal, amount)
	return nil
}

func (h *Host) ContractName(addr common.Address) (string, error) {
	if c, ok := h.contracts[addr]; ok {
		return c.Name(), nil
	}
	return "", nil
}

func (h *Host) DelegateCall(env *vm.Env, codeAddr common.Address, input []byte) ([]byte, error) {
	c, ok := h.contracts[codeAddr]
	if !ok {
		return nil, vm.Revert("delegate call to non-contract")
	}
	frame := *env
	frame.Code = codeAddr
	return c.Run(&frame, input)
}

func (h *Host) EmitLog(addr common.Address, topics []common.Hash, data []byte) {
	h.Logs = append(h.Logs, Log{Address: addr, Topics: topics, Data: data})
}

// StorageKeys lists the keys held by addr, for assertions
func (h *Host) StorageKeys(addr common.Address) []string {
	var keys []string
	_ = h.Storage(addr).Iterate(nil, func(key, _ []byte) error {
		keys = append(keys, common.Bytes2Hex(key))
		return nil
	})
	sort.Strings(keys)
	return keys
}
