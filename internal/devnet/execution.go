package devnet

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/webuildworld/webuild/internal/devnet/kv"
	"github.com/webuildworld/webuild/internal/devnet/vm"
)

const maxCallDepth = 16

// execution runs one message against a state overlay and collects its logs
type execution struct {
	contracts   map[string]vm.Contract
	state       *kv.Overlay
	blockNumber uint64
	time        uint64
	logs        []*types.Log
	depth       int
}

var _ vm.Host = (*execution)(nil)

func (e *execution) Storage(addr common.Address) vm.Storage {
	return newContractStorage(e.state, addr)
}

func (e *execution) Balance(addr common.Address) (*big.Int, error) {
	return getBalance(e.state, addr)
}

func (e *execution) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	fromBal, err := getBalance(e.state, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return vm.ErrInsufficientBalance
	}
	if err := setBalance(e.state, from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := getBalance(e.state, to)
	if err != nil {
		return err
	}
	return setBalance(e.state, to, toBal.Add(toBal, amount))
}

func (e *execution) ContractName(addr common.Address) (string, error) {
	code, err := getCode(e.state, addr)
	if err != nil || len(code) == 0 {
		return "", err
	}
	name, _, _ := vm.ParseInitCode(code)
	return name, nil
}

func (e *execution) contractAt(addr common.Address) (vm.Contract, error) {
	name, err := e.ContractName(addr)
	if err != nil || name == "" {
		return nil, err
	}
	c, ok := e.contracts[name]
	if !ok {
		return nil, vm.Revert("no native implementation for %s", name)
	}
	return c, nil
}

func (e *execution) DelegateCall(env *vm.Env, codeAddr common.Address, input []byte) ([]byte, error) {
	c, err := e.contractAt(codeAddr)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, vm.Revert("delegate call to non-contract %s", codeAddr)
	}
	if e.depth >= maxCallDepth {
		return nil, vm.Revert("max call depth exceeded")
	}
	e.depth++
	defer func() { e.depth-- }()

	frame := *env
	frame.Code = codeAddr
	return c.Run(&frame, input)
}

func (e *execution) EmitLog(addr common.Address, topics []common.Hash, data []byte) {
	e.logs = append(e.logs, &types.Log{
		Address: addr,
		Topics:  topics,
		Data:    data,
	})
}

func (e *execution) env(caller, self common.Address, value *big.Int) *vm.Env {
	return &vm.Env{
		Host:        e,
		Caller:      caller,
		Value:       value,
		Self:        self,
		Code:        self,
		BlockNumber: e.blockNumber,
		Time:        e.time,
	}
}

// call transfers value and runs the code at to, if any
func (e *execution) call(caller, to common.Address, value *big.Int, input []byte) ([]byte, error) {
	if value == nil {
		value = new(big.Int)
	}
	if err := e.Transfer(caller, to, value); err != nil {
		return nil, err
	}
	c, err := e.contractAt(to)
	if err != nil || c == nil {
		return nil, err
	}
	return c.Run(e.env(caller, to, value), input)
}

// create installs the native contract named by initCode at the CREATE address of caller
func (e *execution) create(caller common.Address, nonce uint64, value *big.Int, initCode []byte) (common.Address, error) {
	name, args, ok := vm.ParseInitCode(initCode)
	c, known := e.contracts[name]
	if !ok || !known {
		return common.Address{}, vm.Revert("unsupported init code")
	}
	addr := crypto.CreateAddress(caller, nonce)
	existing, err := getCode(e.state, addr)
	if err != nil {
		return common.Address{}, err
	}
	if len(existing) > 0 {
		return common.Address{}, vm.Revert("contract address collision")
	}
	if err := e.state.Set(accountKey(codePrefix, addr), vm.InitCode(name)); err != nil {
		return common.Address{}, err
	}
	if value == nil {
		value = new(big.Int)
	}
	if err := e.Transfer(caller, addr, value); err != nil {
		return common.Address{}, err
	}
	if ctor, ok := c.(vm.Constructor); ok {
		if err := ctor.Construct(e.env(caller, addr, value), args); err != nil {
			return common.Address{}, err
		}
	}
	return addr, nil
}

// isExecutionFailure reports whether err aborts the message with a failed receipt
// rather than an internal error
func isExecutionFailure(err error) bool {
	if _, ok := vm.IsRevert(err); ok {
		return true
	}
	return errors.Is(err, vm.ErrInsufficientBalance)
}

// revertReason extracts a displayable reason from an execution failure
func revertReason(err error) string {
	if reason, ok := vm.IsRevert(err); ok {
		return reason
	}
	return err.Error()
}
