// Package vm defines how natively implemented contracts run on the dev chain.
package vm

import (
	"bytes"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// InitCodePrefix marks native init code. 0xfe is the EVM INVALID opcode, so native
// init code can never be mistaken for executable bytecode.
const InitCodePrefix = 0xfe

var ErrInsufficientBalance = errors.New("insufficient balance for transfer")

// Contract is a natively implemented contract
type Contract interface {
	// Name is the contract name carried in its init code
	Name() string
	// Run executes a message call
	Run(env *Env, input []byte) ([]byte, error)
}

// Constructor is implemented by contracts with creation logic
type Constructor interface {
	Construct(env *Env, args []byte) error
}

// Storage is a contract's key space
type Storage interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Iterate(prefix []byte, fn func(key, value []byte) error) error
}

// Host is the chain a contract executes on
type Host interface {
	// Storage returns the key space of addr
	Storage(addr common.Address) Storage
	Balance(addr common.Address) (*big.Int, error)
	Transfer(from, to common.Address, amount *big.Int) error
	// ContractName returns the native contract deployed at addr, "" for plain accounts
	ContractName(addr common.Address) (string, error)
	// DelegateCall runs the code at codeAddr in the context of env (same caller, value and storage)
	DelegateCall(env *Env, codeAddr common.Address, input []byte) ([]byte, error)
	EmitLog(addr common.Address, topics []common.Hash, data []byte)
}

// Env is the execution context of one call frame
type Env struct {
	Host Host
	// Caller is msg.sender
	Caller common.Address
	// Value is msg.value, already credited to Self
	Value *big.Int
	// Self is address(this): the account whose storage and balance are used
	Self common.Address
	// Code is the account whose code is running. It differs from Self under delegate call.
	Code        common.Address
	BlockNumber uint64
	Time        uint64
}

// Delegated reports whether the frame runs another account's code
func (e *Env) Delegated() bool {
	return e.Self != e.Code
}

// SelfStorage is the storage of address(this)
func (e *Env) SelfStorage() Storage {
	return e.Host.Storage(e.Self)
}

// CodeStorage is the storage of the account whose code is running
func (e *Env) CodeStorage() Storage {
	return e.Host.Storage(e.Code)
}

// InitCode returns the native init code for a contract name
func InitCode(name string) []byte {
	return append([]byte{InitCodePrefix}, []byte(name)...)
}

// ParseInitCode extracts the contract name from native init code.
// Constructor arguments follow the name after a zero byte.
func ParseInitCode(code []byte) (name string, args []byte, ok bool) {
	if len(code) < 2 || code[0] != InitCodePrefix {
		return "", nil, false
	}
	body := code[1:]
	if i := bytes.IndexByte(body, 0); i >= 0 {
		return string(body[:i]), body[i+1:], i > 0
	}
	return string(body), nil, true
}
