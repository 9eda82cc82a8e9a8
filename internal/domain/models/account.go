package models

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Account is a named sender or watch-only address
type Account struct {
	Name       string            `json:"name"`
	Address    common.Address    `json:"address"`
	PrivateKey *ecdsa.PrivateKey `json:"-"`
	Balance    *big.Int          `json:"balance,omitempty"`
}

// CanSign reports whether the account holds a private key
func (a *Account) CanSign() bool {
	return a.PrivateKey != nil
}
