package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TransactionStatus represents the status of a mined transaction
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// TransactionResult describes a mined transaction sent by webuild
type TransactionResult struct {
	Hash            common.Hash       `json:"hash"`
	ChainID         uint64            `json:"chainId"`
	Method          string            `json:"method"`
	From            common.Address    `json:"from"`
	To              *common.Address   `json:"to,omitempty"`
	ContractAddress *common.Address   `json:"contractAddress,omitempty"`
	Value           *big.Int          `json:"value"`
	Status          TransactionStatus `json:"status"`
	BlockNumber     uint64            `json:"blockNumber"`
	GasUsed         uint64            `json:"gasUsed"`
	Events          []*ContractEvent  `json:"events,omitempty"`
}

// Succeeded reports whether the receipt status was 1
func (r *TransactionResult) Succeeded() bool {
	return r.Status == TransactionStatusSuccess
}

// FindEvent returns the first event with the given name
func (r *TransactionResult) FindEvent(name string) *ContractEvent {
	for _, e := range r.Events {
		if e.Name == name {
			return e
		}
	}
	return nil
}
