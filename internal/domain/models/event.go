package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Event names emitted by the registry contracts
const (
	EventBrickAdded       = "BrickAdded"
	EventWorkStarted      = "WorkStarted"
	EventWorkAccepted     = "WorkAccepted"
	EventBrickCancelled   = "BrickCancelled"
	EventProviderUpgraded = "ProviderUpgraded"
	EventMainUpdated      = "MainUpdated"
)

// ContractEvent is a decoded registry log
type ContractEvent struct {
	Name        string         `json:"name"`
	Contract    common.Address `json:"contract"`
	BrickID     uint64         `json:"brickId,omitempty"`
	Account     common.Address `json:"account"` // owner, builder, new provider or main
	Previous    common.Address `json:"previous,omitempty"`
	Value       *big.Int       `json:"value,omitempty"`
	BlockNumber uint64         `json:"blockNumber"`
	TxHash      common.Hash    `json:"txHash"`
	LogIndex    uint           `json:"logIndex"`
}

// IsBrickEvent reports whether the event concerns a single brick
func (e *ContractEvent) IsBrickEvent() bool {
	switch e.Name {
	case EventBrickAdded, EventWorkStarted, EventWorkAccepted, EventBrickCancelled:
		return true
	}
	return false
}
