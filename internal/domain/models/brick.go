package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// BrickStatus is the life cycle state of a brick
type BrickStatus uint8

const (
	BrickOpen BrickStatus = iota
	BrickStarted
	BrickCompleted
	BrickCancelled
)

func (s BrickStatus) String() string {
	switch s {
	case BrickOpen:
		return "open"
	case BrickStarted:
		return "started"
	case BrickCompleted:
		return "completed"
	case BrickCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Brick is a decoded getBrick record
type Brick struct {
	ID            uint64           `json:"id"`
	Title         string           `json:"title"`
	URL           string           `json:"url"`
	Owner         common.Address   `json:"owner"`
	Value         *big.Int         `json:"value"`
	Timestamp     uint64           `json:"timestamp"`
	DateCreated   uint64           `json:"dateCreated"`
	DateCompleted uint64           `json:"dateCompleted,omitempty"`
	Status        BrickStatus      `json:"status"`
	Tags          []string         `json:"tags"`
	Description   string           `json:"description"`
	NumBuilders   uint32           `json:"numBuilders"`
	Winner        common.Address   `json:"winner"`
	Builders      []common.Address `json:"builders,omitempty"`
}

// CreatedTime returns the block time the brick was added
func (b *Brick) CreatedTime() time.Time {
	return time.Unix(int64(b.DateCreated), 0)
}

// HasWinner reports whether work on the brick was accepted
func (b *Brick) HasWinner() bool {
	return b.Winner != (common.Address{})
}

// NewBrick is the input of addBrick
type NewBrick struct {
	Title       string   `json:"title" yaml:"title"`
	URL         string   `json:"url" yaml:"url"`
	Timestamp   uint64   `json:"timestamp" yaml:"timestamp"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
	Value       *big.Int `json:"value" yaml:"-"`
}

// BrickRole selects the owner or builder index
type BrickRole string

const (
	RoleOwner   BrickRole = "owner"
	RoleBuilder BrickRole = "builder"
)
