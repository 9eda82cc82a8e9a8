package domain

import (
	"github.com/webuildworld/webuild/internal/domain/models"
)

// DeploymentFilter defines filtering options for deployments
type DeploymentFilter struct {
	ChainID      uint64
	ContractName string
	Label        string
	Type         models.DeploymentType
}

// SortOrder is the order argument of getBrickIds.
type SortOrder int8

const (
	OrderNewestFirst SortOrder = -1
	OrderOldestFirst SortOrder = 1
)

const (
	DefaultBrickLimit = 10
	MaxBrickLimit     = 100
)

// BrickQuery mirrors the arguments of getBrickIds.
type BrickQuery struct {
	Offset   uint64
	Limit    uint64
	Tags     []string
	Order    SortOrder
	FromTime uint64
	ToTime   uint64
}

// EffectiveLimit returns the limit the contract applies for q.
func (q BrickQuery) EffectiveLimit() uint64 {
	switch {
	case q.Limit == 0:
		return DefaultBrickLimit
	case q.Limit > MaxBrickLimit:
		return MaxBrickLimit
	default:
		return q.Limit
	}
}

// TransactionFilter defines filtering options for recorded transactions
type TransactionFilter struct {
	ChainID uint64
	Method  string
	From    string
}
