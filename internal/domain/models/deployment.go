package models

import (
	"fmt"
	"time"
)

// DeploymentType represents the role of a deployed contract
type DeploymentType string

const (
	MainDeployment           DeploymentType = "MAIN"
	ImplementationDeployment DeploymentType = "IMPLEMENTATION"
	UnknownDeployment        DeploymentType = "UNKNOWN"
)

// Deployment represents a contract deployment record
type Deployment struct {
	// Core identification
	ID           string         `json:"id"` // e.g., "31337/WeBuildWorld:v1"
	ChainID      uint64         `json:"chainId"`
	ContractName string         `json:"contractName"`
	Label        string         `json:"label"`
	Address      string         `json:"address"`
	Type         DeploymentType `json:"type"`

	// Creation transaction
	TransactionHash string `json:"transactionHash"`
	BlockNumber     uint64 `json:"blockNumber"`
	Deployer        string `json:"deployer"`

	// Provider information (main contracts only)
	ProviderInfo *ProviderInfo `json:"providerInfo,omitempty"`

	// Metadata
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProviderInfo tracks the implementation a main contract forwards to
type ProviderInfo struct {
	Implementation string            `json:"implementation"`
	History        []ProviderUpgrade `json:"history"`
}

// ProviderUpgrade represents an upgradeProvider call
type ProviderUpgrade struct {
	Implementation  string    `json:"implementation"`
	TransactionHash string    `json:"transactionHash"`
	UpgradedAt      time.Time `json:"upgradedAt"`
}

// DeploymentID builds the registry id for a contract on a chain
func DeploymentID(chainID uint64, contractName, label string) string {
	if label != "" {
		return fmt.Sprintf("%d/%s:%s", chainID, contractName, label)
	}
	return fmt.Sprintf("%d/%s", chainID, contractName)
}

// GetShortID returns the short identifier (contractName:label or just contractName)
func (d *Deployment) GetShortID() string {
	if d.Label != "" {
		return fmt.Sprintf("%s:%s", d.ContractName, d.Label)
	}
	return d.ContractName
}

// CurrentProvider returns the linked implementation address, or "" when unlinked
func (d *Deployment) CurrentProvider() string {
	if d.ProviderInfo == nil {
		return ""
	}
	return d.ProviderInfo.Implementation
}

// RecordUpgrade sets the provider and appends to the upgrade history
func (d *Deployment) RecordUpgrade(implementation, txHash string, at time.Time) {
	if d.ProviderInfo == nil {
		d.ProviderInfo = &ProviderInfo{}
	}
	d.ProviderInfo.Implementation = implementation
	d.ProviderInfo.History = append(d.ProviderInfo.History, ProviderUpgrade{
		Implementation:  implementation,
		TransactionHash: txHash,
		UpgradedAt:      at,
	})
	d.UpdatedAt = at
}
