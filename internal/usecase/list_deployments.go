package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/config"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// ListDeploymentsParams contains parameters for listing deployments
type ListDeploymentsParams struct {
	// Filter parameters (chainID comes from RuntimeConfig)
	ContractName string
	Label        string
	Type         models.DeploymentType
	// Verify checks each deployment still has code on chain
	Verify bool
}

// DeploymentStatus pairs a deployment with its on-chain check
type DeploymentStatus struct {
	Deployment *models.Deployment
	Checked    bool
	Exists     bool
	Reason     string
}

// DeploymentSummary contains summary statistics
type DeploymentSummary struct {
	Total   int
	ByType  map[models.DeploymentType]int
	Missing int
}

// DeploymentListResult contains the listed deployments
type DeploymentListResult struct {
	ChainID     uint64
	Deployments []*DeploymentStatus
	Summary     DeploymentSummary
}

// ListDeployments is the use case for listing deployments
type ListDeployments struct {
	config  *config.RuntimeConfig
	repo    DeploymentRepository
	checker BlockchainChecker
	sink    ProgressSink
}

// NewListDeployments creates a new ListDeployments use case
func NewListDeployments(cfg *config.RuntimeConfig, repo DeploymentRepository, checker BlockchainChecker, sink ProgressSink) *ListDeployments {
	return &ListDeployments{
		config:  cfg,
		repo:    repo,
		checker: checker,
		sink:    sink,
	}
}

// Run executes the list deployments use case
func (uc *ListDeployments) Run(ctx context.Context, params ListDeploymentsParams) (*DeploymentListResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading deployments from registry",
		Spinner: true,
	})

	filter := domain.DeploymentFilter{
		ContractName: params.ContractName,
		Label:        params.Label,
		Type:         params.Type,
		ChainID:      uc.config.Network.ChainID,
	}

	deployments, err := uc.repo.ListDeployments(ctx, filter)
	if err != nil {
		return nil, err
	}
	sortDeployments(deployments)

	statuses := make([]*DeploymentStatus, len(deployments))
	for i, dep := range deployments {
		statuses[i] = &DeploymentStatus{Deployment: dep}
		if !params.Verify {
			continue
		}
		uc.sink.OnProgress(ctx, ProgressEvent{
			Stage:   "verifying",
			Current: i + 1,
			Total:   len(deployments),
			Message: fmt.Sprintf("Checking %s", dep.GetShortID()),
			Spinner: true,
		})
		exists, reason, err := uc.checker.CheckDeploymentExists(ctx, common.HexToAddress(dep.Address))
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", dep.ID, err)
		}
		statuses[i].Checked = true
		statuses[i].Exists = exists
		statuses[i].Reason = reason
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Current: len(deployments),
		Total:   len(deployments),
		Message: "Deployments loaded",
	})

	return &DeploymentListResult{
		ChainID:     uc.config.Network.ChainID,
		Deployments: statuses,
		Summary:     calculateSummary(statuses),
	}, nil
}

// sortDeployments sorts deployments by chain, contract name, and label
func sortDeployments(deployments []*models.Deployment) {
	sort.Slice(deployments, func(i, j int) bool {
		if deployments[i].ChainID != deployments[j].ChainID {
			return deployments[i].ChainID < deployments[j].ChainID
		}
		if deployments[i].ContractName != deployments[j].ContractName {
			return deployments[i].ContractName < deployments[j].ContractName
		}
		return deployments[i].Label < deployments[j].Label
	})
}

// calculateSummary calculates summary statistics for deployments
func calculateSummary(statuses []*DeploymentStatus) DeploymentSummary {
	summary := DeploymentSummary{
		Total:  len(statuses),
		ByType: make(map[models.DeploymentType]int),
	}
	for _, s := range statuses {
		summary.ByType[s.Deployment.Type]++
		if s.Checked && !s.Exists {
			summary.Missing++
		}
	}
	return summary
}
