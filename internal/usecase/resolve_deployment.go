package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/contracts/webuildworld"
	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/config"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// ResolveDeployment locates deployed registry contracts on the current chain
type ResolveDeployment struct {
	config   *config.RuntimeConfig
	repo     DeploymentRepository
	client   RegistryClient
	selector DeploymentSelector
}

// NewResolveDeployment creates a new deployment resolver use case
func NewResolveDeployment(
	cfg *config.RuntimeConfig,
	repo DeploymentRepository,
	client RegistryClient,
	selector DeploymentSelector,
) *ResolveDeployment {
	return &ResolveDeployment{
		config:   cfg,
		repo:     repo,
		client:   client,
		selector: selector,
	}
}

// ResolveDeploymentParams selects a deployment. Ref is a deployment id
// ("31337/WeBuildWorld:v2"), an address, or a contract name with an optional
// ":label" suffix. DefaultName is used when Ref is empty.
type ResolveDeploymentParams struct {
	Ref         string
	DefaultName string
}

// Run resolves a deployment reference
func (r *ResolveDeployment) Run(ctx context.Context, params ResolveDeploymentParams) (*models.Deployment, error) {
	ref := strings.TrimSpace(params.Ref)
	if ref == "" {
		ref = params.DefaultName
	}
	if ref == "" {
		return nil, fmt.Errorf("%w: empty deployment reference", domain.ErrNotFound)
	}

	chainID, err := r.client.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	// 1. Deployment ID
	if dep, err := r.repo.GetDeployment(ctx, ref); err == nil {
		if dep.ChainID != chainID {
			return nil, fmt.Errorf("deployment %s is on chain %d, connected to %d", dep.ID, dep.ChainID, chainID)
		}
		return dep, nil
	}

	// 2. Address
	if common.IsHexAddress(ref) {
		return r.byAddress(ctx, chainID, ref, params.DefaultName)
	}

	// 3. name[:label]
	name, label, _ := strings.Cut(ref, ":")
	deployments, err := r.repo.ListDeployments(ctx, domain.DeploymentFilter{
		ChainID:      chainID,
		ContractName: name,
		Label:        label,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}

	// A bare name prefers the unlabeled deployment
	if label == "" && len(deployments) > 1 {
		for _, dep := range deployments {
			if dep.Label == "" {
				return dep, nil
			}
		}
	}

	switch len(deployments) {
	case 0:
		return nil, domain.NoDeploymentMatchErr{Ref: ref, ChainID: chainID}
	case 1:
		return deployments[0], nil
	}

	if r.selector != nil && !r.config.NonInteractive {
		selected, err := r.selector.SelectDeployment(ctx, deployments, fmt.Sprintf("Multiple deployments found for '%s'. Select one:", ref))
		if err != nil {
			return nil, fmt.Errorf("deployment selection failed: %w", err)
		}
		return selected, nil
	}
	return nil, domain.AmbiguousDeploymentErr{Ref: ref, Matches: deployments}
}

func (r *ResolveDeployment) byAddress(ctx context.Context, chainID uint64, ref, expectedName string) (*models.Deployment, error) {
	dep, err := r.repo.GetDeploymentByAddress(ctx, chainID, ref)
	if err == nil {
		return dep, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// Unrecorded contracts can still be addressed directly
	addr := common.HexToAddress(ref)
	ok, err := r.client.HasCode(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to check code at %s: %w", addr.Hex(), err)
	}
	if !ok {
		return nil, fmt.Errorf("no contract at %s on chain %d: %w", addr.Hex(), chainID, domain.ErrContractNotDeployed)
	}
	return &models.Deployment{
		ID:           models.DeploymentID(chainID, expectedName, addr.Hex()),
		ChainID:      chainID,
		ContractName: expectedName,
		Address:      addr.Hex(),
		Type:         models.UnknownDeployment,
	}, nil
}

// Main resolves a WeBuildWorld main contract, defaulting to the unlabeled one
func (r *ResolveDeployment) Main(ctx context.Context, ref string) (*models.Deployment, error) {
	if ref == "" {
		ref = r.config.Main
	}
	dep, err := r.Run(ctx, ResolveDeploymentParams{Ref: ref, DefaultName: webuildworld.MainName})
	if err != nil {
		return nil, r.notDeployed(webuildworld.MainName, ref, err)
	}
	return dep, nil
}

// Implementation resolves a WeBuildWorldImplementation contract
func (r *ResolveDeployment) Implementation(ctx context.Context, ref string) (*models.Deployment, error) {
	dep, err := r.Run(ctx, ResolveDeploymentParams{Ref: ref, DefaultName: webuildworld.ImplementationName})
	if err != nil {
		return nil, r.notDeployed(webuildworld.ImplementationName, ref, err)
	}
	return dep, nil
}

func (r *ResolveDeployment) notDeployed(name, ref string, err error) error {
	var noMatch domain.NoDeploymentMatchErr
	if ref == "" && errors.As(err, &noMatch) {
		return fmt.Errorf("%s on chain %d: %w (run `webuild deploy` first)", name, noMatch.ChainID, domain.ErrContractNotDeployed)
	}
	return err
}
