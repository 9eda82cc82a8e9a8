package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/contracts/webuildworld"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// UpgradeProvider points a main contract at a new implementation, deploying it when
// no existing implementation is given.
type UpgradeProvider struct {
	resolver *ResolveDeployment
	deployer *DeployContracts
	linker   *LinkContracts
	progress ProgressSink
}

// NewUpgradeProvider creates a new upgrade use case
func NewUpgradeProvider(
	resolver *ResolveDeployment,
	deployer *DeployContracts,
	linker *LinkContracts,
	progress ProgressSink,
) *UpgradeProvider {
	return &UpgradeProvider{
		resolver: resolver,
		deployer: deployer,
		linker:   linker,
		progress: progress,
	}
}

// UpgradeProviderParams contains parameters for upgrading
type UpgradeProviderParams struct {
	Main string
	// Implementation references a deployed implementation; empty deploys a new one
	Implementation string
	// Label of the new implementation; defaults to v<n>
	Label string
	From  string
}

// UpgradeProviderResult contains the result of an upgrade
type UpgradeProviderResult struct {
	Main             *models.Deployment
	Implementation   *models.Deployment
	PreviousProvider common.Address
	Deployed         bool
	Link             *LinkContractsResult
}

// Run performs the upgrade
func (u *UpgradeProvider) Run(ctx context.Context, params UpgradeProviderParams) (*UpgradeProviderResult, error) {
	main, err := u.resolver.Main(ctx, params.Main)
	if err != nil {
		return nil, err
	}
	result := &UpgradeProviderResult{Main: main}

	if params.Implementation != "" {
		result.Implementation, err = u.resolver.Implementation(ctx, params.Implementation)
		if err != nil {
			return nil, err
		}
	} else {
		label := params.Label
		if label == "" {
			label = nextProviderLabel(main)
		}
		u.progress.Info(fmt.Sprintf("Deploying %s:%s", webuildworld.ImplementationName, label))
		deployed, err := u.deployer.Run(ctx, DeployContractsParams{
			From:      params.From,
			Label:     label,
			Contracts: []string{webuildworld.ImplementationName},
		})
		if err != nil {
			return nil, err
		}
		all := deployed.All()
		result.Implementation = all[0]
		result.Deployed = len(deployed.Deployed) > 0
	}

	result.Link, err = u.linker.link(ctx, main, result.Implementation, params.From)
	if err != nil {
		return result, err
	}
	result.PreviousProvider = result.Link.PreviousProvider
	return result, nil
}

// nextProviderLabel numbers implementations from the main contract's upgrade history;
// the unlabeled first implementation counts as v1
func nextProviderLabel(main *models.Deployment) string {
	n := 1
	if main.ProviderInfo != nil {
		n = len(main.ProviderInfo.History)
	}
	return fmt.Sprintf("v%d", n+1)
}
