package usecase

import (
	"context"
	"fmt"

	"github.com/webuildworld/webuild/internal/domain/models"
)

// ListAccountBricks lists the bricks an account owns or builds
type ListAccountBricks struct {
	resolver *ResolveDeployment
	accounts AccountResolver
	client   RegistryClient
}

// NewListAccountBricks creates a new account bricks use case
func NewListAccountBricks(resolver *ResolveDeployment, accounts AccountResolver, client RegistryClient) *ListAccountBricks {
	return &ListAccountBricks{
		resolver: resolver,
		accounts: accounts,
		client:   client,
	}
}

// ListAccountBricksParams contains parameters for listing an account's bricks
type ListAccountBricksParams struct {
	Main    string
	Account string
	Role    models.BrickRole
	// Status filters the result when set
	Status *models.BrickStatus
}

// ListAccountBricksResult contains an account's bricks in index order
type ListAccountBricksResult struct {
	Main    *models.Deployment
	Account *models.Account
	Role    models.BrickRole
	Bricks  []*models.Brick
}

// Run lists the account's bricks
func (l *ListAccountBricks) Run(ctx context.Context, params ListAccountBricksParams) (*ListAccountBricksResult, error) {
	main, err := l.resolver.Main(ctx, params.Main)
	if err != nil {
		return nil, err
	}
	account, err := l.accounts.ResolveAccount(ctx, params.Account)
	if err != nil {
		return nil, err
	}

	var ids []uint64
	switch params.Role {
	case models.RoleOwner, "":
		params.Role = models.RoleOwner
		ids, err = l.client.BrickIDsByOwner(ctx, mainAddress(main), account.Address)
	case models.RoleBuilder:
		ids, err = l.client.BrickIDsByBuilder(ctx, mainAddress(main), account.Address)
	default:
		return nil, fmt.Errorf("unknown role %q", params.Role)
	}
	if err != nil {
		return nil, err
	}

	bricks, err := fetchBricks(ctx, l.client, main, ids)
	if err != nil {
		return nil, err
	}
	if params.Status != nil {
		filtered := bricks[:0]
		for _, b := range bricks {
			if b.Status == *params.Status {
				filtered = append(filtered, b)
			}
		}
		bricks = filtered
	}

	return &ListAccountBricksResult{
		Main:    main,
		Account: account,
		Role:    params.Role,
		Bricks:  bricks,
	}, nil
}
