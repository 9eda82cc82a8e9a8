package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/webuildworld/webuild/internal/domain/models"
)

// ListAccounts lists configured accounts with their balances
type ListAccounts struct {
	accounts AccountResolver
	client   RegistryClient
}

// NewListAccounts creates a new list accounts use case
func NewListAccounts(accounts AccountResolver, client RegistryClient) *ListAccounts {
	return &ListAccounts{
		accounts: accounts,
		client:   client,
	}
}

// ListAccountsParams contains parameters for listing accounts
type ListAccountsParams struct {
	// Balances queries each account's balance
	Balances bool
}

// ListAccountsResult contains the accounts in configuration order
type ListAccountsResult struct {
	ChainID  uint64
	Accounts []*models.Account
	Default  string
}

// Run lists accounts
func (l *ListAccounts) Run(ctx context.Context, params ListAccountsParams) (*ListAccountsResult, error) {
	accounts, err := l.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	result := &ListAccountsResult{Accounts: accounts}
	if def, err := l.accounts.ResolveAccount(ctx, ""); err == nil {
		result.Default = def.Name
	}
	if !params.Balances {
		return result, nil
	}

	if result.ChainID, err = l.client.ChainID(ctx); err != nil {
		return nil, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(brickFetchConcurrency)
	for _, acct := range accounts {
		g.Go(func() error {
			balance, err := l.client.Balance(gctx, acct.Address)
			if err != nil {
				return fmt.Errorf("failed to get balance of %s: %w", acct.Name, err)
			}
			acct.Balance = balance
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
