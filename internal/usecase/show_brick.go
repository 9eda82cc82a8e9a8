package usecase

import (
	"context"
	"fmt"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/config"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// ShowBrick fetches a brick and its builders
type ShowBrick struct {
	resolver *ResolveDeployment
	client   RegistryClient
	selector BrickSelector
	config   *config.RuntimeConfig
}

// NewShowBrick creates a new show brick use case
func NewShowBrick(resolver *ResolveDeployment, client RegistryClient, selector BrickSelector, cfg *config.RuntimeConfig) *ShowBrick {
	return &ShowBrick{
		resolver: resolver,
		client:   client,
		selector: selector,
		config:   cfg,
	}
}

// ShowBrickParams contains parameters for showing a brick. A zero ID picks a brick
// interactively from the newest ones.
type ShowBrickParams struct {
	Main string
	ID   uint64
}

// ShowBrickResult contains the brick with its builders
type ShowBrickResult struct {
	Main  *models.Deployment
	Brick *models.Brick
}

// Run shows a brick
func (s *ShowBrick) Run(ctx context.Context, params ShowBrickParams) (*ShowBrickResult, error) {
	main, err := s.resolver.Main(ctx, params.Main)
	if err != nil {
		return nil, err
	}
	addr := mainAddress(main)

	id := params.ID
	if id == 0 {
		picked, err := s.pick(ctx, main)
		if err != nil {
			return nil, err
		}
		id = picked.ID
	}

	brick, err := s.client.Brick(ctx, addr, id)
	if err != nil {
		return nil, fmt.Errorf("brick %d: %w", id, err)
	}
	brick.Builders, err = s.client.BrickBuilders(ctx, addr, id)
	if err != nil {
		return nil, fmt.Errorf("getBrickBuilders(%d) failed: %w", id, err)
	}
	return &ShowBrickResult{Main: main, Brick: brick}, nil
}

func (s *ShowBrick) pick(ctx context.Context, main *models.Deployment) (*models.Brick, error) {
	if s.config.NonInteractive || s.selector == nil {
		return nil, fmt.Errorf("a brick id is required in non-interactive mode")
	}
	ids, err := s.client.BrickIDs(ctx, mainAddress(main), domain.BrickQuery{
		Limit: domain.MaxBrickLimit,
		Order: domain.OrderNewestFirst,
	})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no bricks on %s: %w", main.Address, domain.ErrNotFound)
	}
	bricks, err := fetchBricks(ctx, s.client, main, ids)
	if err != nil {
		return nil, err
	}
	return s.selector.SelectBrick(ctx, bricks, "Select a brick:")
}
