package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// brickFetchConcurrency bounds concurrent getBrick calls
const brickFetchConcurrency = 8

// ListBricks runs getBrickIds and fetches every matching brick
type ListBricks struct {
	resolver *ResolveDeployment
	client   RegistryClient
	progress ProgressSink
}

// NewListBricks creates a new list bricks use case
func NewListBricks(resolver *ResolveDeployment, client RegistryClient, progress ProgressSink) *ListBricks {
	return &ListBricks{
		resolver: resolver,
		client:   client,
		progress: progress,
	}
}

// ListBricksParams contains parameters for listing bricks
type ListBricksParams struct {
	Main  string
	Query domain.BrickQuery
}

// ListBricksResult contains the matched bricks in query order
type ListBricksResult struct {
	Main   *models.Deployment
	Query  domain.BrickQuery
	IDs    []uint64
	Bricks []*models.Brick
	Total  uint64
}

// Run lists bricks
func (l *ListBricks) Run(ctx context.Context, params ListBricksParams) (*ListBricksResult, error) {
	query := params.Query
	query.Tags = domain.NormalizeTags(query.Tags)
	if err := domain.ValidateTags(query.Tags); err != nil {
		return nil, err
	}

	main, err := l.resolver.Main(ctx, params.Main)
	if err != nil {
		return nil, err
	}
	addr := mainAddress(main)

	ids, err := l.client.BrickIDs(ctx, addr, query)
	if err != nil {
		return nil, fmt.Errorf("getBrickIds failed: %w", err)
	}
	total, err := l.client.BrickCount(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("getBrickCount failed: %w", err)
	}

	bricks, err := fetchBricks(ctx, l.client, main, ids)
	if err != nil {
		return nil, err
	}
	return &ListBricksResult{
		Main:   main,
		Query:  query,
		IDs:    ids,
		Bricks: bricks,
		Total:  total,
	}, nil
}

// fetchBricks loads bricks concurrently, keeping the order of ids
func fetchBricks(ctx context.Context, client RegistryClient, main *models.Deployment, ids []uint64) ([]*models.Brick, error) {
	bricks := make([]*models.Brick, len(ids))
	addr := mainAddress(main)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(brickFetchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			brick, err := client.Brick(ctx, addr, id)
			if err != nil {
				return fmt.Errorf("getBrick(%d) failed: %w", id, err)
			}
			bricks[i] = brick
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bricks, nil
}
