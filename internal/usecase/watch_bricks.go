package usecase

import (
	"context"
	"errors"
	"slices"

	"github.com/webuildworld/webuild/internal/domain/models"
)

// WatchBricks streams registry events of a main contract
type WatchBricks struct {
	resolver *ResolveDeployment
	client   RegistryClient
	progress ProgressSink
}

// NewWatchBricks creates a new watch use case
func NewWatchBricks(resolver *ResolveDeployment, client RegistryClient, progress ProgressSink) *WatchBricks {
	return &WatchBricks{
		resolver: resolver,
		client:   client,
		progress: progress,
	}
}

// WatchBricksParams contains parameters for watching
type WatchBricksParams struct {
	Main      string
	FromBlock uint64
	// Events limits the stream to these event names
	Events []string
	// BrickID limits the stream to one brick
	BrickID uint64
	// Limit stops after this many events; zero watches until cancelled
	Limit int
	// OnEvent receives every matching event
	OnEvent func(*models.ContractEvent) error
}

// WatchBricksResult summarizes a finished watch
type WatchBricksResult struct {
	Main     *models.Deployment
	Received int
}

var errWatchLimit = errors.New("watch limit reached")

// Run watches until ctx is cancelled, the limit is reached or OnEvent fails
func (w *WatchBricks) Run(ctx context.Context, params WatchBricksParams) (*WatchBricksResult, error) {
	main, err := w.resolver.Main(ctx, params.Main)
	if err != nil {
		return nil, err
	}
	result := &WatchBricksResult{Main: main}

	w.progress.Info("Watching " + main.GetShortID() + " at " + main.Address)
	err = w.client.WatchEvents(ctx, mainAddress(main), params.FromBlock, func(ev *models.ContractEvent) error {
		if len(params.Events) > 0 && !slices.Contains(params.Events, ev.Name) {
			return nil
		}
		if params.BrickID != 0 && (!ev.IsBrickEvent() || ev.BrickID != params.BrickID) {
			return nil
		}
		result.Received++
		if params.OnEvent != nil {
			if err := params.OnEvent(ev); err != nil {
				return err
			}
		}
		if params.Limit > 0 && result.Received >= params.Limit {
			return errWatchLimit
		}
		return nil
	})
	switch {
	case errors.Is(err, errWatchLimit), errors.Is(err, context.Canceled):
		return result, nil
	case err != nil:
		return result, err
	}
	return result, nil
}
