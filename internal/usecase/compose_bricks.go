package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// ComposeStateStore persists compose progress so a failed run can resume
type ComposeStateStore interface {
	Load(ctx context.Context, manifestPath string, chainID uint64) (*ComposeState, error)
	Save(ctx context.Context, state *ComposeState) error
}

// ComposeState represents the state of a compose execution
type ComposeState struct {
	StartedAt    time.Time                    `json:"started_at"`
	UpdatedAt    time.Time                    `json:"updated_at"`
	ManifestPath string                       `json:"manifest_path"`
	ChainID      uint64                       `json:"chain_id"`
	Main         string                       `json:"main"`
	Added        map[string]*ComposeStepState `json:"added"`
	Status       string                       `json:"status"` // "running", "failed", "completed"
}

// ComposeStepState records a brick added by a compose run
type ComposeStepState struct {
	BrickID         uint64 `json:"brick_id"`
	TransactionHash string `json:"transaction_hash"`
}

// ComposeBricks adds the bricks of a YAML manifest in order
type ComposeBricks struct {
	loader   ComposeLoader
	states   ComposeStateStore
	resolver *ResolveDeployment
	accounts AccountResolver
	client   RegistryClient
	txs      TransactionRepository
	progress ProgressSink
	clock    func() time.Time
}

// NewComposeBricks creates a new compose use case
func NewComposeBricks(
	loader ComposeLoader,
	states ComposeStateStore,
	resolver *ResolveDeployment,
	accounts AccountResolver,
	client RegistryClient,
	txs TransactionRepository,
	progress ProgressSink,
) *ComposeBricks {
	return &ComposeBricks{
		loader:   loader,
		states:   states,
		resolver: resolver,
		accounts: accounts,
		client:   client,
		txs:      txs,
		progress: progress,
		clock:    time.Now,
	}
}

// ComposeParams contains parameters for composing bricks
type ComposeParams struct {
	ManifestPath string
	Main         string
	// From overrides the manifest sender for every brick
	From            string
	Resume          bool
	ContinueOnError bool
	DryRun          bool
	// Only limits the run to these entry names; empty runs every entry
	Only []string
}

// ComposePlan is a validated manifest with the entries an earlier run added
type ComposePlan struct {
	Manifest *domain.ComposeManifest
	Main     *models.Deployment
	Added    map[string]bool
}

// ComposeStepResult is the outcome of one manifest entry
type ComposeStepResult struct {
	Name        string
	Sender      string
	Brick       *models.NewBrick
	BrickID     uint64
	Transaction *models.TransactionResult
	Skipped     bool
	Error       error
}

// ComposeResult contains the result of a compose run
type ComposeResult struct {
	Group   string
	Main    *models.Deployment
	Steps   []*ComposeStepResult
	Added   int
	Skipped int
	Failed  int
}

// Success reports whether every step succeeded or was skipped
func (r *ComposeResult) Success() bool {
	return r.Failed == 0
}

// Plan loads and validates the manifest without sending transactions
func (c *ComposeBricks) Plan(ctx context.Context, params ComposeParams) (*ComposePlan, error) {
	manifest, main, err := c.load(ctx, params)
	if err != nil {
		return nil, err
	}
	plan := &ComposePlan{Manifest: manifest, Main: main, Added: make(map[string]bool)}
	prev, err := c.states.Load(ctx, params.ManifestPath, main.ChainID)
	if err == nil && prev.Main == main.Address {
		for name := range prev.Added {
			plan.Added[name] = true
		}
	}
	return plan, nil
}

func (c *ComposeBricks) load(ctx context.Context, params ComposeParams) (*domain.ComposeManifest, *models.Deployment, error) {
	manifest, err := c.loader.Load(ctx, params.ManifestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid manifest: %w", err)
	}
	for _, name := range params.Only {
		if !slices.ContainsFunc(manifest.Bricks, func(b *domain.ComposeBrick) bool { return b.Name == name }) {
			return nil, nil, fmt.Errorf("brick %q is not in %s: %w", name, params.ManifestPath, domain.ErrNotFound)
		}
	}

	main, err := c.resolver.Main(ctx, params.Main)
	if err != nil {
		return nil, nil, err
	}
	return manifest, main, nil
}

// Run executes the manifest
func (c *ComposeBricks) Run(ctx context.Context, params ComposeParams) (*ComposeResult, error) {
	manifest, main, err := c.load(ctx, params)
	if err != nil {
		return nil, err
	}

	state, err := c.initState(ctx, params, main)
	if err != nil {
		return nil, err
	}

	result := &ComposeResult{Group: manifest.Group, Main: main}
	now := uint64(c.clock().Unix())

	entries := manifest.Bricks
	if len(params.Only) > 0 {
		entries = lo.Filter(entries, func(entry *domain.ComposeBrick, _ int) bool {
			return slices.Contains(params.Only, entry.Name)
		})
	}

	for i, entry := range entries {
		c.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "compose_step",
			Current: i + 1,
			Total:   len(entries),
			Message: entry.Name,
			Spinner: true,
		})

		step := &ComposeStepResult{Name: entry.Name, Sender: manifest.Sender(entry)}
		if params.From != "" {
			step.Sender = params.From
		}
		result.Steps = append(result.Steps, step)

		if done, ok := state.Added[entry.Name]; ok {
			step.Skipped = true
			step.BrickID = done.BrickID
			result.Skipped++
			continue
		}

		step.Brick, step.Error = entry.NewBrick(now)
		if step.Error == nil && !params.DryRun {
			step.BrickID, step.Transaction, step.Error = c.addBrick(ctx, main, step)
		}

		if step.Error != nil {
			result.Failed++
			c.progress.Error(fmt.Sprintf("%s: %v", entry.Name, step.Error))
			if !params.ContinueOnError {
				break
			}
			continue
		}
		if params.DryRun {
			continue
		}

		result.Added++
		state.Added[entry.Name] = &ComposeStepState{
			BrickID:         step.BrickID,
			TransactionHash: step.Transaction.Hash.Hex(),
		}
		c.saveState(ctx, state, "running")
	}

	if params.DryRun {
		return result, nil
	}
	status := "completed"
	if !result.Success() {
		status = "failed"
	}
	c.saveState(ctx, state, status)
	return result, nil
}

func (c *ComposeBricks) initState(ctx context.Context, params ComposeParams, main *models.Deployment) (*ComposeState, error) {
	if params.Resume {
		prev, err := c.states.Load(ctx, params.ManifestPath, main.ChainID)
		if err != nil {
			return nil, fmt.Errorf("failed to resume: %w", err)
		}
		if prev.Main != main.Address {
			return nil, fmt.Errorf("cannot resume: previous run targeted %s, now %s", prev.Main, main.Address)
		}
		if prev.Status == "completed" {
			return nil, fmt.Errorf("previous run already completed successfully")
		}
		if prev.Added == nil {
			prev.Added = make(map[string]*ComposeStepState)
		}
		return prev, nil
	}

	now := c.clock()
	return &ComposeState{
		StartedAt:    now,
		UpdatedAt:    now,
		ManifestPath: params.ManifestPath,
		ChainID:      main.ChainID,
		Main:         main.Address,
		Added:        make(map[string]*ComposeStepState),
		Status:       "running",
	}, nil
}

func (c *ComposeBricks) saveState(ctx context.Context, state *ComposeState, status string) {
	state.Status = status
	state.UpdatedAt = c.clock()
	if err := c.states.Save(ctx, state); err != nil {
		c.progress.Error(fmt.Sprintf("Warning: failed to save compose state: %v", err))
	}
}

func (c *ComposeBricks) addBrick(ctx context.Context, main *models.Deployment, step *ComposeStepResult) (uint64, *models.TransactionResult, error) {
	from, err := c.accounts.ResolveAccount(ctx, step.Sender)
	if err != nil {
		return 0, nil, err
	}
	id, tx, err := c.client.AddBrick(ctx, mainAddress(main), from, step.Brick)
	if tx != nil {
		recordTransaction(ctx, c.txs, c.progress, tx)
	}
	if err != nil {
		return 0, tx, err
	}
	return id, tx, nil
}
