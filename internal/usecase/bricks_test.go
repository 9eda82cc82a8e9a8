package usecase_test

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webuildworld/webuild/internal/contracts/webuildworld"
	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
	"github.com/webuildworld/webuild/internal/usecase"
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(params.Ether))
}

// deployed deploys and links the registry with the default sender
func (h *harness) deployed(t *testing.T) *usecase.DeployContractsResult {
	t.Helper()
	result, err := h.deploy.Run(context.Background(), usecase.DeployContractsParams{Link: true})
	require.NoError(t, err)
	return result
}

func (h *harness) add(t *testing.T, from, title string, value *big.Int, tags ...string) uint64 {
	t.Helper()
	res, err := h.addBrick().Run(context.Background(), usecase.AddBrickParams{
		From:  from,
		Brick: models.NewBrick{Title: title, URL: "https://example.com", Tags: tags, Value: value},
	})
	require.NoError(t, err)
	return res.BrickID
}

func TestDeployContracts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first := h.deployed(t)
	assert.Equal(t, uint64(31337), first.ChainID)
	require.Len(t, first.Deployed, 2)
	assert.Equal(t, webuildworld.ImplementationName, first.Deployed[0].ContractName)
	assert.Equal(t, models.ImplementationDeployment, first.Deployed[0].Type)
	assert.Equal(t, webuildworld.MainName, first.Deployed[1].ContractName)
	require.NotNil(t, first.Link)
	assert.NotNil(t, first.Link.SetMainTx)
	assert.NotNil(t, first.Link.UpgradeTx)

	main, err := h.repo.GetDeployment(ctx, "31337/WeBuildWorld")
	require.NoError(t, err)
	assert.Equal(t, first.Deployed[0].Address, main.CurrentProvider())

	// A second run finds both contracts and sends nothing
	second := h.deployed(t)
	assert.Empty(t, second.Deployed)
	assert.Len(t, second.Existing, 2)
	require.NotNil(t, second.Link)
	assert.True(t, second.Link.AlreadyLinked())

	txs, err := h.repo.ListTransactions(ctx, domain.TransactionFilter{ChainID: 31337})
	require.NoError(t, err)
	assert.Len(t, txs, 4)
}

func TestDeployContracts_UnknownContract(t *testing.T) {
	h := newHarness(t)
	_, err := h.deploy.Run(context.Background(), usecase.DeployContractsParams{Contracts: []string{"Counter"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveDeployment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	t.Run("main before deploy", func(t *testing.T) {
		_, err := h.resolver.Main(ctx, "")
		assert.ErrorIs(t, err, domain.ErrContractNotDeployed)
	})

	result := h.deployed(t)
	impl := result.Deployed[0]

	t.Run("by name", func(t *testing.T) {
		dep, err := h.resolver.Main(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "31337/WeBuildWorld", dep.ID)
	})

	t.Run("by address", func(t *testing.T) {
		dep, err := h.resolver.Implementation(ctx, impl.Address)
		require.NoError(t, err)
		assert.Equal(t, impl.ID, dep.ID)
	})

	t.Run("unrecorded address without code", func(t *testing.T) {
		_, err := h.resolver.Main(ctx, "0x000000000000000000000000000000000000dEaD")
		assert.ErrorIs(t, err, domain.ErrContractNotDeployed)
	})

	t.Run("unknown label", func(t *testing.T) {
		_, err := h.resolver.Main(ctx, "WeBuildWorld:v9")
		var noMatch domain.NoDeploymentMatchErr
		assert.ErrorAs(t, err, &noMatch)
	})
}

func TestAddBrick_Validation(t *testing.T) {
	h := newHarness(t)
	uc := h.addBrick()

	tests := []struct {
		name  string
		brick models.NewBrick
	}{
		{"missing title", models.NewBrick{Title: "  ", Value: ether(1)}},
		{"zero value", models.NewBrick{Title: "footer", Value: new(big.Int)}},
		{"nil value", models.NewBrick{Title: "footer"}},
		{"tag too long", models.NewBrick{Title: "footer", Value: ether(1), Tags: []string{"a-tag-that-is-way-longer-than-32-bytes"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Validation runs before any deployment lookup
			_, err := uc.Run(context.Background(), usecase.AddBrickParams{Brick: tt.brick})
			assert.ErrorIs(t, err, domain.ErrInvalidBrick)
		})
	}
}

func TestAddBrickAndList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.deployed(t)

	before := time.Now().Unix()
	first := h.add(t, "owner", "footer", ether(1), "web", "web", " ")
	second := h.add(t, "alice", "logo", ether(3), "design")
	third := h.add(t, "alice", "navbar", ether(2), "web", "css")
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{first, second, third})

	t.Run("defaults", func(t *testing.T) {
		res, err := h.listBricks().Run(ctx, usecase.ListBricksParams{})
		require.NoError(t, err)
		assert.Equal(t, []uint64{1, 2, 3}, res.IDs)
		assert.Equal(t, uint64(3), res.Total)
		require.Len(t, res.Bricks, 3)
		assert.Equal(t, []string{"web"}, res.Bricks[0].Tags)
		assert.GreaterOrEqual(t, int64(res.Bricks[0].Timestamp), before)
	})

	t.Run("tag filter newest first", func(t *testing.T) {
		res, err := h.listBricks().Run(ctx, usecase.ListBricksParams{
			Query: domain.BrickQuery{Tags: []string{"web"}, Order: domain.OrderNewestFirst},
		})
		require.NoError(t, err)
		assert.Equal(t, []uint64{3, 1}, res.IDs)
		assert.Equal(t, "navbar", res.Bricks[0].Title)
	})

	t.Run("offset and limit", func(t *testing.T) {
		res, err := h.listBricks().Run(ctx, usecase.ListBricksParams{
			Query: domain.BrickQuery{Offset: 1, Limit: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, []uint64{2}, res.IDs)
	})

	t.Run("by owner", func(t *testing.T) {
		res, err := usecase.NewListAccountBricks(h.resolver, h.accounts, h.client).Run(ctx, usecase.ListAccountBricksParams{
			Account: "alice",
			Role:    models.RoleOwner,
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleOwner, res.Role)
		require.Len(t, res.Bricks, 2)
		assert.Equal(t, "logo", res.Bricks[0].Title)
		assert.Equal(t, "navbar", res.Bricks[1].Title)
	})

	t.Run("transactions recorded", func(t *testing.T) {
		txs, err := h.repo.ListTransactions(ctx, domain.TransactionFilter{Method: "addBrick"})
		require.NoError(t, err)
		assert.Len(t, txs, 3)
	})
}

func TestManageWork(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.deployed(t)
	id := h.add(t, "owner", "footer", ether(2), "web")
	uc := h.manageWork()

	t.Run("owner cannot start own brick", func(t *testing.T) {
		_, err := uc.Execute(ctx, usecase.ManageWorkParams{Operation: usecase.WorkStart, From: "owner", BrickID: id})
		assert.ErrorIs(t, err, domain.ErrBrickState)
	})

	t.Run("accept before start", func(t *testing.T) {
		_, err := uc.Execute(ctx, usecase.ManageWorkParams{Operation: usecase.WorkAccept, From: "owner", BrickID: id, Builder: "builder"})
		assert.ErrorIs(t, err, domain.ErrBrickState)
	})

	res, err := uc.Execute(ctx, usecase.ManageWorkParams{Operation: usecase.WorkStart, From: "builder", BrickID: id})
	require.NoError(t, err)
	assert.Equal(t, models.BrickStarted, res.Brick.Status)
	require.Len(t, res.Brick.Builders, 1)
	builder := res.Brick.Builders[0]

	_, err = uc.Execute(ctx, usecase.ManageWorkParams{Operation: usecase.WorkStart, From: "alice", BrickID: id})
	require.NoError(t, err)

	t.Run("only the owner accepts", func(t *testing.T) {
		_, err := uc.Execute(ctx, usecase.ManageWorkParams{Operation: usecase.WorkAccept, From: "alice", BrickID: id, Builder: "builder"})
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})

	t.Run("builder must have started", func(t *testing.T) {
		_, err := uc.Execute(ctx, usecase.ManageWorkParams{Operation: usecase.WorkAccept, From: "owner", BrickID: id, Builder: "bob"})
		assert.ErrorIs(t, err, domain.ErrBrickState)
	})

	balance, err := h.client.Balance(ctx, builder)
	require.NoError(t, err)

	res, err = uc.Execute(ctx, usecase.ManageWorkParams{Operation: usecase.WorkAccept, From: "owner", BrickID: id, Builder: "builder"})
	require.NoError(t, err)
	assert.Equal(t, models.BrickCompleted, res.Brick.Status)
	assert.Equal(t, builder, res.Brick.Winner)
	assert.Len(t, res.Brick.Builders, 2)

	paid, err := h.client.Balance(ctx, builder)
	require.NoError(t, err)
	assert.Equal(t, 0, ether(2).Cmp(new(big.Int).Sub(paid, balance)))

	t.Run("completed brick cannot be cancelled", func(t *testing.T) {
		_, err := uc.Execute(ctx, usecase.ManageWorkParams{Operation: usecase.WorkCancel, From: "owner", BrickID: id})
		assert.ErrorIs(t, err, domain.ErrBrickState)
	})

	t.Run("builder index", func(t *testing.T) {
		res, err := usecase.NewListAccountBricks(h.resolver, h.accounts, h.client).Run(ctx, usecase.ListAccountBricksParams{
			Account: "builder",
			Role:    models.RoleBuilder,
		})
		require.NoError(t, err)
		require.Len(t, res.Bricks, 1)
		assert.Equal(t, id, res.Bricks[0].ID)
	})
}

func TestManageWork_CancelHidesBrick(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.deployed(t)
	id := h.add(t, "alice", "logo", ether(1), "design")

	res, err := h.manageWork().Execute(ctx, usecase.ManageWorkParams{Operation: usecase.WorkCancel, From: "alice", BrickID: id})
	require.NoError(t, err)
	assert.Equal(t, models.BrickCancelled, res.Brick.Status)

	listed, err := h.listBricks().Run(ctx, usecase.ListBricksParams{})
	require.NoError(t, err)
	assert.Empty(t, listed.IDs)

	owned, err := h.client.BrickIDsByOwner(ctx, common.HexToAddress(listed.Main.Address), res.Sender.Address)
	require.NoError(t, err)
	assert.Equal(t, []uint64{id}, owned)
}

func TestUpgradeProvider_KeepsBricks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	deployed := h.deployed(t)
	id := h.add(t, "owner", "footer", ether(1), "web")

	uc := usecase.NewUpgradeProvider(h.resolver, h.deploy, h.link, h.progress)
	res, err := uc.Run(ctx, usecase.UpgradeProviderParams{})
	require.NoError(t, err)
	assert.True(t, res.Deployed)
	assert.Equal(t, "v2", res.Implementation.Label)
	assert.Equal(t, common.HexToAddress(deployed.Deployed[0].Address), res.PreviousProvider)

	mainAddr := common.HexToAddress(res.Main.Address)
	provider, err := h.client.Provider(ctx, mainAddr)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(res.Implementation.Address), provider)

	// Storage lives in main, so bricks survive the upgrade
	brick, err := h.client.Brick(ctx, mainAddr, id)
	require.NoError(t, err)
	assert.Equal(t, "footer", brick.Title)

	main, err := h.repo.GetDeployment(ctx, res.Main.ID)
	require.NoError(t, err)
	require.NotNil(t, main.ProviderInfo)
	assert.Len(t, main.ProviderInfo.History, 2)
	assert.Equal(t, res.Implementation.Address, main.CurrentProvider())

	t.Run("relinking the current provider is a no-op", func(t *testing.T) {
		again, err := uc.Run(ctx, usecase.UpgradeProviderParams{Implementation: "WeBuildWorldImplementation:v2"})
		require.NoError(t, err)
		assert.False(t, again.Deployed)
		assert.True(t, again.Link.AlreadyLinked())
	})
}

func TestComposeBricks_Resume(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.deployed(t)

	manifest := filepath.Join(h.cfg.ProjectRoot, "launch.yaml")
	write := func(secondSender string) {
		require.NoError(t, os.WriteFile(manifest, []byte(`
from: alice
bricks:
  - name: footer
    title: Build the footer
    value: "0.5"
    tags: [web]
  - name: logo
    title: Design the logo
    value: 20gwei
    from: `+secondSender+`
`), 0o644))
	}

	write("nobody")
	res, err := h.compose().Run(ctx, usecase.ComposeParams{ManifestPath: manifest})
	require.NoError(t, err)
	assert.Equal(t, "launch", res.Group)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Failed)
	assert.False(t, res.Success())
	assert.ErrorIs(t, res.Steps[1].Error, domain.ErrUnknownAccount)

	write("bob")
	res, err = h.compose().Run(ctx, usecase.ComposeParams{ManifestPath: manifest, Resume: true})
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, uint64(1), res.Steps[0].BrickID)
	assert.Equal(t, uint64(2), res.Steps[1].BrickID)

	logo, err := h.client.Brick(ctx, common.HexToAddress(res.Main.Address), 2)
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(20_000_000_000).Cmp(logo.Value))

	_, err = h.compose().Run(ctx, usecase.ComposeParams{ManifestPath: manifest, Resume: true})
	assert.ErrorContains(t, err, "already completed")
}

func TestComposeBricks_DryRun(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.deployed(t)

	manifest := filepath.Join(h.cfg.ProjectRoot, "bricks.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`
bricks:
  - name: footer
    title: Build the footer
    value: "1"
`), 0o644))

	res, err := h.compose().Run(ctx, usecase.ComposeParams{ManifestPath: manifest, DryRun: true})
	require.NoError(t, err)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, 0, ether(1).Cmp(res.Steps[0].Brick.Value))
	assert.Zero(t, res.Added)

	count, err := h.client.BrickCount(ctx, common.HexToAddress(res.Main.Address))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestWatchBricks_Limit(t *testing.T) {
	h := newHarness(t)
	h.deployed(t)
	h.add(t, "owner", "footer", ether(1), "web")
	h.add(t, "alice", "logo", ether(1), "design")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var names []string
	res, err := usecase.NewWatchBricks(h.resolver, h.client, h.progress).Run(ctx, usecase.WatchBricksParams{
		Events: []string{models.EventBrickAdded},
		Limit:  2,
		OnEvent: func(ev *models.ContractEvent) error {
			names = append(names, ev.Name)
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Received)
	assert.Equal(t, []string{models.EventBrickAdded, models.EventBrickAdded}, names)
}

func TestShowBrick(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.deployed(t)
	id := h.add(t, "owner", "footer", ether(1), "web")

	uc := usecase.NewShowBrick(h.resolver, h.client, nil, h.cfg)
	res, err := uc.Run(ctx, usecase.ShowBrickParams{ID: id})
	require.NoError(t, err)
	assert.Equal(t, "footer", res.Brick.Title)
	assert.Empty(t, res.Brick.Builders)

	_, err = uc.Run(ctx, usecase.ShowBrickParams{ID: 42})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestComposeBricks_Only(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.deployed(t)

	manifest := filepath.Join(h.cfg.ProjectRoot, "bricks.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`
from: alice
bricks:
  - name: footer
    title: Build the footer
    value: "1"
  - name: logo
    title: Design the logo
    value: "2"
`), 0o644))

	plan, err := h.compose().Plan(ctx, usecase.ComposeParams{ManifestPath: manifest})
	require.NoError(t, err)
	assert.Len(t, plan.Manifest.Bricks, 2)
	assert.Empty(t, plan.Added)

	h.progress.events = nil
	res, err := h.compose().Run(ctx, usecase.ComposeParams{ManifestPath: manifest, Only: []string{"logo"}})
	require.NoError(t, err)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, "logo", res.Steps[0].Name)
	assert.Equal(t, uint64(1), res.Steps[0].BrickID)

	steps := lo.Filter(h.progress.events, func(e usecase.ProgressEvent, _ int) bool { return e.Stage == "compose_step" })
	require.Len(t, steps, 1)
	assert.Equal(t, 1, steps[0].Current)
	assert.Equal(t, 1, steps[0].Total)
	assert.Equal(t, "logo", steps[0].Message)

	plan, err = h.compose().Plan(ctx, usecase.ComposeParams{ManifestPath: manifest})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"logo": true}, plan.Added)

	_, err = h.compose().Run(ctx, usecase.ComposeParams{ManifestPath: manifest, Only: []string{"banner"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
