package deployments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
)

func newDeployment(chainID uint64, name, label, address string, createdAt time.Time) *models.Deployment {
	typ := models.ImplementationDeployment
	if name == "WeBuildWorld" {
		typ = models.MainDeployment
	}
	return &models.Deployment{
		ID:           models.DeploymentID(chainID, name, label),
		ChainID:      chainID,
		ContractName: name,
		Label:        label,
		Address:      address,
		Type:         typ,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func TestFileRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("save, reload and retrieve", func(t *testing.T) {
		dir := t.TempDir()
		repo, err := NewFileRepository(dir)
		require.NoError(t, err)

		main := newDeployment(31337, "WeBuildWorld", "", "0x5FbDB2315678afecb367f032d93F642f64180aa3", now)
		main.RecordUpgrade("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512", "0xabc", now)
		require.NoError(t, repo.SaveDeployment(ctx, main))

		reopened, err := NewFileRepository(dir)
		require.NoError(t, err)

		got, err := reopened.GetDeployment(ctx, "31337/WeBuildWorld")
		require.NoError(t, err)
		assert.Equal(t, main.Address, got.Address)
		assert.Equal(t, models.MainDeployment, got.Type)
		assert.Equal(t, "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512", got.CurrentProvider())
		assert.Len(t, got.ProviderInfo.History, 1)

		byAddr, err := reopened.GetDeploymentByAddress(ctx, 31337, "0x5fbdb2315678afecb367f032d93f642f64180aa3")
		require.NoError(t, err)
		assert.Equal(t, got.ID, byAddr.ID)
	})

	t.Run("returned deployments are copies", func(t *testing.T) {
		repo, err := NewFileRepository(t.TempDir())
		require.NoError(t, err)

		main := newDeployment(31337, "WeBuildWorld", "", "0x5FbDB2315678afecb367f032d93F642f64180aa3", now)
		main.RecordUpgrade("0x1111111111111111111111111111111111111111", "0x01", now)
		require.NoError(t, repo.SaveDeployment(ctx, main))

		got, err := repo.GetDeployment(ctx, main.ID)
		require.NoError(t, err)
		got.RecordUpgrade("0x2222222222222222222222222222222222222222", "0x02", now)

		again, err := repo.GetDeployment(ctx, main.ID)
		require.NoError(t, err)
		assert.Len(t, again.ProviderInfo.History, 1)
	})

	t.Run("not found", func(t *testing.T) {
		repo, err := NewFileRepository(t.TempDir())
		require.NoError(t, err)

		_, err = repo.GetDeployment(ctx, "31337/Missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		_, err = repo.GetDeploymentByAddress(ctx, 1, "0x5FbDB2315678afecb367f032d93F642f64180aa3")
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		assert.True(t, errors.Is(repo.DeleteDeployment(ctx, "31337/Missing"), domain.ErrNotFound))
	})

	t.Run("rejects invalid and duplicate addresses", func(t *testing.T) {
		repo, err := NewFileRepository(t.TempDir())
		require.NoError(t, err)

		bad := newDeployment(31337, "WeBuildWorld", "", "not-an-address", now)
		assert.True(t, errors.Is(repo.SaveDeployment(ctx, bad), domain.ErrInvalidAddress))

		first := newDeployment(31337, "WeBuildWorld", "", "0x5FbDB2315678afecb367f032d93F642f64180aa3", now)
		require.NoError(t, repo.SaveDeployment(ctx, first))
		dup := newDeployment(31337, "WeBuildWorld", "v2", first.Address, now)
		assert.True(t, errors.Is(repo.SaveDeployment(ctx, dup), domain.ErrAlreadyExists))

		// Same address on another chain is a different deployment
		other := newDeployment(1, "WeBuildWorld", "", first.Address, now)
		assert.NoError(t, repo.SaveDeployment(ctx, other))
	})

	t.Run("list filters and orders newest first", func(t *testing.T) {
		repo, err := NewFileRepository(t.TempDir())
		require.NoError(t, err)

		deps := []*models.Deployment{
			newDeployment(31337, "WeBuildWorldImplementation", "", "0x1000000000000000000000000000000000000001", now),
			newDeployment(31337, "WeBuildWorld", "", "0x1000000000000000000000000000000000000002", now.Add(time.Minute)),
			newDeployment(31337, "WeBuildWorldImplementation", "v2", "0x1000000000000000000000000000000000000003", now.Add(2*time.Minute)),
			newDeployment(1, "WeBuildWorld", "", "0x1000000000000000000000000000000000000004", now),
		}
		for _, d := range deps {
			require.NoError(t, repo.SaveDeployment(ctx, d))
		}

		tests := []struct {
			name   string
			filter domain.DeploymentFilter
			want   []string
		}{
			{
				name:   "by chain",
				filter: domain.DeploymentFilter{ChainID: 31337},
				want:   []string{"31337/WeBuildWorldImplementation:v2", "31337/WeBuildWorld", "31337/WeBuildWorldImplementation"},
			},
			{
				name:   "by contract",
				filter: domain.DeploymentFilter{ChainID: 31337, ContractName: "WeBuildWorldImplementation"},
				want:   []string{"31337/WeBuildWorldImplementation:v2", "31337/WeBuildWorldImplementation"},
			},
			{
				name:   "by label",
				filter: domain.DeploymentFilter{Label: "v2"},
				want:   []string{"31337/WeBuildWorldImplementation:v2"},
			},
			{
				name:   "by type",
				filter: domain.DeploymentFilter{Type: models.MainDeployment},
				want:   []string{"31337/WeBuildWorld", "1/WeBuildWorld"},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.ListDeployments(ctx, tt.filter)
				require.NoError(t, err)
				ids := make([]string, len(got))
				for i, d := range got {
					ids[i] = d.ID
				}
				assert.Equal(t, tt.want, ids)
			})
		}
	})

	t.Run("transactions and reset", func(t *testing.T) {
		dir := t.TempDir()
		repo, err := NewFileRepository(dir)
		require.NoError(t, err)

		from := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
		require.NoError(t, repo.SaveDeployment(ctx, newDeployment(31337, "WeBuildWorld", "", "0x1000000000000000000000000000000000000002", now)))
		require.NoError(t, repo.SaveTransaction(ctx, &models.TransactionResult{
			Hash: common.HexToHash("0x02"), ChainID: 31337, Method: "addBrick", From: from, BlockNumber: 4,
		}))
		require.NoError(t, repo.SaveTransaction(ctx, &models.TransactionResult{
			Hash: common.HexToHash("0x01"), ChainID: 31337, Method: "setMain", From: from, BlockNumber: 3,
		}))
		require.NoError(t, repo.SaveTransaction(ctx, &models.TransactionResult{
			Hash: common.HexToHash("0x03"), ChainID: 1, Method: "addBrick", From: from, BlockNumber: 9,
		}))

		reopened, err := NewFileRepository(dir)
		require.NoError(t, err)

		txs, err := reopened.ListTransactions(ctx, domain.TransactionFilter{ChainID: 31337})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, "setMain", txs[0].Method)
		assert.Equal(t, "addBrick", txs[1].Method)

		adds, err := reopened.ListTransactions(ctx, domain.TransactionFilter{Method: "addBrick", From: from.Hex()})
		require.NoError(t, err)
		assert.Len(t, adds, 2)

		removed, err := reopened.Reset(ctx, 31337)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		left, err := reopened.ListTransactions(ctx, domain.TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, uint64(1), left[0].ChainID)

		_, err = reopened.GetDeployment(ctx, "31337/WeBuildWorld")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}
