package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/config"
	"github.com/webuildworld/webuild/internal/domain/models"
	"github.com/webuildworld/webuild/internal/usecase"
)

// MockDeploymentRepository is a mock implementation of DeploymentRepository
type MockDeploymentRepository struct {
	mock.Mock
}

func (m *MockDeploymentRepository) GetDeployment(ctx context.Context, id string) (*models.Deployment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deployment), args.Error(1)
}

func (m *MockDeploymentRepository) GetDeploymentByAddress(ctx context.Context, chainID uint64, address string) (*models.Deployment, error) {
	args := m.Called(ctx, chainID, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deployment), args.Error(1)
}

func (m *MockDeploymentRepository) ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Deployment), args.Error(1)
}

func (m *MockDeploymentRepository) SaveDeployment(ctx context.Context, deployment *models.Deployment) error {
	args := m.Called(ctx, deployment)
	return args.Error(0)
}

func (m *MockDeploymentRepository) DeleteDeployment(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDeploymentRepository) Reset(ctx context.Context, chainID uint64) (int, error) {
	args := m.Called(ctx, chainID)
	return args.Int(0), args.Error(1)
}

// MockChecker is a mock implementation of BlockchainChecker
type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) CheckDeploymentExists(ctx context.Context, address common.Address) (bool, string, error) {
	args := m.Called(ctx, address)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *MockChecker) CheckTransactionExists(ctx context.Context, txHash common.Hash) (bool, uint64, string, error) {
	args := m.Called(ctx, txHash)
	return args.Bool(0), args.Get(1).(uint64), args.String(2), args.Error(3)
}

// MockProgressSink records progress events
type MockProgressSink struct {
	events []usecase.ProgressEvent
	infos  []string
	errors []string
}

func (m *MockProgressSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	m.events = append(m.events, event)
}

func (m *MockProgressSink) Info(message string)  { m.infos = append(m.infos, message) }
func (m *MockProgressSink) Error(message string) { m.errors = append(m.errors, message) }

func devnetConfig() *config.RuntimeConfig {
	return &config.RuntimeConfig{
		Network: &config.Network{Name: "devnet", ChainID: 31337, InProcess: true, NativeContracts: true},
	}
}

func TestListDeployments(t *testing.T) {
	ctx := context.Background()
	cfg := devnetConfig()

	t.Run("list all deployments", func(t *testing.T) {
		deployments := []*models.Deployment{
			{
				ID:           "31337/WeBuildWorldImplementation",
				ChainID:      31337,
				ContractName: "WeBuildWorldImplementation",
				Address:      "0x1111111111111111111111111111111111111111",
				Type:         models.ImplementationDeployment,
				CreatedAt:    time.Now(),
			},
			{
				ID:           "31337/WeBuildWorld",
				ChainID:      31337,
				ContractName: "WeBuildWorld",
				Address:      "0x2222222222222222222222222222222222222222",
				Type:         models.MainDeployment,
				CreatedAt:    time.Now(),
			},
			{
				ID:           "31337/WeBuildWorldImplementation:v2",
				ChainID:      31337,
				ContractName: "WeBuildWorldImplementation",
				Label:        "v2",
				Address:      "0x3333333333333333333333333333333333333333",
				Type:         models.ImplementationDeployment,
				CreatedAt:    time.Now(),
			},
		}

		repo := new(MockDeploymentRepository)
		repo.On("ListDeployments", ctx, domain.DeploymentFilter{ChainID: 31337}).Return(deployments, nil)
		progress := &MockProgressSink{}

		uc := usecase.NewListDeployments(cfg, repo, nil, progress)
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{})

		require.NoError(t, err)
		assert.Equal(t, uint64(31337), result.ChainID)
		assert.Len(t, result.Deployments, 3)
		assert.Equal(t, 3, result.Summary.Total)
		assert.Equal(t, 1, result.Summary.ByType[models.MainDeployment])
		assert.Equal(t, 2, result.Summary.ByType[models.ImplementationDeployment])
		assert.Zero(t, result.Summary.Missing)

		assert.Len(t, progress.events, 2)
		assert.Equal(t, "loading", progress.events[0].Stage)
		assert.Equal(t, "complete", progress.events[1].Stage)

		// Sorted by contract name, then label
		assert.Equal(t, "31337/WeBuildWorld", result.Deployments[0].Deployment.ID)
		assert.Equal(t, "31337/WeBuildWorldImplementation", result.Deployments[1].Deployment.ID)
		assert.Equal(t, "31337/WeBuildWorldImplementation:v2", result.Deployments[2].Deployment.ID)
		for _, s := range result.Deployments {
			assert.False(t, s.Checked)
		}

		repo.AssertExpectations(t)
	})

	t.Run("list with filters", func(t *testing.T) {
		repo := new(MockDeploymentRepository)
		expected := domain.DeploymentFilter{
			ChainID:      31337,
			ContractName: "WeBuildWorldImplementation",
			Label:        "v2",
			Type:         models.ImplementationDeployment,
		}
		repo.On("ListDeployments", ctx, expected).Return([]*models.Deployment{
			{ID: "31337/WeBuildWorldImplementation:v2", ChainID: 31337, Type: models.ImplementationDeployment},
		}, nil)

		uc := usecase.NewListDeployments(cfg, repo, nil, &MockProgressSink{})
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{
			ContractName: "WeBuildWorldImplementation",
			Label:        "v2",
			Type:         models.ImplementationDeployment,
		})

		require.NoError(t, err)
		assert.Len(t, result.Deployments, 1)
		repo.AssertExpectations(t)
	})

	t.Run("verify marks missing code", func(t *testing.T) {
		live := common.HexToAddress("0x1111111111111111111111111111111111111111")
		gone := common.HexToAddress("0x2222222222222222222222222222222222222222")

		repo := new(MockDeploymentRepository)
		repo.On("ListDeployments", ctx, domain.DeploymentFilter{ChainID: 31337}).Return([]*models.Deployment{
			{ID: "31337/WeBuildWorld", ContractName: "WeBuildWorld", Address: live.Hex(), Type: models.MainDeployment},
			{ID: "31337/WeBuildWorld:old", ContractName: "WeBuildWorld", Label: "old", Address: gone.Hex(), Type: models.MainDeployment},
		}, nil)
		checker := new(MockChecker)
		checker.On("CheckDeploymentExists", ctx, live).Return(true, "", nil)
		checker.On("CheckDeploymentExists", ctx, gone).Return(false, "no code at address", nil)
		progress := &MockProgressSink{}

		uc := usecase.NewListDeployments(cfg, repo, checker, progress)
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{Verify: true})

		require.NoError(t, err)
		require.Len(t, result.Deployments, 2)
		assert.True(t, result.Deployments[0].Exists)
		assert.False(t, result.Deployments[1].Exists)
		assert.Equal(t, "no code at address", result.Deployments[1].Reason)
		assert.Equal(t, 1, result.Summary.Missing)
		assert.Len(t, progress.events, 4)

		repo.AssertExpectations(t)
		checker.AssertExpectations(t)
	})

	t.Run("empty result", func(t *testing.T) {
		repo := new(MockDeploymentRepository)
		repo.On("ListDeployments", ctx, domain.DeploymentFilter{ChainID: 31337}).Return([]*models.Deployment{}, nil)

		uc := usecase.NewListDeployments(cfg, repo, nil, &MockProgressSink{})
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{})

		require.NoError(t, err)
		assert.Empty(t, result.Deployments)
		assert.Equal(t, 0, result.Summary.Total)
		assert.Empty(t, result.Summary.ByType)
		repo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(MockDeploymentRepository)
		expectedErr := errors.New("store error")
		repo.On("ListDeployments", ctx, domain.DeploymentFilter{ChainID: 31337}).Return(nil, expectedErr)
		progress := &MockProgressSink{}

		uc := usecase.NewListDeployments(cfg, repo, nil, progress)
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{})

		assert.Equal(t, expectedErr, err)
		assert.Nil(t, result)

		// Loading event but no complete event
		assert.Len(t, progress.events, 1)
		assert.Equal(t, "loading", progress.events[0].Stage)
		repo.AssertExpectations(t)
	})
}
