package deployments

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
	"github.com/webuildworld/webuild/internal/usecase"
)

const (
	DeploymentsFile  = "deployments.json"
	TransactionsFile = "transactions.json"
)

// FileRepository stores deployments and sent transactions in json files under the data dir
type FileRepository struct {
	dataDir      string
	mu           sync.RWMutex
	deployments  map[string]*models.Deployment
	transactions map[string]*models.TransactionResult
	// chainID -> lowercase address -> deployment id
	byAddress map[uint64]map[string]string
}

// NewFileRepository opens the registry in dataDir, creating the directory if needed
func NewFileRepository(dataDir string) (*FileRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dataDir, err)
	}

	m := &FileRepository{
		dataDir:      dataDir,
		deployments:  make(map[string]*models.Deployment),
		transactions: make(map[string]*models.TransactionResult),
	}
	if err := m.load(); err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return m, nil
}

// load reads all registry files
func (m *FileRepository) load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadFile(DeploymentsFile, &m.deployments); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load deployments: %w", err)
	}
	if err := m.loadFile(TransactionsFile, &m.transactions); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	m.rebuildLookups()
	return nil
}

func (m *FileRepository) loadFile(filename string, v any) error {
	data, err := os.ReadFile(filepath.Join(m.dataDir, filename))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// saveFile writes v through a temp file and an atomic rename
func (m *FileRepository) saveFile(filename string, v any) error {
	path := filepath.Join(m.dataDir, filename)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (m *FileRepository) rebuildLookups() {
	m.byAddress = make(map[uint64]map[string]string)
	for id, dep := range m.deployments {
		if m.byAddress[dep.ChainID] == nil {
			m.byAddress[dep.ChainID] = make(map[string]string)
		}
		m.byAddress[dep.ChainID][strings.ToLower(dep.Address)] = id
	}
}

// GetDeployment retrieves a deployment by ID
func (m *FileRepository) GetDeployment(ctx context.Context, id string) (*models.Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dep, exists := m.deployments[id]
	if !exists {
		return nil, fmt.Errorf("deployment %s: %w", id, domain.ErrNotFound)
	}
	return cloneDeployment(dep), nil
}

// GetDeploymentByAddress retrieves a deployment by chain ID and address
func (m *FileRepository) GetDeploymentByAddress(ctx context.Context, chainID uint64, address string) (*models.Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.byAddress[chainID][strings.ToLower(address)]
	if !exists {
		return nil, fmt.Errorf("deployment at address %s on chain %d: %w", address, chainID, domain.ErrNotFound)
	}
	return cloneDeployment(m.deployments[id]), nil
}

// ListDeployments retrieves deployments matching the filter, newest first
func (m *FileRepository) ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.Deployment
	for _, dep := range m.deployments {
		if filter.ChainID != 0 && dep.ChainID != filter.ChainID {
			continue
		}
		if filter.ContractName != "" && dep.ContractName != filter.ContractName {
			continue
		}
		if filter.Label != "" && dep.Label != filter.Label {
			continue
		}
		if filter.Type != "" && dep.Type != filter.Type {
			continue
		}
		result = append(result, cloneDeployment(dep))
	}

	slices.SortFunc(result, func(a, b *models.Deployment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

// SaveDeployment saves or updates a deployment
func (m *FileRepository) SaveDeployment(ctx context.Context, deployment *models.Deployment) error {
	if !common.IsHexAddress(deployment.Address) {
		return fmt.Errorf("deployment %s: %w: %q", deployment.ID, domain.ErrInvalidAddress, deployment.Address)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existingID, ok := m.byAddress[deployment.ChainID][strings.ToLower(deployment.Address)]; ok && existingID != deployment.ID {
		return fmt.Errorf("address %s is already recorded as %s: %w", deployment.Address, existingID, domain.ErrAlreadyExists)
	}

	m.deployments[deployment.ID] = cloneDeployment(deployment)
	m.rebuildLookups()
	return m.saveFile(DeploymentsFile, m.deployments)
}

// DeleteDeployment removes a deployment
func (m *FileRepository) DeleteDeployment(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.deployments[id]; !exists {
		return fmt.Errorf("deployment %s: %w", id, domain.ErrNotFound)
	}
	delete(m.deployments, id)
	m.rebuildLookups()
	return m.saveFile(DeploymentsFile, m.deployments)
}

// SaveTransaction records a transaction sent by webuild
func (m *FileRepository) SaveTransaction(ctx context.Context, tx *models.TransactionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *tx
	m.transactions[tx.Hash.Hex()] = &clone
	return m.saveFile(TransactionsFile, m.transactions)
}

// ListTransactions lists recorded transactions matching the filter in block order
func (m *FileRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*models.TransactionResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.TransactionResult
	for _, tx := range m.transactions {
		if filter.ChainID != 0 && tx.ChainID != filter.ChainID {
			continue
		}
		if filter.Method != "" && tx.Method != filter.Method {
			continue
		}
		if filter.From != "" && !strings.EqualFold(tx.From.Hex(), filter.From) {
			continue
		}
		clone := *tx
		result = append(result, &clone)
	}

	slices.SortFunc(result, func(a, b *models.TransactionResult) int {
		if a.ChainID != b.ChainID {
			return cmp.Compare(a.ChainID, b.ChainID)
		}
		return cmp.Compare(a.BlockNumber, b.BlockNumber)
	})
	return result, nil
}

// Reset drops every deployment and transaction recorded for chainID
func (m *FileRepository) Reset(ctx context.Context, chainID uint64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, dep := range m.deployments {
		if dep.ChainID == chainID {
			delete(m.deployments, id)
			removed++
		}
	}
	for hash, tx := range m.transactions {
		if tx.ChainID == chainID {
			delete(m.transactions, hash)
		}
	}
	m.rebuildLookups()

	if err := m.saveFile(DeploymentsFile, m.deployments); err != nil {
		return 0, err
	}
	return removed, m.saveFile(TransactionsFile, m.transactions)
}

func cloneDeployment(dep *models.Deployment) *models.Deployment {
	clone := *dep
	if dep.ProviderInfo != nil {
		info := *dep.ProviderInfo
		info.History = slices.Clone(dep.ProviderInfo.History)
		clone.ProviderInfo = &info
	}
	return &clone
}

// Ensure the repository implements the interfaces
var (
	_ usecase.DeploymentRepository  = (*FileRepository)(nil)
	_ usecase.TransactionRepository = (*FileRepository)(nil)
)
