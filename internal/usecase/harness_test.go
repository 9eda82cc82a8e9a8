package usecase_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webuildworld/webuild/internal/adapters/blockchain"
	"github.com/webuildworld/webuild/internal/adapters/contracts/webuild"
	"github.com/webuildworld/webuild/internal/adapters/fs"
	"github.com/webuildworld/webuild/internal/adapters/repository/deployments"
	"github.com/webuildworld/webuild/internal/adapters/senders"
	"github.com/webuildworld/webuild/internal/domain/config"
	"github.com/webuildworld/webuild/internal/usecase"
)

// harness wires the use cases to an in-process dev chain and a file registry
type harness struct {
	cfg      *config.RuntimeConfig
	repo     *deployments.FileRepository
	client   *webuild.Binding
	accounts *senders.Service
	progress *MockProgressSink

	resolver *usecase.ResolveDeployment
	link     *usecase.LinkContracts
	deploy   *usecase.DeployContracts
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, ".webuild")
	cfg := &config.RuntimeConfig{
		ProjectRoot:    root,
		DataDir:        dataDir,
		Network:        &config.Network{Name: "devnet", ChainID: config.DefaultDevnetChainID, InProcess: true, NativeContracts: true},
		Devnet:         config.DevnetConfig{ChainID: config.DefaultDevnetChainID, DataDir: filepath.Join(dataDir, "devnet")},
		NonInteractive: true,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	connector := blockchain.NewConnector(cfg, log)
	t.Cleanup(func() { _ = connector.Close() })

	client, err := webuild.NewBinding(connector, cfg, log)
	require.NoError(t, err)
	repo, err := deployments.NewFileRepository(dataDir)
	require.NoError(t, err)
	accounts, err := senders.NewService(cfg, log)
	require.NoError(t, err)

	h := &harness{
		cfg:      cfg,
		repo:     repo,
		client:   client,
		accounts: accounts,
		progress: &MockProgressSink{},
	}
	h.resolver = usecase.NewResolveDeployment(cfg, repo, client, nil)
	h.link = usecase.NewLinkContracts(h.resolver, accounts, client, repo, repo, h.progress)
	h.deploy = usecase.NewDeployContracts(accounts, client, repo, repo, h.link, h.progress)
	return h
}

func (h *harness) addBrick() *usecase.AddBrick {
	return usecase.NewAddBrick(h.resolver, h.accounts, h.client, h.repo, h.progress)
}

func (h *harness) listBricks() *usecase.ListBricks {
	return usecase.NewListBricks(h.resolver, h.client, h.progress)
}

func (h *harness) manageWork() *usecase.ManageWork {
	return usecase.NewManageWork(h.resolver, h.accounts, h.client, h.repo, h.progress)
}

func (h *harness) compose() *usecase.ComposeBricks {
	return usecase.NewComposeBricks(
		fs.NewComposeFileLoader(h.cfg),
		fs.NewComposeStateStoreAdapter(h.cfg),
		h.resolver, h.accounts, h.client, h.repo, h.progress,
	)
}
