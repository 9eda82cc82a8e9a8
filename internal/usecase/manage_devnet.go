package usecase

import (
	"context"
	"fmt"
	"net"

	"github.com/webuildworld/webuild/internal/domain/config"
)

// ManageDevnet serves and resets the bundled dev chain
type ManageDevnet struct {
	config   *config.RuntimeConfig
	node     DevnetNode
	repo     DeploymentRepository
	progress ProgressSink
}

// NewManageDevnet creates a new devnet management use case
func NewManageDevnet(cfg *config.RuntimeConfig, node DevnetNode, repo DeploymentRepository, progress ProgressSink) *ManageDevnet {
	return &ManageDevnet{
		config:   cfg,
		node:     node,
		repo:     repo,
		progress: progress,
	}
}

// ServeDevnetParams contains parameters for serving the dev chain
type ServeDevnetParams struct {
	// Listen overrides the configured listen address
	Listen string
	// OnListening is called with the bound address once the listener is open
	OnListening func(addr string)
}

// ResetDevnetResult contains the result of a reset
type ResetDevnetResult struct {
	DataDir            string
	ChainID            uint64
	DeploymentsRemoved int
}

// Serve runs the dev chain JSON-RPC server until ctx is cancelled
func (m *ManageDevnet) Serve(ctx context.Context, params ServeDevnetParams) error {
	addr := params.Listen
	if addr == "" {
		addr = m.config.Devnet.Listen
	}
	if addr == "" {
		addr = config.DefaultDevnetListen
	}

	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	m.progress.Info(fmt.Sprintf("Starting dev chain %d from %s", m.config.Devnet.ChainID, m.node.DataDir()))
	if params.OnListening != nil {
		params.OnListening(l.Addr().String())
	}
	return m.node.Serve(ctx, l)
}

// Reset wipes the dev chain and the deployments recorded for it
func (m *ManageDevnet) Reset(ctx context.Context) (*ResetDevnetResult, error) {
	m.progress.Info(fmt.Sprintf("Resetting dev chain at %s", m.node.DataDir()))
	if err := m.node.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset dev chain: %w", err)
	}
	removed, err := m.repo.Reset(ctx, m.config.Devnet.ChainID)
	if err != nil {
		return nil, fmt.Errorf("failed to reset deployments: %w", err)
	}
	return &ResetDevnetResult{
		DataDir:            m.node.DataDir(),
		ChainID:            m.config.Devnet.ChainID,
		DeploymentsRemoved: removed,
	}, nil
}
