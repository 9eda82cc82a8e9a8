package devnode

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/webuildworld/webuild/internal/adapters/blockchain"
	"github.com/webuildworld/webuild/internal/devnet"
	"github.com/webuildworld/webuild/internal/devnet/kv"
	"github.com/webuildworld/webuild/internal/domain/config"
	"github.com/webuildworld/webuild/internal/usecase"
)

// Node runs the bundled dev chain on the configured data dir
type Node struct {
	cfg       *config.RuntimeConfig
	connector *blockchain.Connector
	log       *slog.Logger
}

// NewNode creates a dev chain node adapter
func NewNode(cfg *config.RuntimeConfig, connector *blockchain.Connector, log *slog.Logger) *Node {
	return &Node{
		cfg:       cfg,
		connector: connector,
		log:       log.With("component", "DevNode"),
	}
}

// DataDir returns the badger directory of the dev chain
func (n *Node) DataDir() string {
	return n.cfg.Devnet.DataDir
}

// Serve opens the chain with metrics and serves JSON-RPC on l until ctx is cancelled
func (n *Node) Serve(ctx context.Context, l net.Listener) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	chain, err := n.connector.Devnet(registry)
	if err != nil {
		_ = l.Close()
		return err
	}
	defer func() {
		if err := n.connector.Close(); err != nil {
			n.log.Warn("failed to close dev chain", "error", err)
		}
	}()

	httpCfg := devnet.DefaultHTTPConfig()
	if len(n.cfg.Devnet.CORSOrigins) > 0 {
		httpCfg.AllowedOrigins = n.cfg.Devnet.CORSOrigins
	}
	if n.cfg.Timeout > 0 && n.cfg.Timeout < httpCfg.ShutdownTimeout {
		httpCfg.ShutdownTimeout = n.cfg.Timeout
	}

	srv, err := devnet.NewServer(chain, httpCfg, registry, n.log)
	if err != nil {
		_ = l.Close()
		return fmt.Errorf("failed to create RPC server: %w", err)
	}
	return srv.Serve(ctx, l)
}

// Reset deletes the chain data. It fails while another process serves the chain.
func (n *Node) Reset(ctx context.Context) error {
	dir := n.cfg.Devnet.DataDir
	if dir == "" {
		return nil
	}
	if err := n.connector.Close(); err != nil {
		return err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	// Opening takes the directory lock, so a served chain is detected here
	store, err := kv.OpenBadger(dir, n.log)
	if err != nil {
		return fmt.Errorf("dev chain at %s is in use (stop `webuild devnet serve` first): %w", dir, err)
	}
	if err := store.Close(); err != nil {
		return err
	}

	start := time.Now()
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	n.log.Debug("removed dev chain data", "dir", dir, "took", time.Since(start))
	return nil
}

// Ensure Node implements DevnetNode
var _ usecase.DevnetNode = (*Node)(nil)
