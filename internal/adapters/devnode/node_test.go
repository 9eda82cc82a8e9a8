package devnode

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webuildworld/webuild/internal/adapters/blockchain"
	"github.com/webuildworld/webuild/internal/domain/config"
)

func testNode(t *testing.T) (*Node, *config.RuntimeConfig) {
	t.Helper()
	cfg := &config.RuntimeConfig{
		Devnet: config.DevnetConfig{
			ChainID: 1337,
			DataDir: filepath.Join(t.TempDir(), "devnet"),
		},
		Network: &config.Network{Name: "devnet", ChainID: 1337, InProcess: true, NativeContracts: true},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewNode(cfg, blockchain.NewConnector(cfg, log), log), cfg
}

func TestNode_ServeAndReset(t *testing.T) {
	node, cfg := testNode(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	url := "http://" + l.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- node.Serve(ctx, l) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	client, err := ethclient.Dial(url)
	require.NoError(t, err)
	chainID, err := client.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1337), chainID.Uint64())
	client.Close()

	resp, err := http.Get(url + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "go_goroutines")

	// The served chain holds the data dir lock
	other, _ := testNode(t)
	other.cfg.Devnet.DataDir = cfg.Devnet.DataDir
	assert.ErrorContains(t, other.Reset(context.Background()), "in use")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}

	require.NoError(t, node.Reset(context.Background()))
	_, err = os.Stat(cfg.Devnet.DataDir)
	assert.True(t, os.IsNotExist(err))
}

func TestNode_ResetMissingDir(t *testing.T) {
	node, _ := testNode(t)
	assert.NoError(t, node.Reset(context.Background()))
}
