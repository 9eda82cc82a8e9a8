package devnet

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webuildworld/webuild/internal/contracts/webuildworld"
	"github.com/webuildworld/webuild/internal/devnet/vm"
)

func newTestServer(t *testing.T) (*testChain, *httptest.Server) {
	t.Helper()
	c := newTestChain(t)
	srv, err := NewServer(c.Chain, DefaultHTTPConfig(), c.registry, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.CloseClientConnections()
		ts.Close()
	})
	return c, ts
}

func dial(t *testing.T, url string) *ethclient.Client {
	t.Helper()
	client, err := ethclient.Dial(url)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestServer_Health(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, uint64(31337), body.ChainID)
}

func TestServer_Metrics(t *testing.T) {
	c, ts := newTestServer(t)
	keys := devKeys(t)
	to := keys[1].addr
	c.send(keys[0], &to, big.NewInt(1), nil)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(raw), "devnet_block_height 1")
	assert.Contains(t, string(raw), `devnet_transactions_total{status="success"} 1`)
}

func TestServer_CORS(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_EthClient(t *testing.T) {
	_, ts := newTestServer(t)
	client := dial(t, ts.URL)
	ctx := context.Background()
	keys := devKeys(t)

	id, err := client.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(31337), id)

	bal, err := client.BalanceAt(ctx, keys[0].addr, nil)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(10_000), big.NewInt(params.Ether)), bal)

	// deploy over raw transactions
	nonce, err := client.PendingNonceAt(ctx, keys[0].addr)
	require.NoError(t, err)
	initCode := vm.InitCode(webuildworld.MainName)
	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{From: keys[0].addr, Data: initCode})
	require.NoError(t, err)
	price, err := client.SuggestGasPrice(ctx)
	require.NoError(t, err)

	tx, err := types.SignTx(
		types.NewContractCreation(nonce, new(big.Int), gas, price, initCode),
		types.LatestSignerForChainID(id),
		keys[0].key,
	)
	require.NoError(t, err)
	require.NoError(t, client.SendTransaction(ctx, tx))

	receipt, err := client.TransactionReceipt(ctx, tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	mainAddr := receipt.ContractAddress

	header, err := client.HeaderByNumber(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), header.Number.Uint64())
	assert.Equal(t, receipt.BlockHash, header.Hash())

	code, err := client.CodeAt(ctx, mainAddr, nil)
	require.NoError(t, err)
	assert.Equal(t, initCode, code)

	t.Run("revert carries reason and data", func(t *testing.T) {
		data, err := webuildworld.ParsedMainABI().Pack("getBrickCount")
		require.NoError(t, err)
		_, err = client.CallContract(ctx, ethereum.CallMsg{To: &mainAddr, Data: data}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "execution reverted: provider not set")

		var dataErr rpc.DataError
		require.True(t, errors.As(err, &dataErr))
		hexData, ok := dataErr.ErrorData().(string)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(hexData, "0x08c379a0"))
	})

	t.Run("unknown receipt", func(t *testing.T) {
		_, err := client.TransactionReceipt(ctx, types.EmptyTxsHash)
		assert.ErrorIs(t, err, ethereum.NotFound)
	})

	t.Run("logs over rpc", func(t *testing.T) {
		logs, err := client.FilterLogs(ctx, ethereum.FilterQuery{})
		require.NoError(t, err)
		assert.Empty(t, logs)
	})
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	c := newTestChain(t)
	srv, err := NewServer(c.Chain, DefaultHTTPConfig(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, l) }()

	client := dial(t, "http://"+l.Addr().String())
	n, err := client.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	client.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
