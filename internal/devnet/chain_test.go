package devnet

import (
	"context"
	"crypto/ecdsa"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/webuildworld/webuild/internal/contracts/webuildworld"
	"github.com/webuildworld/webuild/internal/devnet/kv"
	"github.com/webuildworld/webuild/internal/devnet/vm"
	domainconfig "github.com/webuildworld/webuild/internal/domain/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// keep-alive connections of http.DefaultTransport used by ethclient
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
		// started at init by glog, pulled in through badger's ristretto cache
		goleak.IgnoreTopFunction("github.com/golang/glog.(*fileSink).flushDaemon"),
	)
}

type devKey struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

func devKeys(t *testing.T) []devKey {
	t.Helper()
	keys := make([]devKey, len(domainconfig.DevAccounts))
	for i, acct := range domainconfig.DevAccounts {
		key, err := crypto.HexToECDSA(acct.PrivateKey)
		require.NoError(t, err)
		keys[i] = devKey{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
	}
	return keys
}

type testChain struct {
	*Chain
	t        *testing.T
	registry *prometheus.Registry
	nonces   map[common.Address]uint64
}

func newTestChain(t *testing.T) *testChain {
	t.Helper()
	reg := prometheus.NewRegistry()
	clock := time.Unix(1_700_000_000, 0)
	chain, err := New(kv.NewMemoryStore(), Config{
		Contracts:  webuildworld.Contracts(),
		Registerer: reg,
		Clock: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return &testChain{Chain: chain, t: t, registry: reg, nonces: make(map[common.Address]uint64)}
}

func (c *testChain) sign(from devKey, to *common.Address, value *big.Int, gas uint64, data []byte) *types.Transaction {
	c.t.Helper()
	if value == nil {
		value = new(big.Int)
	}
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    c.nonces[from.addr],
		To:       to,
		Value:    value,
		Gas:      gas,
		GasPrice: big.NewInt(params.GWei),
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(domainconfig.DefaultDevnetChainID)), from.key)
	require.NoError(c.t, err)
	return signed
}

// send signs, submits and returns the receipt of a transaction with estimated gas
func (c *testChain) send(from devKey, to *common.Address, value *big.Int, data []byte) *types.Receipt {
	c.t.Helper()
	ctx := context.Background()
	gas, err := c.EstimateGas(ctx, ethereum.CallMsg{From: from.addr, To: to, Value: value, Data: data})
	if err != nil {
		// reverting messages still mine with the flat charge
		gas, err = c.requiredGas(c.store, to, data)
		require.NoError(c.t, err)
	}
	tx := c.sign(from, to, value, gas, data)
	require.NoError(c.t, c.SendTransaction(ctx, tx))
	c.nonces[from.addr]++

	receipt, err := c.TransactionReceipt(ctx, tx.Hash())
	require.NoError(c.t, err)
	return receipt
}

func (c *testChain) deploy(from devKey, name string) common.Address {
	c.t.Helper()
	receipt := c.send(from, nil, nil, vm.InitCode(name))
	require.Equal(c.t, types.ReceiptStatusSuccessful, receipt.Status)
	return receipt.ContractAddress
}

func (c *testChain) deployLinked(owner devKey) (mainAddr, implAddr common.Address) {
	c.t.Helper()
	implAddr = c.deploy(owner, webuildworld.ImplementationName)
	mainAddr = c.deploy(owner, webuildworld.MainName)

	data, err := webuildworld.ParsedImplementationABI().Pack("setMain", mainAddr)
	require.NoError(c.t, err)
	require.Equal(c.t, types.ReceiptStatusSuccessful, c.send(owner, &implAddr, nil, data).Status)

	data, err = webuildworld.ParsedMainABI().Pack("upgradeProvider", implAddr)
	require.NoError(c.t, err)
	require.Equal(c.t, types.ReceiptStatusSuccessful, c.send(owner, &mainAddr, nil, data).Status)
	return mainAddr, implAddr
}

func addBrickData(t *testing.T, title string, tags ...string) []byte {
	t.Helper()
	raw := make([][32]byte, len(tags))
	for i, s := range tags {
		copy(raw[i][:], s)
	}
	data, err := webuildworld.ParsedMainABI().Pack("addBrick", title, "https://example.com", big.NewInt(1_700_000_000), "Test", raw)
	require.NoError(t, err)
	return data
}

func TestGenesis(t *testing.T) {
	c := newTestChain(t)
	ctx := context.Background()
	keys := devKeys(t)

	id, err := c.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(31337), id.Uint64())

	head, err := c.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Zero(t, head)

	for _, k := range keys {
		bal, err := c.BalanceAt(ctx, k.addr, nil)
		require.NoError(t, err)
		assert.Equal(t, new(big.Int).Mul(big.NewInt(10_000), big.NewInt(params.Ether)), bal)
	}

	header, err := c.HeaderByNumber(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, header.BaseFee)

	_, err = c.HeaderByNumber(ctx, big.NewInt(5))
	assert.ErrorIs(t, err, ethereum.NotFound)
}

func TestReopenKeepsState(t *testing.T) {
	store := kv.NewMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	keys := devKeys(t)

	c, err := New(store, Config{Contracts: webuildworld.Contracts()}, log)
	require.NoError(t, err)
	tc := &testChain{Chain: c, t: t, nonces: map[common.Address]uint64{}}
	to := keys[1].addr
	tc.send(keys[0], &to, big.NewInt(params.Ether), nil)

	// genesis is not rewritten over existing state
	c2, err := New(store, Config{Contracts: webuildworld.Contracts(), Alloc: map[common.Address]*big.Int{}}, log)
	require.NoError(t, err)
	bal, err := c2.BalanceAt(context.Background(), to, nil)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(10_001), big.NewInt(params.Ether)), bal)
}

func TestValueTransferAndFees(t *testing.T) {
	c := newTestChain(t)
	ctx := context.Background()
	keys := devKeys(t)
	to := keys[1].addr

	before, _ := c.BalanceAt(ctx, keys[0].addr, nil)
	receipt := c.send(keys[0], &to, big.NewInt(params.Ether), nil)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	assert.Equal(t, uint64(txGas), receipt.GasUsed)
	assert.Equal(t, uint64(1), receipt.BlockNumber.Uint64())

	after, _ := c.BalanceAt(ctx, keys[0].addr, nil)
	spent := new(big.Int).Sub(before, after)
	fee := new(big.Int).Mul(big.NewInt(txGas), big.NewInt(params.GWei))
	assert.Equal(t, new(big.Int).Add(big.NewInt(params.Ether), fee), spent)

	nonce, _ := c.PendingNonceAt(ctx, keys[0].addr)
	assert.Equal(t, uint64(1), nonce)
}

func TestTransactionRejections(t *testing.T) {
	c := newTestChain(t)
	ctx := context.Background()
	keys := devKeys(t)
	to := keys[1].addr

	t.Run("nonce too high", func(t *testing.T) {
		c.nonces[keys[0].addr] = 5
		defer delete(c.nonces, keys[0].addr)
		err := c.SendTransaction(ctx, c.sign(keys[0], &to, nil, txGas, nil))
		assert.ErrorIs(t, err, ErrNonceTooHigh)
	})

	t.Run("intrinsic gas", func(t *testing.T) {
		err := c.SendTransaction(ctx, c.sign(keys[0], &to, nil, 20_000, nil))
		assert.ErrorIs(t, err, ErrIntrinsicGas)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		huge := new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(params.Ether))
		err := c.SendTransaction(ctx, c.sign(keys[0], &to, huge, txGas, nil))
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})

	t.Run("wrong chain id", func(t *testing.T) {
		tx := types.NewTx(&types.LegacyTx{To: &to, Gas: txGas, GasPrice: big.NewInt(params.GWei), Value: new(big.Int)})
		signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(1)), keys[0].key)
		require.NoError(t, err)
		assert.Error(t, c.SendTransaction(ctx, signed))
	})

	t.Run("replay", func(t *testing.T) {
		tx := c.sign(keys[0], &to, nil, txGas, nil)
		require.NoError(t, c.SendTransaction(ctx, tx))
		c.nonces[keys[0].addr]++
		assert.ErrorIs(t, c.SendTransaction(ctx, tx), ErrAlreadyKnown)
	})

	head, _ := c.BlockNumber(ctx)
	assert.Equal(t, uint64(1), head)
	assert.Equal(t, float64(5), testutil.ToFloat64(c.metrics.rejected))
}

func TestRegistryLifecycle(t *testing.T) {
	c := newTestChain(t)
	ctx := context.Background()
	keys := devKeys(t)
	owner, builder := keys[0], keys[1]
	mainABI := webuildworld.ParsedMainABI()

	mainAddr, implAddr := c.deployLinked(owner)
	code, err := c.CodeAt(ctx, mainAddr, nil)
	require.NoError(t, err)
	assert.Equal(t, vm.InitCode(webuildworld.MainName), code)

	receipt := c.send(owner, &mainAddr, big.NewInt(params.Ether), addBrickData(t, "Test", "mock", "test"))
	require.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	require.Len(t, receipt.Logs, 1)
	assert.Equal(t, mainAddr, receipt.Logs[0].Address)
	assert.Equal(t, mainABI.Events["BrickAdded"].ID, receipt.Logs[0].Topics[0])
	assert.Equal(t, receipt.BlockHash, receipt.Logs[0].BlockHash)
	assert.True(t, types.BloomLookup(receipt.Bloom, mainAddr))
	assert.True(t, types.BloomLookup(receipt.Bloom, mainABI.Events["BrickAdded"].ID))
	assert.False(t, types.BloomLookup(receipt.Bloom, implAddr))

	header, err := c.HeaderByNumber(ctx, receipt.BlockNumber)
	require.NoError(t, err)
	assert.Equal(t, receipt.Bloom, header.Bloom)
	assert.Equal(t, receipt.BlockHash, header.Hash())

	bal, _ := c.BalanceAt(ctx, mainAddr, nil)
	assert.Equal(t, big.NewInt(params.Ether), bal)

	t.Run("query through main", func(t *testing.T) {
		data, err := mainABI.Pack("getBrickIdsByOwner", owner.addr)
		require.NoError(t, err)
		out, err := c.CallContract(ctx, ethereum.CallMsg{From: builder.addr, To: &mainAddr, Data: data}, nil)
		require.NoError(t, err)
		values, err := mainABI.Unpack("getBrickIdsByOwner", out)
		require.NoError(t, err)
		assert.Equal(t, []*big.Int{big.NewInt(1)}, values[0])
	})

	t.Run("direct implementation call reverts", func(t *testing.T) {
		data, err := mainABI.Pack("getBrickCount")
		require.NoError(t, err)
		_, err = c.CallContract(ctx, ethereum.CallMsg{To: &implAddr, Data: data}, nil)
		reason, ok := vm.IsRevert(err)
		require.True(t, ok)
		assert.Equal(t, "only callable through main", reason)
	})

	t.Run("reverted transaction charges fee and advances nonce", func(t *testing.T) {
		nonce, _ := c.PendingNonceAt(ctx, owner.addr)
		before, _ := c.BalanceAt(ctx, owner.addr, nil)

		_, err := c.EstimateGas(ctx, ethereum.CallMsg{From: owner.addr, To: &mainAddr, Value: new(big.Int), Data: addBrickData(t, "Free")})
		require.Error(t, err)

		receipt := c.send(owner, &mainAddr, nil, addBrickData(t, "Free"))
		assert.Equal(t, types.ReceiptStatusFailed, receipt.Status)
		assert.Empty(t, receipt.Logs)

		after, _ := c.BalanceAt(ctx, owner.addr, nil)
		fee := new(big.Int).Mul(new(big.Int).SetUint64(receipt.GasUsed), big.NewInt(params.GWei))
		assert.Equal(t, fee, new(big.Int).Sub(before, after))

		next, _ := c.PendingNonceAt(ctx, owner.addr)
		assert.Equal(t, nonce+1, next)

		data, _ := mainABI.Pack("getBrickCount")
		out, err := c.CallContract(ctx, ethereum.CallMsg{To: &mainAddr, Data: data}, nil)
		require.NoError(t, err)
		values, _ := mainABI.Unpack("getBrickCount", out)
		assert.Equal(t, big.NewInt(1), values[0])
	})

	t.Run("filter logs", func(t *testing.T) {
		logs, err := c.FilterLogs(ctx, ethereum.FilterQuery{
			Addresses: []common.Address{mainAddr},
			Topics:    [][]common.Hash{{mainABI.Events["BrickAdded"].ID}},
		})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, common.BytesToHash(owner.addr.Bytes()), logs[0].Topics[2])

		logs, err = c.FilterLogs(ctx, ethereum.FilterQuery{BlockHash: &receipt.BlockHash})
		require.NoError(t, err)
		assert.Len(t, logs, 1)

		// blocks 1-2 are deployments, block 3 is setMain
		logs, err = c.FilterLogs(ctx, ethereum.FilterQuery{FromBlock: big.NewInt(0), ToBlock: big.NewInt(3)})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, webuildworld.ParsedImplementationABI().Events["MainUpdated"].ID, logs[0].Topics[0])
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.transactions.WithLabelValues("failed")))
}

func TestUnsupportedInitCode(t *testing.T) {
	c := newTestChain(t)
	keys := devKeys(t)

	receipt := c.send(keys[0], nil, nil, []byte{0x60, 0x80, 0x60, 0x40})
	assert.Equal(t, types.ReceiptStatusFailed, receipt.Status)
	assert.Equal(t, common.Address{}, receipt.ContractAddress)
}

func TestSubscribeFilterLogs(t *testing.T) {
	c := newTestChain(t)
	keys := devKeys(t)
	mainAddr, _ := c.deployLinked(keys[0])

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logs := make(chan types.Log, 4)
	sub, err := c.SubscribeFilterLogs(ctx, ethereum.FilterQuery{Addresses: []common.Address{mainAddr}}, logs)
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.subscriptions))

	c.send(keys[1], &mainAddr, big.NewInt(params.GWei), addBrickData(t, "Live", "stream"))

	select {
	case l := <-logs:
		assert.Equal(t, mainAddr, l.Address)
		assert.Equal(t, common.BigToHash(big.NewInt(1)), l.Topics[1])
	case <-time.After(5 * time.Second):
		t.Fatal("no log delivered")
	}

	sub.Unsubscribe()
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(c.metrics.subscriptions) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestMatchLog(t *testing.T) {
	a := common.HexToAddress("0x01")
	t1 := common.HexToHash("0x11")
	t2 := common.HexToHash("0x22")
	l := &types.Log{Address: a, Topics: []common.Hash{t1, t2}}

	assert.True(t, matchLog(ethereum.FilterQuery{}, l))
	assert.True(t, matchLog(ethereum.FilterQuery{Addresses: []common.Address{a}}, l))
	assert.False(t, matchLog(ethereum.FilterQuery{Addresses: []common.Address{common.HexToAddress("0x02")}}, l))
	assert.True(t, matchLog(ethereum.FilterQuery{Topics: [][]common.Hash{nil, {t2}}}, l))
	assert.True(t, matchLog(ethereum.FilterQuery{Topics: [][]common.Hash{{t2, t1}}}, l))
	assert.False(t, matchLog(ethereum.FilterQuery{Topics: [][]common.Hash{{t2}}}, l))
	assert.False(t, matchLog(ethereum.FilterQuery{Topics: [][]common.Hash{nil, nil, nil}}, l))
}
