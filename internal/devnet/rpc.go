package devnet

import (
	"context"
	"errors"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// callArgs are the transaction call arguments of eth_call and eth_estimateGas
type callArgs struct {
	From     *common.Address `json:"from"`
	To       *common.Address `json:"to"`
	Gas      *hexutil.Uint64 `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Value    *hexutil.Big    `json:"value"`
	Data     *hexutil.Bytes  `json:"data"`
	Input    *hexutil.Bytes  `json:"input"`
}

func (a callArgs) toMessage() ethereum.CallMsg {
	msg := ethereum.CallMsg{To: a.To}
	if a.From != nil {
		msg.From = *a.From
	}
	if a.Value != nil {
		msg.Value = a.Value.ToInt()
	}
	switch {
	case a.Input != nil:
		msg.Data = *a.Input
	case a.Data != nil:
		msg.Data = *a.Data
	}
	return msg
}

// filterCriteria is the eth_getLogs filter object
type filterCriteria struct {
	BlockHash *common.Hash     `json:"blockHash"`
	FromBlock *rpc.BlockNumber `json:"fromBlock"`
	ToBlock   *rpc.BlockNumber `json:"toBlock"`
	Addresses []common.Address `json:"address"`
	Topics    [][]common.Hash  `json:"topics"`
}

func blockArg(n *rpc.BlockNumber) *big.Int {
	if n == nil || *n < 0 {
		return nil
	}
	return big.NewInt(n.Int64())
}

// ethAPI serves the eth namespace
type ethAPI struct {
	chain *Chain
}

func (api *ethAPI) ChainId(ctx context.Context) (*hexutil.Big, error) {
	id, err := api.chain.ChainID(ctx)
	return (*hexutil.Big)(id), err
}

func (api *ethAPI) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	n, err := api.chain.BlockNumber(ctx)
	return hexutil.Uint64(n), err
}

func (api *ethAPI) GetBalance(ctx context.Context, addr common.Address, block *rpc.BlockNumber) (*hexutil.Big, error) {
	bal, err := api.chain.BalanceAt(ctx, addr, blockArg(block))
	return (*hexutil.Big)(bal), err
}

func (api *ethAPI) GetCode(ctx context.Context, addr common.Address, block *rpc.BlockNumber) (hexutil.Bytes, error) {
	return api.chain.CodeAt(ctx, addr, blockArg(block))
}

func (api *ethAPI) GetTransactionCount(ctx context.Context, addr common.Address, block *rpc.BlockNumber) (hexutil.Uint64, error) {
	n, err := api.chain.NonceAt(ctx, addr, blockArg(block))
	return hexutil.Uint64(n), err
}

func (api *ethAPI) GasPrice(ctx context.Context) (*hexutil.Big, error) {
	p, err := api.chain.SuggestGasPrice(ctx)
	return (*hexutil.Big)(p), err
}

func (api *ethAPI) MaxPriorityFeePerGas(ctx context.Context) (*hexutil.Big, error) {
	p, err := api.chain.SuggestGasTipCap(ctx)
	return (*hexutil.Big)(p), err
}

func (api *ethAPI) EstimateGas(ctx context.Context, args callArgs, block *rpc.BlockNumber) (hexutil.Uint64, error) {
	gas, err := api.chain.EstimateGas(ctx, args.toMessage())
	return hexutil.Uint64(gas), err
}

func (api *ethAPI) Call(ctx context.Context, args callArgs, block *rpc.BlockNumber) (hexutil.Bytes, error) {
	return api.chain.CallContract(ctx, args.toMessage(), blockArg(block))
}

func (api *ethAPI) SendRawTransaction(ctx context.Context, input hexutil.Bytes) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(input); err != nil {
		return common.Hash{}, err
	}
	if err := api.chain.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

// GetTransactionReceipt returns nil for unknown transactions, which clients read as pending
func (api *ethAPI) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := api.chain.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	return receipt, err
}

// GetBlockByNumber returns the block header only
func (api *ethAPI) GetBlockByNumber(ctx context.Context, number rpc.BlockNumber, fullTx bool) (*types.Header, error) {
	header, err := api.chain.HeaderByNumber(ctx, blockArg(&number))
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	return header, err
}

func (api *ethAPI) GetLogs(ctx context.Context, crit filterCriteria) ([]types.Log, error) {
	return api.chain.FilterLogs(ctx, ethereum.FilterQuery{
		BlockHash: crit.BlockHash,
		FromBlock: blockArg(crit.FromBlock),
		ToBlock:   blockArg(crit.ToBlock),
		Addresses: crit.Addresses,
		Topics:    crit.Topics,
	})
}

// netAPI serves the net namespace
type netAPI struct {
	chainID uint64
}

func (api *netAPI) Version() string {
	return strconv.FormatUint(api.chainID, 10)
}

// web3API serves the web3 namespace
type web3API struct{}

func (web3API) ClientVersion() string {
	return ClientVersion()
}

// NewRPCServer registers the JSON-RPC namespaces of chain
func NewRPCServer(chain *Chain) (*rpc.Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("eth", &ethAPI{chain: chain}); err != nil {
		return nil, err
	}
	if err := srv.RegisterName("net", &netAPI{chainID: chain.ChainConfigID()}); err != nil {
		return nil, err
	}
	if err := srv.RegisterName("web3", &web3API{}); err != nil {
		return nil, err
	}
	return srv, nil
}
