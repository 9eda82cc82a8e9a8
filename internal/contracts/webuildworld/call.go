package webuildworld

import (
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/devnet/vm"
)

// decodeCall resolves the method selector and unpacks the arguments
func decodeCall(parsed abi.ABI, env *vm.Env, input []byte) (*abi.Method, []interface{}, error) {
	if len(input) < 4 {
		return nil, nil, vm.Revert("no fallback function")
	}
	method, err := parsed.MethodById(input[:4])
	if err != nil {
		return nil, nil, vm.Revert("unknown method 0x%x", input[:4])
	}
	if method.StateMutability != "payable" && env.Value != nil && env.Value.Sign() > 0 {
		return nil, nil, vm.Revert("%s is not payable", method.Name)
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, nil, vm.Revert("invalid arguments for %s", method.Name)
	}
	return method, args, nil
}

func onlyOwner(env *vm.Env, st state) error {
	owner, err := st.address(ownerKey)
	if err != nil {
		return err
	}
	if env.Caller != owner {
		return vm.Revert("caller is not the owner")
	}
	return nil
}

func emit(env *vm.Env, parsed abi.ABI, name string, topics []common.Hash, data ...interface{}) error {
	event, ok := parsed.Events[name]
	if !ok {
		return vm.Revert("unknown event %s", name)
	}
	packed, err := event.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return err
	}
	env.Host.EmitLog(env.Self, append([]common.Hash{event.ID}, topics...), packed)
	return nil
}

func idTopic(id uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(id))
}

func addressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

// toUint64 clamps a uint256 argument to uint64
func toUint64(v *big.Int) uint64 {
	if v == nil || v.Sign() < 0 {
		return 0
	}
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}

func bigIDs(ids []uint64) []*big.Int {
	out := make([]*big.Int, len(ids))
	for i, id := range ids {
		out[i] = new(big.Int).SetUint64(id)
	}
	return out
}
