package webuildworld

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/devnet/vm"
)

// Main is the WeBuildWorld contract. It holds the brick storage and balance and
// delegates brick methods to the current provider.
type Main struct{}

var (
	_ vm.Contract    = Main{}
	_ vm.Constructor = Main{}
)

func (Main) Name() string {
	return MainName
}

func (Main) Construct(env *vm.Env, _ []byte) error {
	return state{s: env.SelfStorage()}.setAddress(ownerKey, env.Caller)
}

func (Main) Run(env *vm.Env, input []byte) ([]byte, error) {
	method, args, err := decodeCall(mainABI, env, input)
	if err != nil {
		return nil, err
	}
	st := state{s: env.SelfStorage()}

	switch method.Name {
	case "owner":
		owner, err := st.address(ownerKey)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(owner)
	case "getProvider":
		provider, err := st.address(providerKey)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(provider)
	case "upgradeProvider":
		return nil, upgradeProvider(env, st, args[0].(common.Address))
	}

	provider, err := st.address(providerKey)
	if err != nil {
		return nil, err
	}
	if provider == (common.Address{}) {
		return nil, vm.Revert("provider not set")
	}
	return env.Host.DelegateCall(env, provider, input)
}

func upgradeProvider(env *vm.Env, st state, provider common.Address) error {
	if err := onlyOwner(env, st); err != nil {
		return err
	}
	name, err := env.Host.ContractName(provider)
	if err != nil {
		return err
	}
	if name != ImplementationName {
		return vm.Revert("provider is not a %s", ImplementationName)
	}
	previous, err := st.address(providerKey)
	if err != nil {
		return err
	}
	if err := st.setAddress(providerKey, provider); err != nil {
		return err
	}
	return emit(env, mainABI, "ProviderUpgraded", []common.Hash{addressTopic(previous), addressTopic(provider)})
}
