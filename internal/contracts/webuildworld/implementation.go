package webuildworld

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/webuildworld/webuild/internal/devnet/vm"
)

// Implementation is the WeBuildWorldImplementation provider. Brick methods only run
// under delegate call from the main contract registered with setMain.
type Implementation struct{}

var (
	_ vm.Contract    = Implementation{}
	_ vm.Constructor = Implementation{}
)

func (Implementation) Name() string {
	return ImplementationName
}

func (Implementation) Construct(env *vm.Env, _ []byte) error {
	return state{s: env.SelfStorage()}.setAddress(ownerKey, env.Caller)
}

func (Implementation) Run(env *vm.Env, input []byte) ([]byte, error) {
	method, args, err := decodeCall(implementationABI, env, input)
	if err != nil {
		return nil, err
	}
	// owner and main live in the implementation's own storage, even under delegate call
	config := state{s: env.CodeStorage()}

	switch method.Name {
	case "owner":
		owner, err := config.address(ownerKey)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(owner)
	case "main":
		main, err := config.address(mainKey)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(main)
	case "setMain":
		if env.Delegated() {
			return nil, vm.Revert("setMain must be called directly")
		}
		if err := onlyOwner(env, config); err != nil {
			return nil, err
		}
		main := args[0].(common.Address)
		if err := config.setAddress(mainKey, main); err != nil {
			return nil, err
		}
		return nil, emit(env, implementationABI, "MainUpdated", []common.Hash{addressTopic(main)})
	}

	main, err := config.address(mainKey)
	if err != nil {
		return nil, err
	}
	if !env.Delegated() || main == (common.Address{}) || env.Self != main {
		return nil, vm.Revert("only callable through main")
	}
	b := &bricks{env: env, st: state{s: env.SelfStorage()}, parsed: implementationABI}
	return b.run(method, args)
}
