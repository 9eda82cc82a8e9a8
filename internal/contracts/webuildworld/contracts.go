// Package webuildworld implements the WeBuildWorld brick registry contracts natively.
package webuildworld

import (
	"github.com/webuildworld/webuild/internal/devnet/vm"
)

// Contracts returns the registry contracts for installation on a dev chain
func Contracts() []vm.Contract {
	return []vm.Contract{Main{}, Implementation{}}
}

// InitCode returns the dev chain init code for a registry contract
func InitCode(name string) []byte {
	return vm.InitCode(name)
}
