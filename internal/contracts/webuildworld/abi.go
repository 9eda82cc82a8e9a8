package webuildworld

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	MainName           = "WeBuildWorld"
	ImplementationName = "WeBuildWorldImplementation"
)

const ownerABI = `{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}`

const brickEventsABI = `
{"type":"event","name":"BrickAdded","anonymous":false,"inputs":[
  {"name":"id","type":"uint256","indexed":true},
  {"name":"owner","type":"address","indexed":true},
  {"name":"value","type":"uint256","indexed":false}]},
{"type":"event","name":"WorkStarted","anonymous":false,"inputs":[
  {"name":"id","type":"uint256","indexed":true},
  {"name":"builder","type":"address","indexed":true}]},
{"type":"event","name":"WorkAccepted","anonymous":false,"inputs":[
  {"name":"id","type":"uint256","indexed":true},
  {"name":"builder","type":"address","indexed":true},
  {"name":"value","type":"uint256","indexed":false}]},
{"type":"event","name":"BrickCancelled","anonymous":false,"inputs":[
  {"name":"id","type":"uint256","indexed":true}]}`

const brickMethodsABI = `
{"type":"function","name":"addBrick","stateMutability":"payable","inputs":[
  {"name":"title","type":"string"},
  {"name":"url","type":"string"},
  {"name":"timestamp","type":"uint256"},
  {"name":"description","type":"string"},
  {"name":"tags","type":"bytes32[]"}],
 "outputs":[{"name":"id","type":"uint256"}]},
{"type":"function","name":"startWork","stateMutability":"nonpayable","inputs":[
  {"name":"id","type":"uint256"}],"outputs":[]},
{"type":"function","name":"acceptWork","stateMutability":"nonpayable","inputs":[
  {"name":"id","type":"uint256"},
  {"name":"builder","type":"address"}],"outputs":[]},
{"type":"function","name":"cancel","stateMutability":"nonpayable","inputs":[
  {"name":"id","type":"uint256"}],"outputs":[]},
{"type":"function","name":"getBrickIds","stateMutability":"view","inputs":[
  {"name":"offset","type":"uint256"},
  {"name":"limit","type":"uint256"},
  {"name":"tags","type":"bytes32[]"},
  {"name":"order","type":"int8"},
  {"name":"fromTime","type":"uint256"},
  {"name":"toTime","type":"uint256"}],
 "outputs":[{"name":"ids","type":"uint256[]"}]},
{"type":"function","name":"getBrickIdsByOwner","stateMutability":"view","inputs":[
  {"name":"owner","type":"address"}],
 "outputs":[{"name":"ids","type":"uint256[]"}]},
{"type":"function","name":"getBrickIdsByBuilder","stateMutability":"view","inputs":[
  {"name":"builder","type":"address"}],
 "outputs":[{"name":"ids","type":"uint256[]"}]},
{"type":"function","name":"getBrick","stateMutability":"view","inputs":[
  {"name":"id","type":"uint256"}],
 "outputs":[
  {"name":"title","type":"string"},
  {"name":"url","type":"string"},
  {"name":"owner","type":"address"},
  {"name":"value","type":"uint256"},
  {"name":"timestamp","type":"uint256"},
  {"name":"dateCreated","type":"uint256"},
  {"name":"dateCompleted","type":"uint256"},
  {"name":"status","type":"uint8"},
  {"name":"tags","type":"bytes32[]"},
  {"name":"description","type":"string"},
  {"name":"numBuilders","type":"uint32"},
  {"name":"winner","type":"address"}]},
{"type":"function","name":"getBrickBuilders","stateMutability":"view","inputs":[
  {"name":"id","type":"uint256"}],
 "outputs":[{"name":"builders","type":"address[]"}]},
{"type":"function","name":"getBrickCount","stateMutability":"view","inputs":[],
 "outputs":[{"name":"count","type":"uint256"}]}`

// MainABI is the ABI of the WeBuildWorld main contract
const MainABI = `[` + ownerABI + `,
{"type":"function","name":"getProvider","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"upgradeProvider","stateMutability":"nonpayable","inputs":[{"name":"provider","type":"address"}],"outputs":[]},
{"type":"event","name":"ProviderUpgraded","anonymous":false,"inputs":[
  {"name":"previous","type":"address","indexed":true},
  {"name":"current","type":"address","indexed":true}]},` +
	brickMethodsABI + `,` + brickEventsABI + `]`

// ImplementationABI is the ABI of the WeBuildWorldImplementation provider contract
const ImplementationABI = `[` + ownerABI + `,
{"type":"function","name":"main","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"setMain","stateMutability":"nonpayable","inputs":[{"name":"main","type":"address"}],"outputs":[]},
{"type":"event","name":"MainUpdated","anonymous":false,"inputs":[
  {"name":"main","type":"address","indexed":true}]},` +
	brickMethodsABI + `,` + brickEventsABI + `]`

var (
	mainABI           = mustParseABI(MainABI)
	implementationABI = mustParseABI(ImplementationABI)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// ParsedMainABI returns the parsed main contract ABI
func ParsedMainABI() abi.ABI {
	return mainABI
}

// ParsedImplementationABI returns the parsed implementation ABI
func ParsedImplementationABI() abi.ABI {
	return implementationABI
}

// ABIFor returns the parsed ABI of a registry contract by name
func ABIFor(name string) (abi.ABI, bool) {
	switch name {
	case MainName:
		return mainABI, true
	case ImplementationName:
		return implementationABI, true
	}
	return abi.ABI{}, false
}
