package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Context settings
	Network       *Network
	Accounts      map[string]AccountConfig
	DefaultSender string
	ArtifactsDir  string
	Devnet        DevnetConfig
	// Main is the default main contract reference
	Main string

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration

	// Config source tracking
	ConfigSource string // "webuild.toml" or "defaults"
}

// Network represents network configuration
type Network struct {
	ChainID uint64 `json:"chainId"`
	Name    string `json:"name"`
	RPCURL  string `json:"rpcUrl,omitempty"`
	// InProcess networks open the dev chain in-process instead of dialing RPCURL
	InProcess bool `json:"inProcess"`
	// NativeContracts networks execute the registry natively (the dev chain),
	// so deployments use native init code instead of compiled artifacts
	NativeContracts bool `json:"nativeContracts"`
}

// DevnetConfig configures the bundled dev chain
type DevnetConfig struct {
	ChainID     uint64
	Listen      string
	CORSOrigins []string
	DataDir     string
}

const (
	DefaultDevnetChainID = 31337
	DefaultDevnetListen  = "127.0.0.1:8545"
	DefaultNetwork       = "devnet"
	DefaultTimeout       = 2 * time.Minute
)
