package config

// ProjectFile represents the webuild.toml configuration file
type ProjectFile struct {
	Project  ProjectSection           `toml:"project"`
	Networks map[string]NetworkConfig `toml:"networks"`
	Accounts map[string]AccountConfig `toml:"accounts"`
	Devnet   DevnetSection            `toml:"devnet"`
}

// ProjectSection represents the [project] section
type ProjectSection struct {
	Artifacts     string `toml:"artifacts,omitempty"`
	DefaultSender string `toml:"default_sender,omitempty"`
}

// NetworkConfig represents a [networks.<name>] section
type NetworkConfig struct {
	RPCURL  string `toml:"rpc_url"`
	ChainID uint64 `toml:"chain_id,omitempty"`
	// Devnet marks an endpoint served by `webuild devnet serve`
	Devnet bool `toml:"devnet,omitempty"`
}

// AccountConfig represents an [accounts.<name>] section.
// Accounts without a private key are watch-only.
type AccountConfig struct {
	PrivateKey string `toml:"private_key,omitempty"`
	Address    string `toml:"address,omitempty"`
}

// DevnetSection represents the [devnet] section
type DevnetSection struct {
	ChainID     uint64   `toml:"chain_id,omitempty"`
	Listen      string   `toml:"listen,omitempty"`
	CORSOrigins []string `toml:"cors_origins,omitempty"`
}
