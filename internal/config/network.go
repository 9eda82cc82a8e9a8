package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/config"
)

// LocalhostNetwork is the built-in name for `webuild devnet serve` on the default port
const LocalhostNetwork = "localhost"

// NetworkResolver resolves network names to configurations
type NetworkResolver struct {
	networks map[string]config.NetworkConfig
	devnet   config.DevnetConfig
}

// NewNetworkResolver creates a resolver over the [networks] of the project file
func NewNetworkResolver(project *config.ProjectFile, devnet config.DevnetConfig) *NetworkResolver {
	return &NetworkResolver{
		networks: project.Networks,
		devnet:   devnet,
	}
}

// Resolve resolves a network name or RPC URL. Configured networks shadow the built-in
// "devnet" (in-process dev chain) and "localhost" (served dev chain) names.
func (r *NetworkResolver) Resolve(name string) (*config.Network, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = config.DefaultNetwork
	}

	if nc, ok := r.networks[name]; ok {
		if nc.RPCURL == "" {
			return nil, fmt.Errorf("network %s has no rpc_url", name)
		}
		return &config.Network{
			Name:            name,
			RPCURL:          nc.RPCURL,
			ChainID:         nc.ChainID,
			NativeContracts: nc.Devnet,
		}, nil
	}

	switch name {
	case config.DefaultNetwork:
		return &config.Network{
			Name:            name,
			ChainID:         r.devnet.ChainID,
			InProcess:       true,
			NativeContracts: true,
		}, nil
	case LocalhostNetwork:
		return &config.Network{
			Name:            name,
			RPCURL:          "http://" + r.devnet.Listen,
			ChainID:         r.devnet.ChainID,
			NativeContracts: true,
		}, nil
	}

	if u, err := url.Parse(name); err == nil && u.Host != "" {
		switch u.Scheme {
		case "http", "https", "ws", "wss":
			return &config.Network{Name: u.Host, RPCURL: name}, nil
		}
	}

	return nil, fmt.Errorf("network %q: %w (known: %s)", name, domain.ErrNotFound, strings.Join(r.Names(), ", "))
}

// Names returns the built-in and configured network names
func (r *NetworkResolver) Names() []string {
	names := []string{config.DefaultNetwork, LocalhostNetwork}
	for name := range r.networks {
		if name != config.DefaultNetwork && name != LocalhostNetwork {
			names = append(names, name)
		}
	}
	sort.Strings(names[2:])
	return names
}
