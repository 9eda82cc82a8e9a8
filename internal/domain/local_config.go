package domain

import "strings"

// LocalConfig holds per-checkout defaults stored in .webuild/config.local.json
type LocalConfig struct {
	Network string `json:"network"`
	From    string `json:"from"`
	Main    string `json:"main"`
}

// ConfigKey represents a configuration key
type ConfigKey string

const (
	ConfigKeyNetwork ConfigKey = "network"
	ConfigKeyFrom    ConfigKey = "from"
	ConfigKeyMain    ConfigKey = "main"
)

// ValidConfigKeys returns all valid configuration keys
func ValidConfigKeys() []ConfigKey {
	return []ConfigKey{
		ConfigKeyNetwork,
		ConfigKeyFrom,
		ConfigKeyMain,
	}
}

// NormalizeConfigKey normalizes a config key ("sender" -> "from", "net" -> "network")
func NormalizeConfigKey(key string) (ConfigKey, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	switch key {
	case "net", "n":
		return ConfigKeyNetwork, true
	case "sender":
		return ConfigKeyFrom, true
	}
	for _, k := range ValidConfigKeys() {
		if string(k) == key {
			return k, true
		}
	}
	return "", false
}

// Get returns the value stored under key
func (c *LocalConfig) Get(key ConfigKey) string {
	switch key {
	case ConfigKeyNetwork:
		return c.Network
	case ConfigKeyFrom:
		return c.From
	case ConfigKeyMain:
		return c.Main
	}
	return ""
}

// Set stores value under key
func (c *LocalConfig) Set(key ConfigKey, value string) {
	switch key {
	case ConfigKeyNetwork:
		c.Network = value
	case ConfigKeyFrom:
		c.From = value
	case ConfigKeyMain:
		c.Main = value
	}
}
