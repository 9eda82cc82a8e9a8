package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/webuildworld/webuild/internal/domain"
)

// LocalConfigStore persists the local config file
type LocalConfigStore interface {
	Exists() bool
	Load(ctx context.Context) (*domain.LocalConfig, error)
	Save(ctx context.Context, config *domain.LocalConfig) error
	GetPath() string
}

// SetConfigParams contains parameters for setting configuration
type SetConfigParams struct {
	Key   string
	Value string
}

// ConfigChangeResult contains the result of setting or removing a value
type ConfigChangeResult struct {
	UpdatedConfig *domain.LocalConfig
	ConfigPath    string
	Key           domain.ConfigKey
	Value         string
	// PreviousValue is the value before the change
	PreviousValue string
}

// ShowConfigResult contains the result of showing configuration
type ShowConfigResult struct {
	Config     *domain.LocalConfig
	ConfigPath string
	Exists     bool
}

// ManageConfig reads and edits the local config file
type ManageConfig struct {
	store LocalConfigStore
}

// NewManageConfig creates a new ManageConfig use case
func NewManageConfig(store LocalConfigStore) *ManageConfig {
	return &ManageConfig{
		store: store,
	}
}

// Show returns the current local config
func (uc *ManageConfig) Show(ctx context.Context) (*ShowConfigResult, error) {
	config, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &ShowConfigResult{
		Config:     config,
		ConfigPath: uc.store.GetPath(),
		Exists:     uc.store.Exists(),
	}, nil
}

// Set stores a value
func (uc *ManageConfig) Set(ctx context.Context, params SetConfigParams) (*ConfigChangeResult, error) {
	key, err := parseConfigKey(params.Key)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Value) == "" {
		return nil, fmt.Errorf("value for %s must not be empty", key)
	}
	return uc.update(ctx, key, strings.TrimSpace(params.Value))
}

// Remove clears a value
func (uc *ManageConfig) Remove(ctx context.Context, rawKey string) (*ConfigChangeResult, error) {
	key, err := parseConfigKey(rawKey)
	if err != nil {
		return nil, err
	}
	if !uc.store.Exists() {
		return nil, fmt.Errorf("no config file found at %s", uc.store.GetPath())
	}
	return uc.update(ctx, key, "")
}

func (uc *ManageConfig) update(ctx context.Context, key domain.ConfigKey, value string) (*ConfigChangeResult, error) {
	config, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	previous := config.Get(key)
	config.Set(key, value)
	if err := uc.store.Save(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return &ConfigChangeResult{
		UpdatedConfig: config,
		ConfigPath:    uc.store.GetPath(),
		Key:           key,
		Value:         value,
		PreviousValue: previous,
	}, nil
}

func parseConfigKey(raw string) (domain.ConfigKey, error) {
	key, ok := domain.NormalizeConfigKey(raw)
	if !ok {
		valid := make([]string, 0, len(domain.ValidConfigKeys()))
		for _, k := range domain.ValidConfigKeys() {
			valid = append(valid, string(k))
		}
		return "", fmt.Errorf("unknown config key: %s\nAvailable keys: %s", raw, strings.Join(valid, ", "))
	}
	return key, nil
}
