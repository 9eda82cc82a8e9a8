package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/config"
	"github.com/webuildworld/webuild/internal/usecase"
)

// ComposeFileLoader reads brick manifests from YAML files
type ComposeFileLoader struct {
	root string
}

// NewComposeFileLoader creates a loader resolving relative paths against the project root
func NewComposeFileLoader(cfg *config.RuntimeConfig) *ComposeFileLoader {
	return &ComposeFileLoader{root: cfg.ProjectRoot}
}

// Load parses the manifest at path
func (l *ComposeFileLoader) Load(_ context.Context, path string) (*domain.ComposeManifest, error) {
	if !filepath.IsAbs(path) && l.root != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = filepath.Join(l.root, path)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest domain.ComposeManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if manifest.Group == "" {
		manifest.Group = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &manifest, nil
}

// ComposeStateStoreAdapter keeps compose progress under the data dir
type ComposeStateStoreAdapter struct {
	dir string
}

// NewComposeStateStoreAdapter creates a new ComposeStateStoreAdapter
func NewComposeStateStoreAdapter(cfg *config.RuntimeConfig) *ComposeStateStoreAdapter {
	return &ComposeStateStoreAdapter{
		dir: filepath.Join(cfg.DataDir, "compose"),
	}
}

func (s *ComposeStateStoreAdapter) path(manifestPath string, chainID uint64) string {
	name := strings.TrimSuffix(filepath.Base(manifestPath), filepath.Ext(manifestPath))
	return filepath.Join(s.dir, fmt.Sprintf("%s-%d.json", name, chainID))
}

// Load reads the state of the last run of a manifest on a chain
func (s *ComposeStateStoreAdapter) Load(_ context.Context, manifestPath string, chainID uint64) (*usecase.ComposeState, error) {
	data, err := os.ReadFile(s.path(manifestPath, chainID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no previous run of %s on chain %d: %w", manifestPath, chainID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read compose state: %w", err)
	}

	var state usecase.ComposeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse compose state: %w", err)
	}
	return &state, nil
}

// Save writes the state, creating the directory if needed
func (s *ComposeStateStoreAdapter) Save(_ context.Context, state *usecase.ComposeState) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create compose state directory: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal compose state: %w", err)
	}
	return writeFileAtomic(s.path(state.ManifestPath, state.ChainID), data)
}

var (
	_ usecase.ComposeLoader     = (*ComposeFileLoader)(nil)
	_ usecase.ComposeStateStore = (*ComposeStateStoreAdapter)(nil)
)
