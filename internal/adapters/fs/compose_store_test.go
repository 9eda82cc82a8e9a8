package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/config"
	"github.com/webuildworld/webuild/internal/usecase"
)

const testManifest = `group: launch
from: owner
bricks:
  - name: docs
    title: Write the docs
    url: https://example.com/docs
    tags: [docs, mock]
    value: "0.5"
  - name: audit
    title: Audit the registry
    value: 2eth
    from: alice
`

func TestComposeFileLoader_Load(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bricks.yaml"), []byte(testManifest), 0644))
	loader := NewComposeFileLoader(&config.RuntimeConfig{ProjectRoot: root})

	t.Run("relative to project root", func(t *testing.T) {
		m, err := loader.Load(context.Background(), "bricks.yaml")
		require.NoError(t, err)
		assert.Equal(t, "launch", m.Group)
		require.Len(t, m.Bricks, 2)
		assert.Equal(t, []string{"docs", "mock"}, m.Bricks[0].Tags)
		assert.Equal(t, "owner", m.Sender(m.Bricks[0]))
		assert.Equal(t, "alice", m.Sender(m.Bricks[1]))
		require.NoError(t, m.Validate())
	})

	t.Run("group defaults to file name", func(t *testing.T) {
		path := filepath.Join(root, "nightly.yml")
		require.NoError(t, os.WriteFile(path, []byte("bricks:\n  - name: a\n    title: A\n    value: \"1\"\n"), 0644))
		m, err := loader.Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "nightly", m.Group)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load(context.Background(), "nope.yaml")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(root, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("bricks: [\n"), 0644))
		_, err := loader.Load(context.Background(), path)
		assert.ErrorContains(t, err, "failed to parse YAML")
	})
}

func TestComposeStateStore(t *testing.T) {
	ctx := context.Background()
	store := NewComposeStateStoreAdapter(&config.RuntimeConfig{DataDir: t.TempDir()})

	_, err := store.Load(ctx, "bricks.yaml", 31337)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	now := time.Now().UTC().Truncate(time.Second)
	state := &usecase.ComposeState{
		StartedAt:    now,
		UpdatedAt:    now,
		ManifestPath: "bricks.yaml",
		ChainID:      31337,
		Main:         "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		Added: map[string]*usecase.ComposeStepState{
			"docs": {BrickID: 1, TransactionHash: "0xabc"},
		},
		Status: "failed",
	}
	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx, "./bricks.yaml", 31337)
	require.NoError(t, err)
	assert.Equal(t, state.Main, loaded.Main)
	assert.Equal(t, uint64(1), loaded.Added["docs"].BrickID)
	assert.Equal(t, "failed", loaded.Status)
	assert.True(t, loaded.StartedAt.Equal(now))

	_, err = store.Load(ctx, "bricks.yaml", 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "state is per chain")
}

func TestLocalConfigStore(t *testing.T) {
	ctx := context.Background()
	store := NewLocalConfigStoreAdapter(&config.RuntimeConfig{DataDir: filepath.Join(t.TempDir(), ".webuild")})

	assert.False(t, store.Exists())
	cfg, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, &domain.LocalConfig{}, cfg)

	cfg.Network = "localhost"
	cfg.From = "alice"
	require.NoError(t, store.Save(ctx, cfg))
	assert.True(t, store.Exists())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "localhost", loaded.Network)
	assert.Equal(t, "alice", loaded.From)
	assert.Equal(t, LocalConfigFile, filepath.Base(store.GetPath()))
}
