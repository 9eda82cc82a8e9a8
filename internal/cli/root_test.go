package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webuildworld/webuild/internal/config"
	"github.com/webuildworld/webuild/internal/domain/models"
)

func TestParseBrickID(t *testing.T) {
	tests := []struct {
		arg     string
		want    uint64
		wantErr bool
	}{
		{"1", 1, false},
		{"#42", 42, false},
		{" 7 ", 7, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseBrickID(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBrickStatus(t *testing.T) {
	st, err := parseBrickStatus("")
	require.NoError(t, err)
	assert.Nil(t, st)

	st, err = parseBrickStatus("Completed")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, models.BrickCompleted, *st)

	_, err = parseBrickStatus("done")
	assert.ErrorContains(t, err, "invalid status")
}

func TestRootCmd_Structure(t *testing.T) {
	root := NewRootCmd()

	groups := map[string][]string{
		"main":       {"brick", "compose", "watch"},
		"deployment": {"deploy", "link", "upgrade", "deployments"},
		"management": {"accounts", "devnet", "config"},
	}
	for group, names := range groups {
		for _, name := range names {
			cmd, _, err := root.Find([]string{name})
			require.NoError(t, err, name)
			assert.Equal(t, group, cmd.GroupID, name)
		}
	}

	for _, path := range [][]string{
		{"brick", "add"}, {"brick", "list"}, {"brick", "show"}, {"brick", "mine"},
		{"brick", "building"}, {"brick", "start"}, {"brick", "accept"}, {"brick", "cancel"},
		{"devnet", "serve"}, {"devnet", "reset"}, {"config", "set"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	watch, _, err := root.Find([]string{"watch"})
	require.NoError(t, err)
	assert.NotEmpty(t, watch.Annotations[noTimeoutAnnotation])

	serve, _, err := root.Find([]string{"devnet", "serve"})
	require.NoError(t, err)
	assert.NotEmpty(t, serve.Annotations[noTimeoutAnnotation])
}

func TestVersionCmd(t *testing.T) {
	defer config.SetBuildFlags(config.Version, config.Commit, config.Date)
	config.SetBuildFlags("1.2.3", "abc1234", "2026-01-02")

	out := runCLI(t, "version")
	assert.Equal(t, "webuild version 1.2.3 (commit abc1234, built 2026-01-02)\n", out)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(runCLI(t, "version", "--json")), &info))
	assert.Equal(t, "1.2.3", info["version"])
}

// runCLI executes one invocation and closes its app, like Execute
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := tryCLI(t, args...)
	require.NoError(t, err, "webuild %s", strings.Join(args, " "))
	return out
}

func tryCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, s := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	require.NoError(t, s.close())
	return stdout.String(), err
}

func TestCLI_BrickLifecycle(t *testing.T) {
	t.Chdir(t.TempDir())

	runCLI(t, "deploy", "--non-interactive")

	var added struct{ BrickID uint64 }
	out := runCLI(t, "brick", "add", "--title", "Fix the footer", "--value", "1", "--tags", "web,css", "--json")
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, uint64(1), added.BrickID)

	out = runCLI(t, "brick", "list", "--tags", "css", "--non-interactive")
	assert.Contains(t, out, "Fix the footer")

	runCLI(t, "brick", "start", "1", "--from", "builder", "--json")

	_, err := tryCLI(t, "brick", "accept", "1", "builder", "--from", "alice", "--json")
	assert.ErrorContains(t, err, "not the brick owner")

	runCLI(t, "brick", "accept", "#1", "builder", "--json")

	var brick models.Brick
	require.NoError(t, json.Unmarshal([]byte(runCLI(t, "brick", "show", "1", "--json")), &brick))
	assert.Equal(t, models.BrickCompleted, brick.Status)
	assert.Equal(t, common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"), brick.Winner)
	assert.Equal(t, []string{"web", "css"}, brick.Tags)

	// The registry survives across invocations
	out = runCLI(t, "deployments", "--non-interactive")
	assert.Contains(t, out, "WeBuildWorld")
}

func TestCLI_UnknownNetwork(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := tryCLI(t, "brick", "list", "--network", "nowhere")
	assert.ErrorContains(t, err, "nowhere")
}
