package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/webuildworld/webuild/internal/domain/config"
)

// LoadProjectFile loads .env and parses webuild.toml in projectRoot.
// Returns (nil, nil) if webuild.toml doesn't exist.
func LoadProjectFile(projectRoot string) (*config.ProjectFile, error) {
	// Existing environment variables win over .env
	envPath := filepath.Join(projectRoot, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	path := filepath.Join(projectRoot, ProjectFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var file config.ProjectFile
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ProjectFile, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in %s: %v", ProjectFile, undecoded)
	}

	expandProjectFile(&file)
	return &file, nil
}

// expandProjectFile expands ${VAR} references in every string value
func expandProjectFile(file *config.ProjectFile) {
	file.Project.Artifacts = os.ExpandEnv(file.Project.Artifacts)
	file.Project.DefaultSender = os.ExpandEnv(file.Project.DefaultSender)

	for name, n := range file.Networks {
		n.RPCURL = os.ExpandEnv(n.RPCURL)
		file.Networks[name] = n
	}
	for name, acct := range file.Accounts {
		acct.PrivateKey = os.ExpandEnv(acct.PrivateKey)
		acct.Address = os.ExpandEnv(acct.Address)
		file.Accounts[name] = acct
	}
	file.Devnet.Listen = os.ExpandEnv(file.Devnet.Listen)
}
