package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/webuildworld/webuild/internal/domain/config"
)

const (
	// ProjectFile marks the project root
	ProjectFile = "webuild.toml"
	// DataDirName holds the registry, local config and dev chain
	DataDirName = ".webuild"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, DataDirName),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		ConfigSource:   "defaults",
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultTimeout
	}

	project, err := LoadProjectFile(projectRoot)
	if err != nil {
		return nil, err
	}
	if project != nil {
		cfg.ConfigSource = ProjectFile
	} else {
		project = &config.ProjectFile{}
	}

	cfg.Accounts = project.Accounts
	cfg.DefaultSender = project.Project.DefaultSender
	if from := v.GetString("from"); from != "" {
		cfg.DefaultSender = from
	}
	cfg.Main = v.GetString("main")

	cfg.ArtifactsDir = project.Project.Artifacts
	if cfg.ArtifactsDir == "" {
		cfg.ArtifactsDir = "out"
	}
	if !filepath.IsAbs(cfg.ArtifactsDir) {
		cfg.ArtifactsDir = filepath.Join(projectRoot, cfg.ArtifactsDir)
	}

	cfg.Devnet = devnetConfig(project.Devnet, cfg.DataDir)
	if dir := v.GetString("devnet_dir"); dir != "" {
		cfg.Devnet.DataDir = dir
	}

	network, err := NewNetworkResolver(project, cfg.Devnet).Resolve(v.GetString("network"))
	if err != nil {
		return nil, err
	}
	cfg.Network = network

	return cfg, nil
}

func devnetConfig(section config.DevnetSection, dataDir string) config.DevnetConfig {
	dc := config.DevnetConfig{
		ChainID:     section.ChainID,
		Listen:      section.Listen,
		CORSOrigins: section.CORSOrigins,
		DataDir:     filepath.Join(dataDir, "devnet"),
	}
	if dc.ChainID == 0 {
		dc.ChainID = config.DefaultDevnetChainID
	}
	if dc.Listen == "" {
		dc.Listen = config.DefaultDevnetListen
	}
	return dc
}

// FindProjectRoot walks up from the current directory to find webuild.toml.
// Without one the current directory is the project root.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, ProjectFile)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up config file
	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, DataDirName))

	// Set up environment variables
	v.SetEnvPrefix("WEBUILD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("network", config.DefaultNetwork)
	v.SetDefault("timeout", config.DefaultTimeout.String())
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("json", false)
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: ignoring %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	if cmd != nil {
		bindFlags(v, cmd.Flags())
	}
	return v
}

// bindFlags binds every flag under its snake_case key so config keys, env vars
// and flags share one name
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})
}
