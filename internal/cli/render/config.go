package render

import (
	"fmt"
	"io"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/usecase"
)

// ConfigRenderer renders config-related output
type ConfigRenderer struct {
	out io.Writer
}

// NewConfigRenderer creates a new config renderer
func NewConfigRenderer(out io.Writer) *ConfigRenderer {
	return &ConfigRenderer{out: out}
}

// RenderConfig renders the configuration display
func (r *ConfigRenderer) RenderConfig(result *usecase.ShowConfigResult, source string) error {
	if !result.Exists {
		fmt.Fprintln(r.out, "❌ No .webuild/config.local.json file found")
		fmt.Fprintln(r.out, "⚠️  Commands use the devnet network and the default sender")
		return nil
	}

	fmt.Fprintln(r.out, "📋 Current config:")
	for _, key := range domain.ValidConfigKeys() {
		value := result.Config.Get(key)
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(r.out, "%-9s %s\n", titleCaser.String(string(key))+":", value)
	}

	if source != "" {
		fmt.Fprintf(r.out, "\n📦 Config source: %s\n", source)
	}
	fmt.Fprintf(r.out, "📁 config file: %s\n", getRelativePath(result.ConfigPath))
	return nil
}

// RenderSet renders the result of setting a configuration value
func (r *ConfigRenderer) RenderSet(result *usecase.ConfigChangeResult) error {
	fmt.Fprintf(r.out, "✅ Set %s to: %s\n", result.Key, result.Value)
	if result.PreviousValue != "" && result.PreviousValue != result.Value {
		fmt.Fprintf(r.out, "   was: %s\n", result.PreviousValue)
	}
	fmt.Fprintf(r.out, "📁 config saved to: %s\n", getRelativePath(result.ConfigPath))
	return nil
}

// RenderRemove renders the result of removing a configuration value
func (r *ConfigRenderer) RenderRemove(result *usecase.ConfigChangeResult) error {
	switch result.Key {
	case domain.ConfigKeyNetwork:
		fmt.Fprintln(r.out, "✅ Removed network from config (defaults to devnet)")
	case domain.ConfigKeyFrom:
		fmt.Fprintln(r.out, "✅ Removed from config (uses the project default sender)")
	default:
		fmt.Fprintf(r.out, "✅ Removed %s from config\n", result.Key)
	}
	fmt.Fprintf(r.out, "📁 config saved to: %s\n", getRelativePath(result.ConfigPath))
	return nil
}
