package progress

import (
	"log/slog"

	"github.com/webuildworld/webuild/internal/domain/config"
	"github.com/webuildworld/webuild/internal/usecase"
)

// NewSink picks the spinner for interactive terminals and a silent sink for
// JSON or non-interactive output
func NewSink(cfg *config.RuntimeConfig, log *slog.Logger) usecase.ProgressSink {
	if cfg.JSON || cfg.NonInteractive {
		log.Debug("progress output disabled", "json", cfg.JSON, "nonInteractive", cfg.NonInteractive)
		return NewNopSink()
	}
	return NewSpinnerProgressReporter()
}
