package observability

import (
	"log/slog"

	"github.com/couchcryptid/storm-dashboard/internal/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// NewLogger builds the process logger from config and installs it as the
// slog default. Unknown levels fall back to info.
func NewLogger(cfg *config.Config) *slog.Logger {
	return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
}
