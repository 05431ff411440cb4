package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/appsnxt/platform/internal/infrastructure/config"
)

// RegisterDBTracing attaches the otelgorm plugin so every query runs inside
// a child span of the active trace. Query variables are always excluded
// from span attributes; statements may contain credentials or PII.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		logger.Debug("database tracing disabled")
		return nil
	}

	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return fmt.Errorf("register otelgorm plugin: %w", err)
	}

	logger.Info("database tracing enabled")
	return nil
}
