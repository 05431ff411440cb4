package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/infrastructure/config"
)

// MeterProvider wraps the OTEL SDK meter provider. When telemetry is
// disabled every instrument it hands out is a no-op, so instrumented code
// paths can record unconditionally.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	enabled  bool
	logger   *zap.Logger
}

// MeterOptions tunes metric export behaviour.
type MeterOptions struct {
	// ExportInterval is how often accumulated metrics are pushed to the
	// collector. Zero means the 60s default.
	ExportInterval time.Duration
}

// NewMeterProvider builds a meter provider exporting over OTLP gRPC.
func NewMeterProvider(ctx context.Context, cfg config.TelemetryConfig, version string, opts MeterOptions, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{enabled: cfg.Enabled, logger: logger}
	if !cfg.Enabled {
		logger.Info("metrics export disabled")
		return mp, nil
	}

	expOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		expOpts = append(expOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, expOpts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := buildResource(ctx, cfg.ServiceName, version)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	interval := opts.ExportInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("metrics export enabled",
		zap.String("endpoint", cfg.CollectorEndpoint),
		zap.Duration("interval", interval))
	return mp, nil
}

// Meter returns a named meter. Safe to call when metrics are disabled.
func (mp *MeterProvider) Meter(name string) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name)
	}
	return mp.provider.Meter(name)
}

// IsEnabled reports whether metrics are actually exported.
func (mp *MeterProvider) IsEnabled() bool {
	return mp.enabled && mp.provider != nil
}

// ForceFlush pushes any pending metrics immediately.
func (mp *MeterProvider) ForceFlush(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	return mp.provider.ForceFlush(ctx)
}

// Shutdown flushes and stops the provider with a bounded timeout.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := mp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter provider: %w", err)
	}
	return nil
}
