package telemetry

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"

	"github.com/appsnxt/platform/internal/infrastructure/config"
)

// Profiler manages continuous profiling via a pyroscope agent.
type Profiler struct {
	session *pyroscope.Profiler
	logger  *zap.Logger

	mu      sync.Mutex
	stopped bool
}

// NewProfiler starts the profiling session when enabled. Mutex and block
// profiling carry runtime overhead, so they sample at reduced rates.
func NewProfiler(cfg config.TelemetryConfig, env string, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{logger: logger}
	if !cfg.ProfilingEnabled {
		logger.Info("profiling disabled")
		return p, nil
	}
	if cfg.ProfilingServer == "" {
		return nil, fmt.Errorf("profiling enabled but no server address configured")
	}

	runtime.SetMutexProfileFraction(5)
	runtime.SetBlockProfileRate(5)

	session, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.ProfilingServer,
		Logger:          pyroscopeLogger{logger: logger},
		Tags:            profileTags(env),
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockCount,
			pyroscope.ProfileBlockDuration,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start profiler: %w", err)
	}
	p.session = session

	logger.Info("profiling enabled", zap.String("server", cfg.ProfilingServer))
	return p, nil
}

func profileTags(env string) map[string]string {
	tags := map[string]string{"env": env}
	if host, err := os.Hostname(); err == nil && host != "" {
		tags["hostname"] = host
	}
	if pod := os.Getenv("POD_NAME"); pod != "" {
		tags["pod"] = pod
	}
	return tags
}

// IsEnabled reports whether a profiling session is running.
func (p *Profiler) IsEnabled() bool {
	return p.session != nil
}

// Stop flushes and ends the profiling session. Safe to call twice.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil || p.stopped {
		return nil
	}
	p.stopped = true
	if err := p.session.Stop(); err != nil {
		return fmt.Errorf("stop profiler: %w", err)
	}
	p.logger.Info("profiling stopped")
	return nil
}

// pyroscopeLogger adapts zap to the agent's logging interface.
type pyroscopeLogger struct {
	logger *zap.Logger
}

func (l pyroscopeLogger) Infof(format string, args ...interface{}) {
	l.logger.Sugar().Debugf(format, args...)
}

func (l pyroscopeLogger) Debugf(format string, args ...interface{}) {
	l.logger.Sugar().Debugf(format, args...)
}

func (l pyroscopeLogger) Errorf(format string, args ...interface{}) {
	l.logger.Sugar().Errorf(format, args...)
}
