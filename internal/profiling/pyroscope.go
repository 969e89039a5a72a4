package profiling

import (
	"fmt"
	"os"
	"runtime"

	"github.com/grafana/pyroscope-go"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/logger"
)

// PyroscopeProfiler holds the Pyroscope profiler instance
type PyroscopeProfiler struct {
	profiler *pyroscope.Profiler
}

// PyroscopeConfig builds the profiler config from the environment:
// PYROSCOPE_SERVER_URL, PYROSCOPE_ENVIRONMENT and APP_VERSION.
func PyroscopeConfig(serviceName string) pyroscope.Config {
	serverURL := envOr("PYROSCOPE_SERVER_URL", "http://pyroscope:4040")

	return pyroscope.Config{
		ApplicationName: "north-cloud." + serviceName,
		ServerAddress:   serverURL,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
		Tags: map[string]string{
			"environment": envOr("PYROSCOPE_ENVIRONMENT", "development"),
			"version":     envOr("APP_VERSION", "unknown"),
			"hostname":    getHostname(),
			"go_version":  runtime.Version(),
		},
	}
}

// StartPyroscope starts continuous profiling when
// ENABLE_CONTINUOUS_PROFILING is "true". It returns nil, nil when disabled.
func StartPyroscope(serviceName string, log logger.Logger) (*PyroscopeProfiler, error) {
	if os.Getenv("ENABLE_CONTINUOUS_PROFILING") != "true" {
		return nil, nil
	}

	config := PyroscopeConfig(serviceName)
	profiler, err := pyroscope.Start(config)
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}

	log.Info("Pyroscope continuous profiling started",
		logger.String("application", config.ApplicationName),
		logger.String("server", config.ServerAddress),
		logger.String("environment", config.Tags["environment"]),
	)

	return &PyroscopeProfiler{profiler: profiler}, nil
}

// Stop gracefully stops the Pyroscope profiler
func (p *PyroscopeProfiler) Stop() error {
	if p == nil || p.profiler == nil {
		return nil
	}
	return p.profiler.Stop()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getHostname returns the container hostname or "unknown"
func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
