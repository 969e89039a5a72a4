package profiling

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/logger"
)

func TestPprofAddr(t *testing.T) {
	t.Setenv("ENABLE_PROFILING", "")
	assert.Empty(t, PprofAddr())
	assert.Nil(t, StartPprofServer(logger.NewNop()))

	t.Setenv("ENABLE_PROFILING", "true")
	assert.Equal(t, "localhost:6060", PprofAddr())

	t.Setenv("PPROF_PORT", "7070")
	assert.Equal(t, "localhost:7070", PprofAddr())
}

func TestStartPyroscope_Disabled(t *testing.T) {
	t.Setenv("ENABLE_CONTINUOUS_PROFILING", "false")

	p, err := StartPyroscope("static-httpd", logger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, p.Stop())
}

func TestPyroscopeConfig(t *testing.T) {
	t.Setenv("PYROSCOPE_SERVER_URL", "http://profiles:4040")
	t.Setenv("PYROSCOPE_ENVIRONMENT", "staging")
	t.Setenv("APP_VERSION", "1.2.3")

	cfg := PyroscopeConfig("static-httpd")
	assert.Equal(t, "north-cloud.static-httpd", cfg.ApplicationName)
	assert.Equal(t, "http://profiles:4040", cfg.ServerAddress)
	assert.Equal(t, "staging", cfg.Tags["environment"])
	assert.Equal(t, "1.2.3", cfg.Tags["version"])
	assert.Contains(t, cfg.ProfileTypes, pyroscope.ProfileCPU)
}
