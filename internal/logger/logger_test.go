package logger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/logger"
)

func TestNew_DefaultsApplied(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	require.NotNil(t, l)

	l.Debug("filtered at info level")
	l.With(logger.ConnID("abc"), logger.Error(errors.New("boom"))).Warn("connection warning")
}

func TestWithContext_FromContext_RoundTrip(t *testing.T) {
	t.Parallel()

	nop := logger.NewNop()
	ctx := logger.WithContext(context.Background(), nop)

	assert.Same(t, nop, logger.FromContext(ctx))
}

func TestFromContext_FallbackIsSingleton(t *testing.T) {
	t.Parallel()

	a := logger.FromContext(context.Background())
	b := logger.FromContext(context.Background())

	require.NotNil(t, a)
	assert.Same(t, a, b)

	// warn-level fallback: must not panic on any level
	a.Info("info message", logger.Request("GET", "/")...)
	a.Error("error message", logger.Int("status", 500))
}

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	cfg := logger.Config{}
	cfg.SetDefaults()

	assert.Equal(t, logger.DefaultLevel, cfg.Level)
	assert.Equal(t, logger.DefaultFormat, cfg.Format)
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)
}

func TestFromContextOr(t *testing.T) {
	t.Parallel()

	conn := logger.NewNop()
	fallback, err := logger.New(logger.Config{OutputPaths: []string{"stderr"}})
	require.NoError(t, err)

	assert.Same(t, fallback, logger.FromContextOr(context.Background(), fallback))
	assert.Same(t, conn, logger.FromContextOr(logger.WithContext(context.Background(), conn), fallback))
	assert.Same(t, logger.FromContext(context.Background()), logger.FromContextOr(context.Background(), nil))
}
