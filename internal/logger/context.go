package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// The server stores each connection's logger, which already carries
// conn_id and remote_addr, in the context handed to the middleware chain.
type connLoggerKey struct{}

// WithContext returns ctx carrying l.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, connLoggerKey{}, l)
}

// FromContextOr returns the logger stored in ctx, or fallback when there is
// none. A nil fallback selects the shared stderr logger.
func FromContextOr(ctx context.Context, fallback Logger) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(connLoggerKey{}).(Logger); ok && l != nil {
			return l
		}
	}
	if fallback != nil {
		return fallback
	}
	return stderrLogger()
}

// FromContext returns the logger stored in ctx, or a warn-level stderr
// logger so errors are never dropped.
func FromContext(ctx context.Context) Logger {
	return FromContextOr(ctx, nil)
}

var (
	stderrOnce sync.Once
	stderrLog  Logger
)

func stderrLogger() Logger {
	stderrOnce.Do(func() {
		l, err := New(Config{Level: "warn", OutputPaths: []string{"stderr"}})
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: stderr fallback unavailable: %v\n", err)
			l = NewNop()
		}
		stderrLog = l
	})
	return stderrLog
}
