package middleware

import (
	"context"
	"time"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/logger"
)

// Logging logs each request once the rest of the chain has run. It writes
// to the connection logger in ctx when there is one and to log otherwise.
func Logging(log logger.Logger) Func {
	return func(ctx context.Context, req *httpmsg.Request, res *httpmsg.Response, next Next) error {
		reqLog := logger.FromContextOr(ctx, log)
		start := time.Now()
		err := next()

		fields := append(logger.Request(req.Method.String(), req.Path),
			logger.Int("status", res.Status()),
			logger.Duration("duration", time.Since(start)),
			logger.Bool("streamed", res.Streamed()),
		)
		if err != nil {
			reqLog.Warn("Request failed", append(fields, logger.Error(err))...)
			return err
		}
		reqLog.Info("Request handled", fields...)
		return nil
	}
}
