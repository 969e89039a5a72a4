package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httperror"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/logger"
)

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	Method    string `json:"method"`
	Timestamp string `json:"timeStamp"`
}

// Recovery turns handler errors and panics into a JSON error response.
// Once a response has been streamed the error is returned instead, since
// the connection already carries part of a message.
func Recovery(log logger.Logger) Func {
	return func(ctx context.Context, req *httpmsg.Request, res *httpmsg.Response, next Next) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
				logger.FromContextOr(ctx, log).Error("Recovered from panic",
					logger.String("method", req.Method.String()),
					logger.String("path", req.Path),
					logger.Any("panic", r),
				)
			}
			if err == nil || res.Streamed() {
				return
			}
			writeError(res, req, err)
			err = nil
		}()

		return next()
	}
}

func writeError(res *httpmsg.Response, req *httpmsg.Request, err error) {
	code := httperror.StatusFor(err)

	// replace whatever the handler left behind
	for _, name := range res.Headers.Names() {
		res.Headers.Delete(name)
	}
	res.SetStatus(code)

	body := errorBody{
		Error:     httpmsg.StatusText(code),
		Message:   err.Error(),
		Path:      req.Path,
		Method:    req.Method.String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if jsonErr := res.SetJSONBody(body); jsonErr != nil {
		res.SetTextBody(httpmsg.StatusText(code))
	}
}
