package httperror_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httperror"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/network"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/parser"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"http error", httperror.New(httpmsg.StatusMethodNotAllowed, "nope"), 405},
		{"wrapped http error", fmt.Errorf("route: %w", httperror.New(404, "")), 404},
		{"too large", network.ErrMessageTooLarge, 413},
		{"malformed", fmt.Errorf("parse: %w", parser.ErrMalformedRequestLine), 400},
		{"bad version", parser.ErrUnsupportedVersion, 400},
		{"not exist", &os.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}, 404},
		{"permission", os.ErrPermission, 403},
		{"other", errors.New("boom"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, httperror.StatusFor(tt.err))
		})
	}
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	err := httperror.New(400, "missing name")
	assert.Equal(t, "HTTP error (400 Bad Request): missing name", err.Error())
	code, ok := httperror.GetHTTPStatusCode(fmt.Errorf("handler: %w", err))
	assert.True(t, ok)
	assert.Equal(t, 400, code)

	cause := errors.New("disk gone")
	wrapped := httperror.Wrap(500, cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.Nil(t, httperror.Wrap(500, nil))

	bare := &httperror.HTTPError{StatusCode: 503, Status: "Service Unavailable"}
	assert.Equal(t, "HTTP error: 503 Service Unavailable", bare.Error())

	code, ok = httperror.GetHTTPStatusCode(errors.New("plain"))
	assert.False(t, ok)
	assert.Zero(t, code)
}

func TestPageAndRender(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<h1>413 Request Too Large</h1>", httperror.Page(413))
	assert.Equal(t, "<h1>404 Not Found</h1>", httperror.Page(404))
	assert.Equal(t, "<h1>403 Forbidden</h1><p>Access denied.</p>", httperror.Page(403, "Access denied."))

	res := httpmsg.NewResponse()
	httperror.Render(res, 500)
	assert.Equal(t, 500, res.Status())
	assert.Equal(t, httpmsg.ContentTypeHTML, res.Headers.ContentType())
	assert.Equal(t, "<h1>500 Internal Server Error</h1>", string(res.Body()))
}
