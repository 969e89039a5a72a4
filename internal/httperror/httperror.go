// Package httperror maps failures onto HTTP status codes and renders the
// small html error pages the server sends.
package httperror

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/network"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/parser"
)

// HTTPError is an error that already knows its status code.
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
	Err        error
}

// New returns an HTTPError for code with message.
func New(code int, message string) *HTTPError {
	return &HTTPError{StatusCode: code, Status: httpmsg.StatusText(code), Message: message}
}

// Wrap attaches code to err.
func Wrap(code int, err error) *HTTPError {
	if err == nil {
		return nil
	}
	return &HTTPError{StatusCode: code, Status: httpmsg.StatusText(code), Message: err.Error(), Err: err}
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP error (%d %s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP error: %d %s", e.StatusCode, e.Status)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// GetHTTPStatusCode extracts the HTTP status code from an error if it's an HTTPError
func GetHTTPStatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}

// StatusFor classifies err. Unknown errors are 500.
func StatusFor(err error) int {
	if code, ok := GetHTTPStatusCode(err); ok {
		return code
	}
	switch {
	case errors.Is(err, network.ErrMessageTooLarge):
		return httpmsg.StatusRequestTooLarge
	case parser.IsParseError(err):
		return httpmsg.StatusBadRequest
	case errors.Is(err, fs.ErrNotExist):
		return httpmsg.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return httpmsg.StatusForbidden
	default:
		return httpmsg.StatusInternalServerError
	}
}

var pageTitles = map[int]string{
	httpmsg.StatusRequestTooLarge: "Request Too Large",
}

// Page renders the html body for code, with optional detail paragraphs.
func Page(code int, detail ...string) string {
	title, ok := pageTitles[code]
	if !ok {
		title = httpmsg.StatusText(code)
	}
	page := fmt.Sprintf("<h1>%d %s</h1>", code, title)
	for _, d := range detail {
		page += "<p>" + d + "</p>"
	}
	return page
}

// Render sets res to an html error page for code.
func Render(res *httpmsg.Response, code int, detail ...string) {
	res.SetStatus(code)
	res.SetHTMLBody(Page(code, detail...))
}
