package parser

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
)

// ExtractBody slices the body that starts at start out of buf using
// Content-Length. It returns the body and the number of bytes consumed.
func ExtractBody(buf []byte, headers *httpmsg.Headers, start int) (string, int, error) {
	length, ok := headers.ContentLength()
	if !ok || length == 0 {
		return "", 0, nil
	}

	var available int64
	if start < len(buf) {
		available = int64(len(buf) - start)
	}
	if available < length {
		return "", 0, fmt.Errorf("%w: expected %d bytes but got %d", ErrIncompleteBody, length, available)
	}

	end := start + int(length)
	return string(buf[start:end]), int(length), nil
}
