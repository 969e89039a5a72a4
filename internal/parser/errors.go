// Package parser decodes HTTP/1.1 requests from a byte buffer holding one
// complete header block.
package parser

import "errors"

// Parse failures. A message that fails with one of these must not be
// dispatched.
var (
	ErrMalformedRequestLine = errors.New("malformed request line")
	ErrUnsupportedMethod    = errors.New("unsupported method")
	ErrUnsupportedVersion   = errors.New("unsupported version")
	ErrEmptyRequest         = errors.New("empty request")
)

// ErrIncompleteBody means fewer body bytes are buffered than Content-Length
// declares. Callers should wait for more data; it is not a protocol error.
var ErrIncompleteBody = errors.New("incomplete body")

// IsIncomplete reports whether err asks for more bytes.
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncompleteBody)
}

// IsParseError reports whether err is a malformed-message failure.
func IsParseError(err error) bool {
	return errors.Is(err, ErrMalformedRequestLine) ||
		errors.Is(err, ErrUnsupportedMethod) ||
		errors.Is(err, ErrUnsupportedVersion) ||
		errors.Is(err, ErrEmptyRequest)
}
