package parser

import (
	"strings"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
)

// ParseHeaderLine splits line on its first colon. ok is false when there is
// no colon.
func ParseHeaderLine(line string) (name, value string, ok bool) {
	name, value, ok = strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(name), strings.TrimSpace(value), true
}

// ParseHeaders builds a header set from raw lines. Lines without a colon are
// skipped rather than failing the request.
func ParseHeaders(lines []string) *httpmsg.Headers {
	headers := httpmsg.NewHeaders()
	for _, line := range lines {
		if name, value, ok := ParseHeaderLine(line); ok {
			headers.Set(name, value)
		}
	}
	return headers
}
