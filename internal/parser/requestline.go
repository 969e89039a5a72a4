package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
)

var versionPattern = regexp.MustCompile(`^HTTP/\d\.\d$`)

// RequestLine is the decomposed first line of a request.
type RequestLine struct {
	Method  httpmsg.Method
	Target  string
	Path    string
	Query   string
	Version string
}

// ParseRequestLine splits "METHOD SP target SP version" on single spaces.
func ParseRequestLine(line string) (RequestLine, error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return RequestLine{}, fmt.Errorf("%w: expected 3 parts but got %d", ErrMalformedRequestLine, len(parts))
	}

	method, ok := httpmsg.ParseMethod(parts[0])
	if !ok {
		return RequestLine{}, fmt.Errorf("%w: %q", ErrUnsupportedMethod, parts[0])
	}

	version := parts[2]
	if !versionPattern.MatchString(version) {
		return RequestLine{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}

	target := parts[1]
	path, query, _ := strings.Cut(target, "?")

	return RequestLine{
		Method:  method,
		Target:  target,
		Path:    path,
		Query:   query,
		Version: version,
	}, nil
}
