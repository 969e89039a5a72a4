package parser

import (
	"bytes"
	"strings"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
)

var headerTerminator = []byte("\r\n\r\n")

// ParseRequest decodes a complete request from buf. The request line is
// validated before any header is looked at.
func ParseRequest(buf []byte) (*httpmsg.Request, error) {
	return ParseRequestAt(buf, -1)
}

// ParseRequestAt is ParseRequest for a caller that already located the
// header block. bodyStart is the offset just past "\r\n\r\n"; a negative
// value makes the parser search for it.
func ParseRequestAt(buf []byte, bodyStart int) (*httpmsg.Request, error) {
	if len(buf) == 0 {
		return nil, ErrEmptyRequest
	}

	head := buf
	switch {
	case bodyStart >= len(headerTerminator) && bodyStart <= len(buf):
		head = buf[:bodyStart-len(headerTerminator)]
	default:
		bodyStart = len(buf)
		if headEnd := bytes.Index(buf, headerTerminator); headEnd >= 0 {
			head = buf[:headEnd]
			bodyStart = headEnd + len(headerTerminator)
		}
	}

	lines := strings.Split(string(head), "\r\n")

	line, err := ParseRequestLine(lines[0])
	if err != nil {
		return nil, err
	}

	req := httpmsg.NewRequest()
	req.Method = line.Method
	req.Path = line.Path
	req.Version = line.Version
	req.Headers = ParseHeaders(headerLines(lines[1:]))

	body, _, err := ExtractBody(buf, req.Headers, bodyStart)
	if err != nil {
		return nil, err
	}
	req.Body = body

	if line.Query != "" {
		req.Query = ParseQuery(line.Query)
	}
	return req, nil
}

// headerLines returns lines up to the first blank one.
func headerLines(lines []string) []string {
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			return lines[:i]
		}
	}
	return lines
}
