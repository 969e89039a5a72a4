package parser

import (
	"net/url"
	"strings"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
)

// ParseQuery decodes "k=v&k2=v2" into ordered params. It is used for both
// query strings and urlencoded form bodies.
func ParseQuery(raw string) *httpmsg.Params {
	params := httpmsg.NewParams()
	if strings.TrimSpace(raw) == "" {
		return params
	}

	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		params.Set(decodeComponent(key), decodeComponent(value))
	}
	return params
}

// decodeComponent percent-decodes s, keeping it verbatim when it holds an
// invalid escape. '+' is not treated as a space.
func decodeComponent(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
