// Package httpmsg holds the HTTP/1.1 message model: headers, requests,
// responses and their wire serialization.
package httpmsg

import (
	"strconv"
	"strings"
)

// Well-known header names, stored lower-cased.
const (
	HeaderContentType   = "content-type"
	HeaderContentLength = "content-length"
	HeaderConnection    = "connection"
	HeaderKeepAlive     = "keep-alive"
	HeaderETag          = "etag"
	HeaderIfNoneMatch   = "if-none-match"
	HeaderLastModified  = "last-modified"
	HeaderCacheControl  = "cache-control"
	HeaderDate          = "date"
	HeaderServer        = "server"
)

// Headers is an ordered, case-insensitive name to value mapping. Names are
// stored lower-cased; enumeration follows first insertion and a later Set of
// the same name replaces the value in place.
type Headers struct {
	names  []string
	values map[string]string
}

// NewHeaders returns an empty header set.
func NewHeaders() *Headers {
	return &Headers{values: make(map[string]string)}
}

func normalizeName(name string) string {
	return strings.ToLower(name)
}

// Set stores value under name, replacing any previous value.
func (h *Headers) Set(name, value string) {
	key := normalizeName(name)
	if _, ok := h.values[key]; !ok {
		h.names = append(h.names, key)
	}
	h.values[key] = value
}

// Get returns the value stored under name.
func (h *Headers) Get(name string) (string, bool) {
	v, ok := h.values[normalizeName(name)]
	return v, ok
}

// Value returns the value stored under name or "".
func (h *Headers) Value(name string) string {
	return h.values[normalizeName(name)]
}

// Has reports whether name is present.
func (h *Headers) Has(name string) bool {
	_, ok := h.values[normalizeName(name)]
	return ok
}

// Delete removes name.
func (h *Headers) Delete(name string) {
	key := normalizeName(name)
	if _, ok := h.values[key]; !ok {
		return
	}
	delete(h.values, key)
	for i, n := range h.names {
		if n == key {
			h.names = append(h.names[:i], h.names[i+1:]...)
			break
		}
	}
}

// Len returns the number of headers.
func (h *Headers) Len() int {
	return len(h.names)
}

// Each calls fn for every header in insertion order.
func (h *Headers) Each(fn func(name, value string)) {
	for _, n := range h.names {
		fn(n, h.values[n])
	}
}

// Names returns the header names in insertion order.
func (h *Headers) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// Map returns a copy of the headers as a plain map.
func (h *Headers) Map() map[string]string {
	out := make(map[string]string, len(h.values))
	for k, v := range h.values {
		out[k] = v
	}
	return out
}

// SetContentType sets the Content-Type header.
func (h *Headers) SetContentType(mimeType string) {
	h.Set(HeaderContentType, mimeType)
}

// ContentType returns the Content-Type header.
func (h *Headers) ContentType() string {
	return h.Value(HeaderContentType)
}

// SetContentLength sets the Content-Length header.
func (h *Headers) SetContentLength(n int64) {
	h.Set(HeaderContentLength, strconv.FormatInt(n, 10))
}

// ContentLength parses the Content-Length header. ok is false when the
// header is absent or not a non-negative integer.
func (h *Headers) ContentLength() (n int64, ok bool) {
	raw, present := h.Get(HeaderContentLength)
	if !present {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// appendTo writes "name: value\r\n" for every header.
func (h *Headers) appendTo(b []byte) []byte {
	for _, n := range h.names {
		b = append(b, n...)
		b = append(b, ": "...)
		b = append(b, h.values[n]...)
		b = append(b, "\r\n"...)
	}
	return b
}

// String renders the header block lines without the terminating blank line.
func (h *Headers) String() string {
	return string(h.appendTo(nil))
}
