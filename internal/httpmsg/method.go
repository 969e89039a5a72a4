package httpmsg

import "strings"

// Method is a recognized HTTP request method.
type Method string

// Recognized methods.
const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodConnect Method = "CONNECT"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodPatch   Method = "PATCH"
)

var knownMethods = map[Method]struct{}{
	MethodGet: {}, MethodHead: {}, MethodPost: {}, MethodPut: {}, MethodDelete: {},
	MethodConnect: {}, MethodOptions: {}, MethodTrace: {}, MethodPatch: {},
}

// ParseMethod upper-cases s and reports whether it is a recognized method.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToUpper(s))
	_, ok := knownMethods[m]
	return m, ok
}

func (m Method) String() string {
	return string(m)
}
