package httpmsg

// Request is one decoded HTTP request. It is built once by the parser;
// afterwards only middleware and the router attach ParsedBody and Params.
type Request struct {
	Method  Method
	Path    string
	Query   *Params
	Version string
	Headers *Headers
	// Body is the raw body decoded as UTF-8 text.
	Body string
	// ParsedBody is filled by the body parser middleware for JSON and form bodies.
	ParsedBody map[string]any
	// Params holds route parameters attached by the router.
	Params map[string]string
}

// NewRequest returns a request with empty collections.
func NewRequest() *Request {
	return &Request{
		Method:  MethodGet,
		Path:    "/",
		Version: "HTTP/1.1",
		Query:   NewParams(),
		Headers: NewHeaders(),
		Params:  map[string]string{},
	}
}

// Header returns the named request header or "".
func (r *Request) Header(name string) string {
	return r.Headers.Value(name)
}

// QueryParam returns the named query parameter.
func (r *Request) QueryParam(name string) (string, bool) {
	return r.Query.Get(name)
}

func (r *Request) String() string {
	return string(r.Method) + " " + r.Path + " " + r.Version
}
