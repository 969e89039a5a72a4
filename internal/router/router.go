// Package router maps method and path onto handlers. Patterns are matched
// segment by segment; ":name" captures one segment and "*" matches any path.
package router

import (
	"context"
	"net/url"
	"strings"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httperror"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/network"
)

const wildcard = "*"

type route struct {
	method   httpmsg.Method
	pattern  string
	segments []string
	handler  Handler
}

// Router matches routes in registration order.
type Router struct {
	routes []route
}

// New returns an empty router.
func New() *Router {
	return &Router{}
}

// Handle registers h for method and pattern.
func (r *Router) Handle(method httpmsg.Method, pattern string, h Handler) {
	r.routes = append(r.routes, route{
		method:   method,
		pattern:  pattern,
		segments: splitPath(pattern),
		handler:  h,
	})
}

// Get registers a GET route.
func (r *Router) Get(pattern string, h Handler) { r.Handle(httpmsg.MethodGet, pattern, h) }

// Post registers a POST route.
func (r *Router) Post(pattern string, h Handler) { r.Handle(httpmsg.MethodPost, pattern, h) }

// Put registers a PUT route.
func (r *Router) Put(pattern string, h Handler) { r.Handle(httpmsg.MethodPut, pattern, h) }

// Delete registers a DELETE route.
func (r *Router) Delete(pattern string, h Handler) { r.Handle(httpmsg.MethodDelete, pattern, h) }

// Patch registers a PATCH route.
func (r *Router) Patch(pattern string, h Handler) { r.Handle(httpmsg.MethodPatch, pattern, h) }

// Match finds the first route for method and path.
func (r *Router) Match(method httpmsg.Method, path string) (Handler, map[string]string, bool) {
	path, _, _ = strings.Cut(path, "?")
	requested := splitPath(path)

	for _, rt := range r.routes {
		if rt.method != method {
			continue
		}
		if rt.pattern == wildcard {
			return rt.handler, map[string]string{}, true
		}
		if params, ok := matchSegments(rt.segments, requested); ok {
			return rt.handler, params, true
		}
	}
	return Handler{}, nil, false
}

// Dispatch runs the matching handler with route params attached to req,
// or renders 404.
func (r *Router) Dispatch(ctx context.Context, req *httpmsg.Request, res *httpmsg.Response, cc *network.ConnContext) error {
	h, params, ok := r.Match(req.Method, req.Path)
	if !ok {
		httperror.Render(res, httpmsg.StatusNotFound)
		return nil
	}
	req.Params = params
	return h.Serve(ctx, req, res, cc)
}

// Routes lists registered routes as "METHOD pattern".
func (r *Router) Routes() []string {
	out := make([]string, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, string(rt.method)+" "+rt.pattern)
	}
	return out
}

func splitPath(path string) []string {
	if path == wildcard {
		return []string{wildcard}
	}
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

func matchSegments(pattern, requested []string) (map[string]string, bool) {
	if len(pattern) != len(requested) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range pattern {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			value, err := url.PathUnescape(requested[i])
			if err != nil {
				value = requested[i]
			}
			params[name] = value
			continue
		}
		if seg != requested[i] {
			return nil, false
		}
	}
	return params, true
}
