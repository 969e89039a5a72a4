package router

import (
	"context"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/network"
)

// Kind tells which form a Handler takes.
type Kind int

const (
	// KindSimple handlers only see the request and response.
	KindSimple Kind = iota
	// KindContext handlers also get the connection and keep-alive session,
	// which lets them stream.
	KindContext
)

func (k Kind) String() string {
	if k == KindContext {
		return "context"
	}
	return "simple"
}

// SimpleFunc fills res from req.
type SimpleFunc func(req *httpmsg.Request, res *httpmsg.Response) error

// ContextFunc fills res from req and may write directly to cc.Conn.
type ContextFunc func(ctx context.Context, req *httpmsg.Request, res *httpmsg.Response, cc *network.ConnContext) error

// Handler is a route target in one of the two forms.
type Handler struct {
	kind    Kind
	simple  SimpleFunc
	withCtx ContextFunc
}

// Simple wraps fn as a KindSimple handler.
func Simple(fn SimpleFunc) Handler {
	return Handler{kind: KindSimple, simple: fn}
}

// WithContext wraps fn as a KindContext handler.
func WithContext(fn ContextFunc) Handler {
	return Handler{kind: KindContext, withCtx: fn}
}

// Kind returns the handler form.
func (h Handler) Kind() Kind {
	return h.kind
}

// Serve invokes the handler in its own form.
func (h Handler) Serve(ctx context.Context, req *httpmsg.Request, res *httpmsg.Response, cc *network.ConnContext) error {
	switch h.kind {
	case KindContext:
		return h.withCtx(ctx, req, res, cc)
	default:
		return h.simple(req, res)
	}
}
