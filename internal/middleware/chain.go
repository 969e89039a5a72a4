// Package middleware holds the ordered pre-dispatch chain and the
// middlewares the server installs on it.
package middleware

import (
	"context"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
)

// Next continues the chain.
type Next func() error

// Func is one middleware. It may short-circuit by returning without
// calling next.
type Func func(ctx context.Context, req *httpmsg.Request, res *httpmsg.Response, next Next) error

// Chain runs middlewares in registration order, then the final handler.
type Chain struct {
	middlewares []Func
}

// NewChain returns a chain holding mws.
func NewChain(mws ...Func) *Chain {
	return &Chain{middlewares: append([]Func(nil), mws...)}
}

// Use appends m to the chain.
func (c *Chain) Use(m Func) {
	c.middlewares = append(c.middlewares, m)
}

// Len returns the number of middlewares.
func (c *Chain) Len() int {
	return len(c.middlewares)
}

// Run executes the chain for one request. final runs only if every
// middleware calls next.
func (c *Chain) Run(ctx context.Context, req *httpmsg.Request, res *httpmsg.Response, final Next) error {
	var step func(i int) error
	step = func(i int) error {
		if i == len(c.middlewares) {
			if final == nil {
				return nil
			}
			return final()
		}
		return c.middlewares[i](ctx, req, res, func() error {
			return step(i + 1)
		})
	}
	return step(0)
}
