package network

import (
	"time"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
)

// DefaultServerName is written in the Server header.
const DefaultServerName = "static-httpd"

// httpDateLayout is the IMF-fixdate layout used in Date and Last-Modified.
const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// FormatHTTPDate formats t as an IMF-fixdate in UTC.
func FormatHTTPDate(t time.Time) string {
	return t.UTC().Format(httpDateLayout)
}

// ConnContext is what a context-aware handler receives alongside the
// request: the connection it may stream to and the keep-alive session that
// decides the connection headers.
type ConnContext struct {
	Conn       Conn
	KeepAlive  *KeepAlive
	ServerName string

	now func() time.Time
}

// NewConnContext returns a context for one connection.
func NewConnContext(conn Conn, ka *KeepAlive, serverName string) *ConnContext {
	if serverName == "" {
		serverName = DefaultServerName
	}
	return &ConnContext{Conn: conn, KeepAlive: ka, ServerName: serverName, now: time.Now}
}

// Finalize stamps the headers the connection owns: Date, Server and the
// keep-alive pair. Handlers that stream call it before writing the head.
func (c *ConnContext) Finalize(res *httpmsg.Response) {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	res.Headers.Set(httpmsg.HeaderDate, FormatHTTPDate(now()))
	res.Headers.Set(httpmsg.HeaderServer, c.ServerName)
	if c.KeepAlive != nil {
		c.KeepAlive.Apply(res.Headers)
	} else {
		res.Headers.Set(httpmsg.HeaderConnection, "close")
	}
}
