// Package network is the transport side of the server: the byte-stream
// connection abstraction, the listener, the per-connection frame buffer and
// the keep-alive session.
package network

import "errors"

var (
	// ErrMessageTooLarge is returned by FrameBuffer.Append when the message
	// would grow past the configured cap. The connection must be closed.
	ErrMessageTooLarge = errors.New("message too large")
	// ErrConnectionClosed is returned when writing to or reading from a
	// connection that is no longer alive.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrIdleTimeout is returned by Read when no bytes arrive within the
	// idle window.
	ErrIdleTimeout = errors.New("connection idle timeout")
)
