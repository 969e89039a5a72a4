package network

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a connection or listener.
type State int32

const (
	StateCreated State = iota
	StateBound
	StateListening
	StateConnected
	StateClosing
	StateClosed
	StateError
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateBound:
		return "bound"
	case StateListening:
		return "listening"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Conn is a bidirectional byte stream to one client.
//
// Write blocks until the bytes have been handed to the kernel; its return is
// the completion signal callers wait on before sending more.
type Conn interface {
	ID() string
	RemoteAddr() string
	Read(p []byte) (int, error)
	Write(p []byte) error
	IsAlive() bool
	State() State
	// SetIdleTimeout bounds how long Read waits for bytes. Zero disables it.
	SetIdleTimeout(d time.Duration)
	// Close shuts the connection down gracefully.
	Close() error
	// Destroy drops the connection immediately, discarding unsent data.
	Destroy() error
}

// TCPConn is the Conn implementation over a net.Conn.
type TCPConn struct {
	conn  net.Conn
	id    string
	state atomic.Int32
	idle  atomic.Int64

	interrupted atomic.Bool
	closeOnce   sync.Once
}

var _ Conn = (*TCPConn)(nil)

// NewConn wraps an accepted connection.
func NewConn(c net.Conn) *TCPConn {
	tc := &TCPConn{conn: c, id: uuid.NewString()}
	tc.state.Store(int32(StateConnected))
	return tc
}

// ID returns a unique identifier for log correlation.
func (c *TCPConn) ID() string {
	return c.id
}

// RemoteAddr returns the peer address.
func (c *TCPConn) RemoteAddr() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// State returns the current lifecycle state.
func (c *TCPConn) State() State {
	return State(c.state.Load())
}

// IsAlive reports whether the connection can still be written to.
func (c *TCPConn) IsAlive() bool {
	return c.State() == StateConnected
}

// SetIdleTimeout sets the read idle window.
func (c *TCPConn) SetIdleTimeout(d time.Duration) {
	c.idle.Store(int64(d))
}

// Read reads the next chunk. A peer close surfaces as io.EOF and an idle
// timeout as ErrIdleTimeout.
func (c *TCPConn) Read(p []byte) (int, error) {
	if !c.IsAlive() {
		return 0, ErrConnectionClosed
	}

	if idle := time.Duration(c.idle.Load()); idle > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(idle)); err != nil {
			return 0, fmt.Errorf("set read deadline: %w", err)
		}
	}
	if c.interrupted.Load() {
		return 0, ErrConnectionClosed
	}

	n, err := c.conn.Read(p)
	if err == nil {
		return n, nil
	}

	switch {
	case errors.Is(err, io.EOF):
		c.state.CompareAndSwap(int32(StateConnected), int32(StateClosing))
		return n, io.EOF
	case errors.Is(err, os.ErrDeadlineExceeded):
		if c.interrupted.Load() {
			return n, ErrConnectionClosed
		}
		return n, ErrIdleTimeout
	case errors.Is(err, net.ErrClosed):
		return n, ErrConnectionClosed
	default:
		c.state.CompareAndSwap(int32(StateConnected), int32(StateError))
		return n, fmt.Errorf("read: %w", err)
	}
}

// Interrupt wakes a blocked Read, which then returns ErrConnectionClosed.
// Writes are unaffected so an in-flight response can finish.
func (c *TCPConn) Interrupt() {
	c.interrupted.Store(true)
	_ = c.conn.SetReadDeadline(time.Now())
}

// Write writes all of p or returns an error.
func (c *TCPConn) Write(p []byte) error {
	if !c.IsAlive() {
		return ErrConnectionClosed
	}
	if _, err := c.conn.Write(p); err != nil {
		c.state.CompareAndSwap(int32(StateConnected), int32(StateError))
		return fmt.Errorf("%w: %w", ErrConnectionClosed, err)
	}
	return nil
}

// Close flushes pending writes, half-closes the write side so the peer sees
// EOF and then releases the socket.
func (c *TCPConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosing))
		if tcp, ok := c.conn.(*net.TCPConn); ok {
			_ = tcp.CloseWrite()
		}
		err = c.conn.Close()
		c.state.Store(int32(StateClosed))
	})
	return err
}

// Destroy resets the connection without waiting for unsent data.
func (c *TCPConn) Destroy() error {
	var err error
	c.closeOnce.Do(func() {
		if tcp, ok := c.conn.(*net.TCPConn); ok {
			_ = tcp.SetLinger(0)
		}
		err = c.conn.Close()
		c.state.Store(int32(StateClosed))
	})
	return err
}
