package network

import (
	"errors"
	"fmt"
	"net"
	"sync/atomic"
)

// Listener accepts TCP connections on one address.
type Listener struct {
	addr  string
	ln    net.Listener
	state atomic.Int32
}

// NewListener returns a listener for addr in the created state.
func NewListener(addr string) *Listener {
	l := &Listener{addr: addr}
	l.state.Store(int32(StateCreated))
	return l
}

// Listen binds the address and starts listening.
func (l *Listener) Listen() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		l.state.Store(int32(StateError))
		return fmt.Errorf("listen on %s: %w", l.addr, err)
	}
	l.ln = ln
	l.state.Store(int32(StateListening))
	return nil
}

// Accept waits for the next connection. After Close it returns
// ErrConnectionClosed.
func (l *Listener) Accept() (*TCPConn, error) {
	if l.ln == nil {
		return nil, errors.New("listener not started")
	}
	c, err := l.ln.Accept()
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, ErrConnectionClosed
		}
		return nil, fmt.Errorf("accept: %w", err)
	}
	return NewConn(c), nil
}

// Addr returns the bound address, which carries the real port when the
// configured port was 0.
func (l *Listener) Addr() string {
	if l.ln == nil {
		return l.addr
	}
	return l.ln.Addr().String()
}

// State returns the lifecycle state.
func (l *Listener) State() State {
	return State(l.state.Load())
}

// Close stops accepting connections.
func (l *Listener) Close() error {
	if l.ln == nil {
		l.state.Store(int32(StateClosed))
		return nil
	}
	l.state.Store(int32(StateClosing))
	err := l.ln.Close()
	l.state.Store(int32(StateClosed))
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close listener: %w", err)
	}
	return nil
}
