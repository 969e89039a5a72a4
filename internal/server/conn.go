package server

import (
	"context"
	"errors"
	"io"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httperror"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/logger"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/network"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/parser"
)

// Reasons reported to the Observer when a connection ends.
const (
	closeClientClosed  = "client_closed"
	closeIdleTimeout   = "idle_timeout"
	closeKeepAliveDone = "keep_alive_done"
	closeTooLarge      = "too_large"
	closeWriteFailed   = "write_failed"
	closeStreamAborted = "stream_aborted"
	closeShutdown      = "shutdown"
	closeReadFailed    = "read_failed"
)

// connState is the per-connection state the loop threads through.
type connState struct {
	conn  network.Conn
	cc    *network.ConnContext
	ka    *network.KeepAlive
	frame *network.FrameBuffer
	log   logger.Logger
}

// ServeConn runs the request cycle on conn until it closes. Messages are
// handled strictly one at a time.
func (s *Server) ServeConn(ctx context.Context, conn network.Conn) {
	ka := network.NewKeepAlive(s.cfg.KeepAlive)
	st := &connState{
		conn:  conn,
		cc:    network.NewConnContext(conn, ka, s.cfg.Name),
		ka:    ka,
		frame: network.NewFrameBuffer(s.cfg.MaxMessageSize),
		log: s.log.With(
			logger.ConnID(conn.ID()),
			logger.String("remote_addr", conn.RemoteAddr()),
		),
	}

	s.observer.ConnectionOpened()
	st.log.Debug("Client connected")
	conn.SetIdleTimeout(s.cfg.IdleTimeout)

	reason := s.readLoop(logger.WithContext(ctx, st.log), st)

	if reason == closeStreamAborted {
		_ = conn.Destroy()
	} else {
		_ = conn.Close()
	}
	s.observer.ConnectionClosed(reason)
	st.log.Debug("Client disconnected",
		logger.String("reason", reason),
		logger.Int("requests", ka.Stats().RequestCount),
	)
}

func (s *Server) readLoop(ctx context.Context, st *connState) string {
	buf := make([]byte, s.cfg.ReadBufferSize)
	for {
		n, err := st.conn.Read(buf)
		if n > 0 {
			if open, reason := s.handleChunk(ctx, st, buf[:n]); !open {
				return reason
			}
		}
		if err != nil {
			return readCloseReason(err)
		}
	}
}

func readCloseReason(err error) string {
	switch {
	case errors.Is(err, io.EOF):
		return closeClientClosed
	case errors.Is(err, network.ErrIdleTimeout):
		return closeIdleTimeout
	case errors.Is(err, network.ErrConnectionClosed):
		return closeShutdown
	default:
		return closeReadFailed
	}
}

// handleChunk buffers one read and, once a full message is present,
// dispatches it. It reports whether the connection stays open.
func (s *Server) handleChunk(ctx context.Context, st *connState, chunk []byte) (bool, string) {
	if err := st.frame.Append(chunk); err != nil {
		st.log.Warn("Request too large",
			logger.Int("buffered", st.frame.Size()),
			logger.Int("chunk", len(chunk)),
			logger.Int("max", st.frame.MaxSize()),
		)
		s.observer.ParseFailed(closeTooLarge)
		res := httpmsg.NewResponse()
		httperror.Render(res, httperror.StatusFor(err))
		s.writeClosing(st, res)
		return false, closeTooLarge
	}

	if !st.frame.HasCompleteHeaders() {
		return true, ""
	}

	req, err := parser.ParseRequestAt(st.frame.Bytes(), st.frame.HeaderEnd())
	if err != nil {
		if parser.IsIncomplete(err) {
			return true, ""
		}
		return s.rejectMalformed(st, err)
	}

	st.ka.IncrementRequests()
	res := httpmsg.NewResponse()

	err = s.chain.Run(ctx, req, res, func() error {
		return s.router.Dispatch(ctx, req, res, st.cc)
	})
	if err != nil {
		if res.Streamed() {
			st.log.Warn("Streamed response aborted",
				append(logger.Request(req.Method.String(), req.Path), logger.Error(err))...,
			)
			return false, closeStreamAborted
		}
		st.log.Error("Handler failed",
			append(logger.Request(req.Method.String(), req.Path), logger.Error(err))...,
		)
		res = httpmsg.NewResponse()
		httperror.Render(res, httperror.StatusFor(err))
	}

	if !res.Streamed() {
		st.cc.Finalize(res)
		if err := st.conn.Write(res.Serialize()); err != nil {
			st.log.Debug("Write failed", logger.Error(err))
			return false, closeWriteFailed
		}
	}

	st.frame.Reset()
	return s.keepOpen(st)
}

// rejectMalformed answers 400 and keeps the connection when the session
// allows it.
func (s *Server) rejectMalformed(st *connState, err error) (bool, string) {
	st.log.Debug("Malformed request", logger.Error(err))
	s.observer.ParseFailed(parseFailureReason(err))

	st.ka.IncrementRequests()
	res := httpmsg.NewResponse()
	httperror.Render(res, httpmsg.StatusBadRequest)
	st.cc.Finalize(res)
	if werr := st.conn.Write(res.Serialize()); werr != nil {
		return false, closeWriteFailed
	}

	st.frame.Reset()
	return s.keepOpen(st)
}

func (s *Server) keepOpen(st *connState) (bool, string) {
	if s.shutdown.Load() {
		return false, closeShutdown
	}
	if !st.ka.ShouldKeepAlive() {
		return false, closeKeepAliveDone
	}
	return true, ""
}

// writeClosing sends res with Connection: close regardless of the session.
func (s *Server) writeClosing(st *connState, res *httpmsg.Response) {
	if !st.conn.IsAlive() {
		return
	}
	st.cc.Finalize(res)
	res.Headers.Set(httpmsg.HeaderConnection, "close")
	res.Headers.Delete(httpmsg.HeaderKeepAlive)
	if err := st.conn.Write(res.Serialize()); err != nil {
		st.log.Debug("Write failed", logger.Error(err))
	}
}

func parseFailureReason(err error) string {
	switch {
	case errors.Is(err, parser.ErrMalformedRequestLine):
		return "malformed_request_line"
	case errors.Is(err, parser.ErrUnsupportedMethod):
		return "unsupported_method"
	case errors.Is(err, parser.ErrUnsupportedVersion):
		return "unsupported_version"
	case errors.Is(err, parser.ErrEmptyRequest):
		return "empty_request"
	default:
		return "other"
	}
}
