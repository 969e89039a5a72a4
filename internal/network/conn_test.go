package network_test

import (
	"bufio"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/network"
)

func acceptPair(t *testing.T) (*network.TCPConn, net.Conn) {
	t.Helper()

	ln := network.NewListener("127.0.0.1:0")
	require.NoError(t, ln.Listen())
	t.Cleanup(func() { _ = ln.Close() })
	assert.Equal(t, network.StateListening, ln.State())

	client, err := net.Dial("tcp", ln.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	server, err := ln.Accept()
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Destroy() })

	return server, client
}

func TestTCPConn_ReadWrite(t *testing.T) {
	t.Parallel()

	server, client := acceptPair(t)
	assert.NotEmpty(t, server.ID())
	assert.NotEmpty(t, server.RemoteAddr())
	assert.True(t, server.IsAlive())

	_, err := client.Write([]byte("ping"))
	require.NoError(t, err)

	p := make([]byte, 16)
	n, err := server.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(p[:n]))

	require.NoError(t, server.Write([]byte("pong")))
	got := make([]byte, 4)
	_, err = io.ReadFull(client, got)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(got))
}

func TestTCPConn_PeerCloseIsEOF(t *testing.T) {
	t.Parallel()

	server, client := acceptPair(t)
	require.NoError(t, client.Close())

	_, err := server.Read(make([]byte, 8))
	require.ErrorIs(t, err, io.EOF)
	assert.False(t, server.IsAlive())
	require.ErrorIs(t, server.Write([]byte("x")), network.ErrConnectionClosed)
}

func TestTCPConn_IdleTimeout(t *testing.T) {
	t.Parallel()

	server, _ := acceptPair(t)
	server.SetIdleTimeout(50 * time.Millisecond)

	_, err := server.Read(make([]byte, 8))
	require.ErrorIs(t, err, network.ErrIdleTimeout)
}

func TestTCPConn_CloseIsGraceful(t *testing.T) {
	t.Parallel()

	server, client := acceptPair(t)
	require.NoError(t, server.Write([]byte("bye")))
	require.NoError(t, server.Close())
	assert.Equal(t, network.StateClosed, server.State())

	data, err := io.ReadAll(bufio.NewReader(client))
	require.NoError(t, err)
	assert.Equal(t, "bye", string(data))

	require.NoError(t, server.Close(), "second close is a no-op")
}

func TestListener_CloseUnblocksAccept(t *testing.T) {
	t.Parallel()

	ln := network.NewListener("127.0.0.1:0")
	assert.Equal(t, network.StateCreated, ln.State())
	require.NoError(t, ln.Listen())

	errCh := make(chan error, 1)
	go func() {
		_, err := ln.Accept()
		errCh <- err
	}()

	require.NoError(t, ln.Close())
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, network.ErrConnectionClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("accept did not return after close")
	}
	assert.Equal(t, network.StateClosed, ln.State())
}

func TestConnContext_Finalize(t *testing.T) {
	t.Parallel()

	server, _ := acceptPair(t)
	ka := network.NewKeepAlive(network.DefaultKeepAliveConfig())
	cc := network.NewConnContext(server, ka, "")

	res := httpmsg.NewResponse()
	cc.Finalize(res)

	assert.Equal(t, network.DefaultServerName, res.Headers.Value(httpmsg.HeaderServer))
	assert.Equal(t, "keep-alive", res.Headers.Value(httpmsg.HeaderConnection))
	assert.Equal(t, "timeout=60, max=100", res.Headers.Value(httpmsg.HeaderKeepAlive))
	assert.True(t, res.Headers.Has(httpmsg.HeaderDate))
}

func TestFormatHTTPDate(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("EST", -5*3600))
	assert.Equal(t, "Wed, 04 Mar 2026 10:06:07 GMT", network.FormatHTTPDate(ts))
}

func TestTCPConn_InterruptWakesRead(t *testing.T) {
	t.Parallel()

	server, client := acceptPair(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := server.Read(make([]byte, 8))
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	server.Interrupt()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, network.ErrConnectionClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("read was not interrupted")
	}

	require.NoError(t, server.Write([]byte("late")), "writes still work after interrupt")
	got := make([]byte, 4)
	_, err := io.ReadFull(client, got)
	require.NoError(t, err)
	assert.Equal(t, "late", string(got))
}
