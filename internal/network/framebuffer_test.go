package network_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/network"
)

const rawRequest = "GET /index.html HTTP/1.1\r\nHost: localhost\r\nAccept: */*\r\n\r\n"

func TestFrameBuffer_DetectsTerminatorAtEveryChunkBoundary(t *testing.T) {
	t.Parallel()

	data := []byte(rawRequest)
	for size := 1; size <= len(data); size++ {
		buf := network.NewFrameBuffer(0)
		for off := 0; off < len(data); off += size {
			end := min(off+size, len(data))
			require.False(t, buf.HasCompleteHeaders(), "chunk size %d: found early at %d", size, off)
			require.NoError(t, buf.Append(data[off:end]))
		}
		assert.True(t, buf.HasCompleteHeaders(), "chunk size %d", size)
		assert.Equal(t, len(data), buf.HeaderEnd(), "chunk size %d", size)
		assert.Equal(t, rawRequest, string(buf.Bytes()))
	}
}

func TestFrameBuffer_TerminatorSplitAcrossFourChunks(t *testing.T) {
	t.Parallel()

	buf := network.NewFrameBuffer(0)
	for _, chunk := range []string{"GET / HTTP/1.1\r", "\n", "\r", "\nbody"} {
		require.NoError(t, buf.Append([]byte(chunk)))
	}

	assert.True(t, buf.HasCompleteHeaders())
	assert.Equal(t, len("GET / HTTP/1.1\r\n\r\n"), buf.HeaderEnd())
}

func TestFrameBuffer_NoTerminator(t *testing.T) {
	t.Parallel()

	buf := network.NewFrameBuffer(0)
	require.NoError(t, buf.Append([]byte("GET / HTTP/1.1\r\nHost: x\r\n")))
	require.NoError(t, buf.Append([]byte("\n\r")))

	assert.False(t, buf.HasCompleteHeaders())
	assert.Equal(t, -1, buf.HeaderEnd())
}

func TestFrameBuffer_RejectsOverflowWithoutAppending(t *testing.T) {
	t.Parallel()

	buf := network.NewFrameBuffer(8)
	require.NoError(t, buf.Append([]byte("12345")))

	err := buf.Append([]byte("6789"))
	require.ErrorIs(t, err, network.ErrMessageTooLarge)
	assert.Equal(t, 5, buf.Size())
	assert.Equal(t, "12345", string(buf.Bytes()))

	require.NoError(t, buf.Append([]byte("678")))
	assert.Equal(t, 8, buf.Size())
}

func TestFrameBuffer_AppendCopiesChunk(t *testing.T) {
	t.Parallel()

	buf := network.NewFrameBuffer(0)
	chunk := []byte("abc")
	require.NoError(t, buf.Append(chunk))
	chunk[0] = 'z'

	assert.Equal(t, "abc", string(buf.Bytes()))
}

func TestFrameBuffer_ResetAndStats(t *testing.T) {
	t.Parallel()

	buf := network.NewFrameBuffer(1024)
	require.NoError(t, buf.Append([]byte("GET / HTTP/1.1\r\n\r\n")))
	require.NoError(t, buf.Append([]byte("xy")))

	stats := buf.Stats()
	assert.Equal(t, 2, stats.Chunks)
	assert.Equal(t, 20, stats.TotalBytes)
	assert.Equal(t, 10, stats.AvgChunkSize)
	assert.Equal(t, 1024, stats.MaxSize)

	buf.Reset()
	assert.Equal(t, 0, buf.Size())
	assert.False(t, buf.HasCompleteHeaders())
	assert.Empty(t, buf.Bytes())
	assert.Equal(t, 0, buf.Stats().AvgChunkSize)
}
