package network

import "bytes"

// DefaultMaxMessageSize caps a single buffered message.
const DefaultMaxMessageSize = 10 * 1024 * 1024

var headerTerminator = []byte("\r\n\r\n")

// FrameBuffer accumulates the chunks of one in-flight message. It is owned
// by a single connection and is not safe for concurrent use.
type FrameBuffer struct {
	chunks  [][]byte
	total   int
	maxSize int

	// tail holds the last len(headerTerminator)-1 bytes appended so far so a
	// terminator split across any number of chunks is still found.
	tail         []byte
	headersFound bool
	headerEndsAt int
}

// FrameStats describes the buffered message.
type FrameStats struct {
	Chunks       int `json:"chunks"`
	TotalBytes   int `json:"total_bytes"`
	AvgChunkSize int `json:"avg_chunk_size"`
	MaxSize      int `json:"max_size"`
}

// NewFrameBuffer returns a buffer capped at maxSize bytes. A non-positive
// maxSize selects DefaultMaxMessageSize.
func NewFrameBuffer(maxSize int) *FrameBuffer {
	if maxSize <= 0 {
		maxSize = DefaultMaxMessageSize
	}
	return &FrameBuffer{maxSize: maxSize, headerEndsAt: -1}
}

// Append copies chunk into the buffer. When the running total would exceed
// the cap nothing is appended and ErrMessageTooLarge is returned.
func (b *FrameBuffer) Append(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	if b.total+len(chunk) > b.maxSize {
		return ErrMessageTooLarge
	}

	if !b.headersFound {
		b.scan(chunk)
	}

	owned := make([]byte, len(chunk))
	copy(owned, chunk)
	b.chunks = append(b.chunks, owned)
	b.total += len(chunk)
	return nil
}

// scan looks for the terminator in the boundary region between what is
// already buffered and chunk, then inside chunk itself.
func (b *FrameBuffer) scan(chunk []byte) {
	keep := len(headerTerminator) - 1

	if len(b.tail) > 0 {
		head := chunk
		if len(head) > keep {
			head = head[:keep]
		}
		boundary := make([]byte, 0, len(b.tail)+len(head))
		boundary = append(boundary, b.tail...)
		boundary = append(boundary, head...)
		if i := bytes.Index(boundary, headerTerminator); i >= 0 {
			b.markFound(b.total - len(b.tail) + i)
			return
		}
	}

	if i := bytes.Index(chunk, headerTerminator); i >= 0 {
		b.markFound(b.total + i)
		return
	}

	if len(chunk) >= keep {
		b.tail = append(b.tail[:0], chunk[len(chunk)-keep:]...)
		return
	}
	joined := append(append([]byte(nil), b.tail...), chunk...)
	if len(joined) > keep {
		joined = joined[len(joined)-keep:]
	}
	b.tail = joined
}

func (b *FrameBuffer) markFound(offset int) {
	b.headersFound = true
	b.headerEndsAt = offset + len(headerTerminator)
	b.tail = nil
}

// HasCompleteHeaders reports whether "\r\n\r\n" has been received.
func (b *FrameBuffer) HasCompleteHeaders() bool {
	return b.headersFound
}

// HeaderEnd returns the offset just past the header terminator, or -1.
func (b *FrameBuffer) HeaderEnd() int {
	return b.headerEndsAt
}

// Bytes returns the buffered message as one contiguous slice. This is the
// only place chunks are joined.
func (b *FrameBuffer) Bytes() []byte {
	switch len(b.chunks) {
	case 0:
		return []byte{}
	case 1:
		return b.chunks[0]
	default:
		return bytes.Join(b.chunks, nil)
	}
}

// Reset discards everything buffered.
func (b *FrameBuffer) Reset() {
	b.chunks = nil
	b.total = 0
	b.tail = nil
	b.headersFound = false
	b.headerEndsAt = -1
}

// Size returns the number of buffered bytes.
func (b *FrameBuffer) Size() int {
	return b.total
}

// MaxSize returns the configured cap.
func (b *FrameBuffer) MaxSize() int {
	return b.maxSize
}

// Stats returns buffer statistics.
func (b *FrameBuffer) Stats() FrameStats {
	avg := 0
	if len(b.chunks) > 0 {
		avg = b.total / len(b.chunks)
	}
	return FrameStats{
		Chunks:       len(b.chunks),
		TotalBytes:   b.total,
		AvgChunkSize: avg,
		MaxSize:      b.maxSize,
	}
}
