package static

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/logger"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/network"
)

const (
	smallChunkSize = 64 * 1024
	largeChunkSize = 256 * 1024
	largeFileSize  = 1024 * 1024
)

// ErrStreamFailure is returned when the file cannot be read after the
// response head has been sent.
var ErrStreamFailure = errors.New("stream failure")

// chunkSize picks the read size for a file of size bytes.
func chunkSize(size int64) int {
	if size >= largeFileSize {
		return largeChunkSize
	}
	return smallChunkSize
}

func (h *Handler) streamLarge(
	ctx context.Context,
	req *httpmsg.Request,
	res *httpmsg.Response,
	cc *network.ConnContext,
	filePath string,
	info fs.FileInfo,
) error {
	etag := largeFileETag(info)
	if notModified(req, res, etag) {
		return nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		h.renderFileError(res, filePath, err)
		return nil
	}
	defer f.Close()

	res.SetStatus(httpmsg.StatusOK)
	res.Headers.SetContentType(httpmsg.MIMEType(filePath))
	res.Headers.SetContentLength(info.Size())
	res.Headers.Set(httpmsg.HeaderLastModified, network.FormatHTTPDate(info.ModTime()))
	res.Headers.Set(httpmsg.HeaderETag, etag)
	res.Headers.Set(httpmsg.HeaderCacheControl, cacheControlLarge)
	cc.Finalize(res)

	logger.FromContextOr(ctx, h.log).Debug("Streaming file",
		logger.String("path", filePath),
		logger.Int64("size", info.Size()),
	)

	res.MarkStreamed()
	if err := cc.Conn.Write(res.HeaderBytes()); err != nil {
		h.observer.StreamFinished(0, err)
		return err
	}

	// never send more than the Content-Length already on the wire
	body := io.LimitReader(f, info.Size())
	written, err := copyChunks(ctx, cc.Conn, body, chunkSize(info.Size()))
	if err == nil && written != info.Size() {
		err = fmt.Errorf("%w: file size changed, sent %d of %d bytes", ErrStreamFailure, written, info.Size())
	}
	h.observer.StreamFinished(written, err)
	return err
}

// copyChunks writes r to conn one chunk at a time. Each Write returns only
// once the chunk is handed off, so a single chunk is in flight.
func copyChunks(ctx context.Context, conn network.Conn, r io.Reader, size int) (int64, error) {
	buf := make([]byte, size)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, fmt.Errorf("%w: %w", network.ErrConnectionClosed, err)
		}
		if !conn.IsAlive() {
			return written, network.ErrConnectionClosed
		}

		n, readErr := io.ReadFull(r, buf)
		if n > 0 {
			if err := conn.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
		}

		switch {
		case readErr == nil:
		case errors.Is(readErr, io.EOF), errors.Is(readErr, io.ErrUnexpectedEOF):
			return written, nil
		default:
			return written, fmt.Errorf("%w: %w", ErrStreamFailure, readErr)
		}
	}
}
