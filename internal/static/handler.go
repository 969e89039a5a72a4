// Package static serves files from a document root with conditional GET,
// an LRU of small files and chunked streaming of large ones.
package static

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/filecache"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/httperror"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/logger"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/network"
)

const (
	// DefaultRoot is the document root used when none is configured.
	DefaultRoot = "./public"
	// DefaultCacheThreshold is the largest file served from memory.
	DefaultCacheThreshold int64 = 100 * 1024

	indexFile = "index.html"

	cacheControlSmall = "public, max-age=3600"
	cacheControlLarge = "public, max-age=86400"
)

var (
	// ErrForbidden is returned when a request path resolves outside the root.
	ErrForbidden = errors.New("path escapes document root")
	// ErrBadPath is returned for paths that cannot be decoded.
	ErrBadPath = errors.New("invalid request path")
)

// Observer receives cache and streaming events. The metrics package
// implements it.
type Observer interface {
	CacheLookup(hit bool)
	StreamFinished(bytes int64, err error)
}

type nopObserver struct{}

func (nopObserver) CacheLookup(bool)            {}
func (nopObserver) StreamFinished(int64, error) {}

// Config configures a Handler.
type Config struct {
	Root           string
	CacheThreshold int64
	Cache          *filecache.Cache
	Logger         logger.Logger
	Observer       Observer
}

// Handler serves one document root.
type Handler struct {
	root      string
	threshold int64
	cache     *filecache.Cache
	log       logger.Logger
	observer  Observer
}

// New resolves the root to an absolute path and returns a Handler.
func New(cfg Config) (*Handler, error) {
	if cfg.Root == "" {
		cfg.Root = DefaultRoot
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve document root: %w", err)
	}
	if cfg.CacheThreshold <= 0 {
		cfg.CacheThreshold = DefaultCacheThreshold
	}
	if cfg.Cache == nil {
		cfg.Cache = filecache.New(filecache.Config{})
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	return &Handler{
		root:      root,
		threshold: cfg.CacheThreshold,
		cache:     cfg.Cache,
		log:       cfg.Logger,
		observer:  cfg.Observer,
	}, nil
}

// Root returns the absolute document root.
func (h *Handler) Root() string {
	return h.root
}

// Cache returns the handler's file cache.
func (h *Handler) Cache() *filecache.Cache {
	return h.cache
}

// Serve fills res for req. Large files are written straight to cc.Conn;
// in that case res is marked streamed and any returned error means the
// connection can no longer be trusted.
func (h *Handler) Serve(ctx context.Context, req *httpmsg.Request, res *httpmsg.Response, cc *network.ConnContext) error {
	filePath, err := h.resolve(req.Path)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			logger.FromContextOr(ctx, h.log).Warn("Directory traversal blocked", logger.String("path", req.Path))
			httperror.Render(res, httpmsg.StatusForbidden, "Access denied.")
			return nil
		}
		httperror.Render(res, httpmsg.StatusBadRequest)
		return nil
	}

	if entry, ok := h.cache.Get(filePath); ok {
		h.observer.CacheLookup(true)
		h.serveEntry(req, res, entry)
		return nil
	}
	h.observer.CacheLookup(false)

	info, err := os.Stat(filePath)
	if err != nil {
		h.renderFileError(res, filePath, err)
		return nil
	}
	if !info.Mode().IsRegular() {
		httperror.Render(res, httpmsg.StatusNotFound, "The requested resource was not found.")
		return nil
	}

	if info.Size() <= h.threshold {
		return h.serveSmall(req, res, filePath, info)
	}
	return h.streamLarge(ctx, req, res, cc, filePath, info)
}

// resolve maps a raw request path onto an absolute file path inside the root.
func (h *Handler) resolve(requestPath string) (string, error) {
	decoded, err := url.PathUnescape(requestPath)
	if err != nil {
		return "", ErrBadPath
	}
	return h.resolveDecoded(decoded)
}

// resolveDecoded is resolve for a path whose escapes are already decoded.
func (h *Handler) resolveDecoded(decoded string) (string, error) {
	if strings.IndexByte(decoded, 0) >= 0 {
		return "", ErrBadPath
	}
	if decoded == "" || strings.HasSuffix(decoded, "/") {
		decoded += indexFile
	}

	full := filepath.Join(h.root, filepath.FromSlash(decoded))
	rel, err := filepath.Rel(h.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrForbidden
	}
	return full, nil
}

func (h *Handler) serveSmall(req *httpmsg.Request, res *httpmsg.Response, filePath string, info fs.FileInfo) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		h.renderFileError(res, filePath, err)
		return nil
	}

	entry, ok := h.cache.Set(filePath, content, info.ModTime())
	if !ok {
		entry = filecache.NewEntry(filePath, content, info.ModTime())
	}
	h.log.Debug("Cached file",
		logger.String("path", filePath),
		logger.Int64("size", entry.Size),
		logger.Bool("resident", ok),
	)

	h.serveEntry(req, res, entry)
	return nil
}

func (h *Handler) serveEntry(req *httpmsg.Request, res *httpmsg.Response, entry *filecache.Entry) {
	if notModified(req, res, entry.ETag) {
		return
	}

	res.SetStatus(httpmsg.StatusOK)
	res.Headers.SetContentType(httpmsg.DetectMIMEType(entry.Path, entry.Content))
	res.Headers.Set(httpmsg.HeaderETag, entry.ETag)
	res.Headers.Set(httpmsg.HeaderLastModified, network.FormatHTTPDate(entry.LastModified))
	res.Headers.Set(httpmsg.HeaderCacheControl, cacheControlSmall)
	res.SetBody(entry.Content)
}

// notModified turns res into a 304 carrying only the ETag when the client
// already holds etag.
func notModified(req *httpmsg.Request, res *httpmsg.Response, etag string) bool {
	if req.Header(httpmsg.HeaderIfNoneMatch) != etag {
		return false
	}
	res.SetStatus(httpmsg.StatusNotModified)
	res.Headers.Set(httpmsg.HeaderETag, etag)
	return true
}

func (h *Handler) renderFileError(res *httpmsg.Response, filePath string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		h.log.Debug("File not found", logger.String("path", filePath))
		httperror.Render(res, httpmsg.StatusNotFound)
		return
	}
	h.log.Error("Failed to read file", logger.String("path", filePath), logger.Error(err))
	httperror.Render(res, httpmsg.StatusInternalServerError)
}

func largeFileETag(info fs.FileInfo) string {
	return fmt.Sprintf(`"%d-%d"`, info.Size(), info.ModTime().UnixMilli())
}

// Evict drops the cached copy of the file path names. path is taken as
// already percent-decoded, the way query parameters arrive.
func (h *Handler) Evict(path string) (bool, error) {
	filePath, err := h.resolveDecoded(path)
	if err != nil {
		return false, err
	}
	return h.cache.Delete(filePath), nil
}
