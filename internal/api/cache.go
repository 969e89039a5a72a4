package api

import (
	"errors"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httperror"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/static"
)

var errNoStatic = httperror.New(httpmsg.StatusNotFound, "static file serving is disabled")

// CacheStats reports file cache counters.
func (h *Handlers) CacheStats(_ *httpmsg.Request, res *httpmsg.Response) error {
	if h.static == nil {
		return errNoStatic
	}
	return res.SetJSONBody(h.static.Cache().Stats())
}

// ClearCache drops every cached file.
func (h *Handlers) ClearCache(_ *httpmsg.Request, res *httpmsg.Response) error {
	if h.static == nil {
		return errNoStatic
	}
	cache := h.static.Cache()
	dropped := cache.Stats().Entries
	cache.Clear()
	return res.SetJSONBody(map[string]any{"message": "Cache cleared", "entries": dropped})
}

// EvictCacheEntry drops one file, named by the path query parameter.
func (h *Handlers) EvictCacheEntry(req *httpmsg.Request, res *httpmsg.Response) error {
	if h.static == nil {
		return errNoStatic
	}
	path, ok := req.QueryParam("path")
	if !ok || path == "" {
		res.SetStatus(httpmsg.StatusBadRequest)
		return res.SetJSONBody(map[string]string{"error": "path is required"})
	}

	evicted, err := h.static.Evict(path)
	if err != nil {
		if errors.Is(err, static.ErrForbidden) {
			return httperror.Wrap(httpmsg.StatusForbidden, err)
		}
		return httperror.Wrap(httpmsg.StatusBadRequest, err)
	}
	return res.SetJSONBody(map[string]any{"path": path, "evicted": evicted})
}
