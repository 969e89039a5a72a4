package middleware

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/parser"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// BodyParser decodes JSON and urlencoded bodies into req.ParsedBody.
// Invalid JSON short-circuits with 400.
func BodyParser() Func {
	return func(ctx context.Context, req *httpmsg.Request, res *httpmsg.Response, next Next) error {
		if strings.TrimSpace(req.Body) == "" {
			return next()
		}

		mediaType, _, _ := strings.Cut(req.Header(httpmsg.HeaderContentType), ";")
		switch strings.ToLower(strings.TrimSpace(mediaType)) {
		case contentTypeJSON:
			var parsed map[string]any
			if err := json.Unmarshal([]byte(req.Body), &parsed); err != nil {
				res.SetStatus(httpmsg.StatusBadRequest)
				res.SetTextBody("Invalid JSON body")
				return nil
			}
			req.ParsedBody = parsed
		case contentTypeForm:
			form := parser.ParseQuery(req.Body)
			parsed := make(map[string]any, form.Len())
			for _, key := range form.Keys() {
				v, _ := form.Get(key)
				parsed[key] = v
			}
			req.ParsedBody = parsed
		}
		return next()
	}
}
