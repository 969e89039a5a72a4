package httpmsg

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMIMEType is used when nothing better is known.
const DefaultMIMEType = "application/octet-stream"

var mimeTypes = map[string]string{
	".html":  "text/html",
	".htm":   "text/html",
	".css":   "text/css",
	".js":    "text/javascript",
	".json":  "application/json",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".txt":   "text/plain",
	".pdf":   "application/pdf",
	".xml":   "application/xml",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".mp4":   "video/mp4",
	".mp3":   "audio/mpeg",
}

// MIMEType returns the content type for path's extension.
func MIMEType(path string) string {
	if t, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return DefaultMIMEType
}

// DetectMIMEType looks the extension up first and falls back to sniffing
// content when the extension is unknown.
func DetectMIMEType(path string, content []byte) string {
	if t := MIMEType(path); t != DefaultMIMEType || len(content) == 0 {
		return t
	}
	return mimetype.Detect(content).String()
}
