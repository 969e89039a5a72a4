package filecache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Entry is one cached file.
type Entry struct {
	Path         string
	Content      []byte
	ETag         string
	LastModified time.Time
	Size         int64
	CachedAt     time.Time
	LastAccess   time.Time
}

// ComputeETag returns the quoted hex SHA-256 of content. Equal content
// always yields an equal tag.
func ComputeETag(content []byte) string {
	sum := sha256.Sum256(content)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// NewEntry builds an entry outside the cache, for files the cache refused.
func NewEntry(path string, content []byte, modTime time.Time) *Entry {
	now := time.Now()
	return &Entry{
		Path:         path,
		Content:      content,
		ETag:         ComputeETag(content),
		LastModified: modTime,
		Size:         int64(len(content)),
		CachedAt:     now,
		LastAccess:   now,
	}
}
