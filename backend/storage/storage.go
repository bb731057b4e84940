// Package storage uploads course thumbnails to object storage and returns the URL
// the catalogue serves them from.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Store keeps binary assets. Upload returns the public URL of the stored object.
type Store interface {
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// ThumbnailKey is the object key for a new thumbnail of courseID.
func ThumbnailKey(courseID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ContentTypeForKey(ext) == "" {
		ext = ""
	}
	return "thumbnails/" + courseID + "/" + uuid.NewString() + ext
}

// ContentTypeForKey infers the content type from the key's extension.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".svg"):
		return "image/svg+xml"
	default:
		return ""
	}
}
