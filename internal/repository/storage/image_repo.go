package storage

import (
	"context"
	"io"
	"time"
)

// ImageRepository stores workout image objects. Implementations return
// object keys, never URLs; readable URLs are presigned on demand.
type ImageRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	DeleteMany(ctx context.Context, objectPaths []string) error
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}
