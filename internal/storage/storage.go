package storage

import (
	"context"
	"io"
)

// ImageStore persists fetched story images. Save returns the stored path
// recorded on the story; it must not return before the bytes are fully
// written, since the story record references the path immediately after.
type ImageStore interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}
