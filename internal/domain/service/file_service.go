package service

import (
	"context"
	"io"
)

// ObjectStore keeps binary uploads and hands back durable retrieval URLs.
type ObjectStore interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, fileURL string) error
}
