package ports

import (
	"context"
	"io"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// BlobUpload describes a file to be stored.
type BlobUpload struct {
	Folder      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// BlobStore keeps uploaded images and returns a URL plus a deletable handle.
type BlobStore interface {
	Upload(ctx context.Context, in BlobUpload) (domain.ImageRef, error)
	Delete(ctx context.Context, handle string) error
}
