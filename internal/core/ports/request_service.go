package ports

import (
	"context"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// CustomRequestInput is the custom product request form.
type CustomRequestInput struct {
	Name     string
	Email    string
	Product  string
	Category string
	Details  string
	Image    *BlobUpload
}

type RequestService interface {
	SubmitRequest(ctx context.Context, in CustomRequestInput) (*domain.CustomRequest, error)
}
