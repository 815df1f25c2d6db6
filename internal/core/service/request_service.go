package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

const requestImageFolder = "requests"

type RequestService struct {
	repo     ports.CustomRequestRepository
	blobs    ports.BlobStore
	notifier ports.NotificationDispatcher
	logger   zerolog.Logger
}

func NewRequestService(
	repo ports.CustomRequestRepository,
	blobs ports.BlobStore,
	notifier ports.NotificationDispatcher,
	logger zerolog.Logger,
) *RequestService {
	return &RequestService{repo: repo, blobs: blobs, notifier: notifier, logger: logger}
}

// SubmitRequest records a custom product request and queues a confirmation
// email. The email is best effort; the image upload is not.
func (s *RequestService) SubmitRequest(ctx context.Context, in ports.CustomRequestInput) (*domain.CustomRequest, error) {
	req := &domain.CustomRequest{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Product:   strings.TrimSpace(in.Product),
		Category:  strings.TrimSpace(in.Category),
		Details:   strings.TrimSpace(in.Details),
		CreatedAt: time.Now().UTC(),
	}

	switch {
	case req.Name == "":
		return nil, domain.Invalid("name", "name is required")
	case req.Email == "":
		return nil, domain.Invalid("email", "email is required")
	case req.Product == "":
		return nil, domain.Invalid("product", "product is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, domain.Invalid("email", "email must be a valid email")
	}

	if in.Image != nil {
		upload := *in.Image
		upload.Folder = requestImageFolder
		ref, err := s.blobs.Upload(ctx, upload)
		if err != nil {
			return nil, fmt.Errorf("upload request image: %w: %v", domain.ErrBlobStore, err)
		}
		req.Image = ref
	}

	if err := s.repo.Create(ctx, req); err != nil {
		if !req.Image.IsZero() {
			s.logger.Warn().Str("handle", req.Image.Handle).Msg("request save failed, uploaded image orphaned")
		}
		return nil, fmt.Errorf("submit request: %w", err)
	}

	s.logger.Info().Str("request_id", req.ID).Str("product", req.Product).Msg("custom request submitted")
	s.notifier.Dispatch(ports.Notification{Kind: ports.NotifyRequestConfirmation, Request: req})
	return req, nil
}
