package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

const productImageFolder = "products"

// CatalogService manages products and the lifecycle of their images in the
// blob store.
type CatalogService struct {
	repo   ports.ProductRepository
	blobs  ports.BlobStore
	logger zerolog.Logger
}

func NewCatalogService(repo ports.ProductRepository, blobs ports.BlobStore, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, blobs: blobs, logger: logger}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateProduct stores the optional image first and then the record. If the
// record save fails the uploaded blob is left behind and logged.
func (s *CatalogService) CreateProduct(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	if in.Price == nil {
		return nil, domain.Invalid("price", "price is required")
	}
	if in.Stock == nil {
		return nil, domain.Invalid("stock", "stock is required")
	}

	now := time.Now().UTC()
	p := &domain.Product{
		Name:      strings.TrimSpace(in.Name),
		Category:  strings.TrimSpace(in.Category),
		Price:     *in.Price,
		Stock:     *in.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if in.Image != nil {
		ref, err := s.upload(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		p.Image = ref
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if !p.Image.IsZero() {
			s.logger.Warn().Str("handle", p.Image.Handle).Msg("product save failed, uploaded image orphaned")
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info().Str("product_id", p.ID).Str("name", p.Name).Msg("product created")
	return p, nil
}

// UpdateProduct applies patch. A replacement image is uploaded before the
// record is saved; the previous image is removed afterwards on a best-effort
// basis.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch ports.ProductPatch) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Category != nil {
		p.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	previous := p.Image
	if patch.Image != nil {
		ref, err := s.upload(ctx, *patch.Image)
		if err != nil {
			return nil, err
		}
		p.Image = ref
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		if patch.Image != nil {
			s.logger.Warn().Str("handle", p.Image.Handle).Msg("product update failed, uploaded image orphaned")
		}
		return nil, err
	}

	if patch.Image != nil && !previous.IsZero() {
		if err := s.blobs.Delete(ctx, previous.Handle); err != nil {
			s.logger.Warn().Err(err).Str("handle", previous.Handle).Msg("failed to delete replaced product image")
		}
	}

	s.logger.Info().Str("product_id", p.ID).Msg("product updated")
	return p, nil
}

// DeleteProduct removes the product's image (if any) and then the record.
// A blob store failure aborts the delete so the record never points at a
// removed asset. If the record delete fails after the image is gone, the
// record is saved again without its image reference.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if p.Image.Handle != "" {
		if err := s.blobs.Delete(ctx, p.Image.Handle); err != nil {
			return fmt.Errorf("delete product image: %w: %v", domain.ErrBlobStore, err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if !p.Image.IsZero() {
			s.detachImage(ctx, p)
		}
		return err
	}
	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func (s *CatalogService) detachImage(ctx context.Context, p *domain.Product) {
	handle := p.Image.Handle
	p.Image = domain.ImageRef{}
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("product_id", p.ID).Str("handle", handle).
			Msg("product kept after failed delete still references a removed image")
		return
	}
	s.logger.Warn().Str("product_id", p.ID).Str("handle", handle).Msg("product delete failed, image reference cleared")
}

func (s *CatalogService) upload(ctx context.Context, in ports.BlobUpload) (domain.ImageRef, error) {
	in.Folder = productImageFolder
	ref, err := s.blobs.Upload(ctx, in)
	if err != nil {
		return domain.ImageRef{}, fmt.Errorf("upload product image: %w: %v", domain.ErrBlobStore, err)
	}
	return ref, nil
}
