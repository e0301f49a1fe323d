package products

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/storefront/internal/domain/enums"
	"github.com/ivankudzin/storefront/internal/remote"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrImageTooLarge   = errors.New("image too large")
	ErrProductNotFound = errors.New("product not found")
)

const defaultMaxImageBytes = 512 * 1024

type Store interface {
	AddProduct(ctx context.Context, requester string, product remote.Product) error
	DeleteProduct(ctx context.Context, requester, name string) error
}

// ImageArchive keeps the original uploaded image bytes; the store itself
// only ever sees the inline data-URL blob.
type ImageArchive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

type Invalidator interface {
	InvalidateProducts(ctx context.Context) error
}

type Config struct {
	MaxImageBytes int64
}

type Service struct {
	store    Store
	archive  ImageArchive
	caches   Invalidator
	maxImage int64
	logger   *zap.Logger
}

type AddInput struct {
	Name             string
	Price            float64
	Category         enums.Category
	Image            []byte
	ImageContentType string
}

func NewService(store Store, caches Invalidator, cfg Config, logger *zap.Logger) *Service {
	maxImage := cfg.MaxImageBytes
	if maxImage <= 0 {
		maxImage = defaultMaxImageBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:    store,
		caches:   caches,
		maxImage: maxImage,
		logger:   logger,
	}
}

// AttachArchive enables best-effort archival of original images to object
// storage. The service works without it.
func (s *Service) AttachArchive(archive ImageArchive) {
	s.archive = archive
}

func (s *Service) Add(ctx context.Context, requester string, in AddInput) error {
	if s.store == nil || s.caches == nil {
		return fmt.Errorf("product dependencies are not configured")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price < 0 {
		return ErrValidation
	}
	if _, ok := enums.ParseCategory(string(in.Category)); !ok {
		return ErrValidation
	}
	if int64(len(in.Image)) > s.maxImage {
		return ErrImageTooLarge
	}

	product := remote.Product{
		Name:     name,
		Price:    in.Price,
		Category: in.Category,
		Status:   enums.ProductAvailable,
	}
	if len(in.Image) > 0 {
		contentType := in.ImageContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		product.ImageData = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(in.Image)

		if s.archive != nil {
			key := "products/" + uuid.NewString()
			if err := s.archive.Put(ctx, key, in.Image, contentType); err != nil {
				s.logger.Warn("archive product image failed", zap.String("product", name), zap.Error(err))
			}
		}
	}

	if err := s.store.AddProduct(ctx, requester, product); err != nil {
		if errors.Is(err, remote.ErrUnauthorized) {
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return fmt.Errorf("add product: %w", err)
	}

	if err := s.caches.InvalidateProducts(ctx); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.Error(err))
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, requester, name string) error {
	if s.store == nil || s.caches == nil {
		return fmt.Errorf("product dependencies are not configured")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrValidation
	}

	if err := s.store.DeleteProduct(ctx, requester, name); err != nil {
		switch {
		case errors.Is(err, remote.ErrNotFound):
			return fmt.Errorf("%w: %v", ErrProductNotFound, err)
		case errors.Is(err, remote.ErrUnauthorized):
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		default:
			return fmt.Errorf("delete product: %w", err)
		}
	}

	if err := s.caches.InvalidateProducts(ctx); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.Error(err))
	}
	return nil
}
