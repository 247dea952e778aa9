package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

const (
	defaultPageSize = 8
	maxPageSize     = 100
	// keeps (page-1)*limit well inside int64 for the repository skip
	maxPage = 1_000_000
)

type CatalogService struct {
	products ports.ProductRepository
	logger   zerolog.Logger
}

func NewCatalogService(products ports.ProductRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{products: products, logger: logger}
}

// List returns one page of products matching filter. Page defaults to 1 and
// Limit to defaultPageSize.
func (s *CatalogService) List(ctx context.Context, filter ports.ListProductsFilter) (*ports.ProductPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Page > maxPage {
		return nil, domain.Validationf("page cannot exceed %d", maxPage)
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	filter.Keyword = strings.TrimSpace(filter.Keyword)

	items, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.ProductPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	switch {
	case strings.TrimSpace(input.Name) == "":
		return nil, domain.Validation("please enter product name")
	case len([]rune(input.Name)) > 200:
		return nil, domain.Validation("product name cannot exceed 200 characters")
	case input.Price < 0:
		return nil, domain.Validation("price must not be negative")
	case input.Stock < 0:
		return nil, domain.Validation("stock must not be negative")
	case strings.TrimSpace(input.Category) == "":
		return nil, domain.Validation("please enter product category")
	}

	images := input.Images
	if images == nil {
		images = []domain.Image{}
	}
	p, err := s.products.Create(ctx, &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Seller:      input.Seller,
		Stock:       input.Stock,
		Images:      images,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("product_id", p.ID).Msg("product created")
	return p, nil
}
