package handler

import "github.com/storefront/storefront-api/internal/core/domain"

type imageRequest struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url" validate:"required"`
}

type createProductRequest struct {
	Name        string         `json:"name"        validate:"required,max=200"`
	Description string         `json:"description" validate:"required"`
	Price       float64        `json:"price"       validate:"gte=0"`
	Category    string         `json:"category"    validate:"required"`
	Seller      string         `json:"seller"      validate:"required"`
	Stock       int            `json:"stock"       validate:"gte=0"`
	Images      []imageRequest `json:"images"      validate:"dive"`
}

type productResponse struct {
	Product *domain.Product `json:"product"`
}

type productPageResponse struct {
	Products      []*domain.Product `json:"products"`
	FilteredCount int64             `json:"filtered_count"`
	Page          int               `json:"page"`
	ResPerPage    int               `json:"res_per_page"`
	TotalPages    int               `json:"total_pages"`
}
