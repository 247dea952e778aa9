package handler

import (
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateOrderInput(req createOrderRequest) ports.CreateOrderInput {
	items := make([]ports.OrderItemInput, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		items = append(items, ports.OrderItemInput{
			Product:  it.Product,
			Name:     it.Name,
			Price:    it.Price,
			Image:    it.Image,
			Quantity: it.Quantity,
		})
	}

	return ports.CreateOrderInput{
		Items:          items,
		ShippingInfo:   toShippingInfo(req.ShippingInfo),
		ItemsPrice:     req.ItemsPrice,
		TaxAmount:      req.TaxAmount,
		ShippingAmount: req.ShippingAmount,
		TotalAmount:    req.TotalAmount,
		PaymentMethod:  req.PaymentMethod,
		PaymentInfo: domain.PaymentInfo{
			ID:     req.PaymentInfo.ID,
			Status: req.PaymentInfo.Status,
		},
	}
}

func toShippingInfo(s shippingInfoRequest) domain.ShippingInfo {
	return domain.ShippingInfo{
		Address: s.Address,
		City:    s.City,
		PhoneNo: s.PhoneNo,
		ZipCode: s.ZipCode,
		Country: s.Country,
	}
}

// --- Catalog ---

func toCreateProductInput(req createProductRequest) ports.CreateProductInput {
	images := make([]domain.Image, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, domain.Image{PublicID: img.PublicID, URL: img.URL})
	}
	return ports.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Seller:      req.Seller,
		Stock:       req.Stock,
		Images:      images,
	}
}

func toProductPageResponse(p *ports.ProductPage) productPageResponse {
	products := p.Items
	if products == nil {
		products = []*domain.Product{}
	}
	return productPageResponse{
		Products:      products,
		FilteredCount: p.Total,
		Page:          p.Page,
		ResPerPage:    p.Limit,
		TotalPages:    p.TotalPages,
	}
}
