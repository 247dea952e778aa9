package domain

import "time"

// Image references a catalog picture held by the object storage collaborator.
type Image struct {
	PublicID string `json:"public_id" bson:"public_id"`
	URL      string `json:"url" bson:"url"`
}

// Product is a catalog item.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Category     string    `json:"category"`
	Seller       string    `json:"seller"`
	Stock        int       `json:"stock"`
	Images       []Image   `json:"images"`
	Ratings      float64   `json:"ratings"`
	NumOfReviews int       `json:"num_of_reviews"`
	CreatedAt    time.Time `json:"created_at"`
}
