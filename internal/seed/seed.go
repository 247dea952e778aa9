// Package seed holds the catalog fixture loaded by the seed command.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/storefront/storefront-api/internal/core/domain"
)

//go:embed products.json
var productsJSON []byte

// Products decodes the embedded catalog fixture. Every product gets now as
// its creation time.
func Products(now time.Time) ([]*domain.Product, error) {
	var products []*domain.Product
	if err := json.Unmarshal(productsJSON, &products); err != nil {
		return nil, fmt.Errorf("decode product fixture: %w", err)
	}
	for _, p := range products {
		p.CreatedAt = now
	}
	return products, nil
}
