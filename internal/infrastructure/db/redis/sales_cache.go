package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storefront/storefront-api/internal/core/domain"
)

const defaultSalesTTL = time.Minute

// SalesCache stores computed sales reports for a short time.
// Key format: sales:<from>:<to> with both dates as YYYY-MM-DD.
type SalesCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSalesCache creates a SalesCache; a non-positive ttl falls back to one minute.
func NewSalesCache(client *redis.Client, ttl time.Duration) *SalesCache {
	if ttl <= 0 {
		ttl = defaultSalesTTL
	}
	return &SalesCache{client: client, ttl: ttl}
}

func (c *SalesCache) Get(ctx context.Context, from, to string) (*domain.SalesReport, bool, error) {
	raw, err := c.client.Get(ctx, salesKey(from, to)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("sales cache get: %w", err)
	}

	var report domain.SalesReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, false, fmt.Errorf("sales cache decode: %w", err)
	}
	return &report, true, nil
}

func (c *SalesCache) Set(ctx context.Context, from, to string, report *domain.SalesReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("sales cache encode: %w", err)
	}
	if err := c.client.Set(ctx, salesKey(from, to), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("sales cache set: %w", err)
	}
	return nil
}

func salesKey(from, to string) string {
	return fmt.Sprintf("sales:%s:%s", from, to)
}
