package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yourorg/stocksim/internal/domain"
)

const quoteTTL = time.Minute

// QuoteCache holds recent successful quote lookups for a short window so
// back-to-back page loads don't hammer the market-data API. It is never
// consulted as a fallback when a live lookup fails.
type QuoteCache struct {
	client *redis.Client
}

func NewQuoteCache(client *redis.Client) *QuoteCache {
	return &QuoteCache{client: client}
}

func (c *QuoteCache) Get(ctx context.Context, symbol string) (*domain.Quote, error) {
	val, err := c.client.Get(ctx, "quote:"+symbol).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var q domain.Quote
	if err := json.Unmarshal([]byte(val), &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *QuoteCache) Set(ctx context.Context, q *domain.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "quote:"+q.Symbol, data, quoteTTL).Err()
}
