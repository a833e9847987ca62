package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yourorg/stocksim/internal/domain"
)

var (
	// ErrUnknownSymbol is returned when the market-data API has no quote
	// for the requested ticker.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrUnavailable is returned when the market-data API cannot be
	// reached or answers with garbage.
	ErrUnavailable = errors.New("quote provider unavailable")
)

// Provider returns the current quote for a ticker symbol.
type Provider interface {
	Lookup(ctx context.Context, symbol string) (*domain.Quote, error)
}

// Cache is an optional read-through store for successful lookups.
type Cache interface {
	Get(ctx context.Context, symbol string) (*domain.Quote, error)
	Set(ctx context.Context, q *domain.Quote) error
}

// Client fetches quotes from an IEX-style market-data API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      Cache
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, cache Cache, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		cache:      cache,
		logger:     logger,
	}
}

type quoteResponse struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	LatestPrice float64 `json:"latestPrice"`
}

// Lookup returns the live quote for symbol, serving from the short-TTL cache
// when a recent successful lookup exists. Cache errors fall through to the
// live API; a failed live lookup is never papered over with a stale quote.
func (c *Client) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrUnknownSymbol
	}

	if c.cache != nil {
		if q, err := c.cache.Get(ctx, symbol); err == nil && q != nil {
			return q, nil
		}
	}

	url := fmt.Sprintf("%s/stock/%s/quote?token=%s", c.baseURL, symbol, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUnknownSymbol
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode quote: %v", ErrUnavailable, err)
	}
	if body.Symbol == "" || body.LatestPrice <= 0 {
		return nil, ErrUnknownSymbol
	}

	q := &domain.Quote{
		Symbol: strings.ToUpper(body.Symbol),
		Name:   body.CompanyName,
		Price:  body.LatestPrice,
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, q); err != nil {
			c.logger.Warn("failed to cache quote", "symbol", q.Symbol, "err", err)
		}
	}
	return q, nil
}
