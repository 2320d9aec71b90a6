package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	defaultBaseURL  = "https://cloud.iexapis.com/stable"
	cacheExpiration = 5 * time.Minute
	requestTimeout  = 5 * time.Second
)

// Client fetches quotes over HTTP and caches them in Redis for a few
// minutes so hot symbols don't hammer the provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	rdb     *redis.Client
}

// NewClient is constructor. rdb may be nil to disable caching.
func NewClient(apiKey string, rdb *redis.Client) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
		rdb:     rdb,
	}
}

type quoteResponse struct {
	Symbol      string      `json:"symbol"`
	CompanyName string      `json:"companyName"`
	LatestPrice json.Number `json:"latestPrice"`
}

// Lookup returns the current quote for symbol. Unknown symbols map to
// ErrNotFound; transport and decode failures are returned as-is.
func (c *Client) Lookup(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, ErrNotFound
	}

	if q, ok := c.cached(ctx, symbol); ok {
		return q, nil
	}

	url := fmt.Sprintf("%s/stock/%s/quote?token=%s", c.baseURL, symbol, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("build quote request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Quote{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("quote service returned %d for %s", resp.StatusCode, symbol)
	}

	var body quoteResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Quote{}, fmt.Errorf("parse quote for %s: %w", symbol, err)
	}
	if body.Symbol == "" || body.LatestPrice == "" {
		return Quote{}, ErrNotFound
	}

	price, err := decimalFromNumber(body.LatestPrice)
	if err != nil {
		return Quote{}, fmt.Errorf("parse quote price for %s: %w", symbol, err)
	}

	q := Quote{Symbol: body.Symbol, Name: body.CompanyName, Price: price}
	c.cache(ctx, q)
	return q, nil
}

func decimalFromNumber(n json.Number) (decimal.Decimal, error) {
	return decimal.NewFromString(n.String())
}

func cacheKey(symbol string) string {
	return fmt.Sprintf("stock:%s:quote", symbol)
}

func (c *Client) cached(ctx context.Context, symbol string) (Quote, bool) {
	if c.rdb == nil {
		return Quote{}, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(symbol)).Result()
	if err != nil {
		return Quote{}, false
	}
	var q Quote
	if err = json.Unmarshal([]byte(raw), &q); err != nil {
		return Quote{}, false
	}
	return q, true
}

// cache is best effort; a cache outage must not fail the lookup.
func (c *Client) cache(ctx context.Context, q Quote) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return
	}
	if err = c.rdb.Set(ctx, cacheKey(q.Symbol), raw, cacheExpiration).Err(); err != nil {
		log.WithError(err).Warnf("failed to cache quote for %s", q.Symbol)
	}
}
