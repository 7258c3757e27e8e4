package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/realfoodscore/backend/internal/domain"
	"github.com/realfoodscore/backend/internal/logging"
)

const (
	// DefaultBaseURL is the public Open Food Facts instance
	DefaultBaseURL = "https://world.openfoodfacts.org"

	maxAttempts  = 3
	maxBodyBytes = 4 << 20
)

// Options configures a Client
type Options struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Logger            *charmlog.Logger
}

// Client handles communication with the Open Food Facts API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	logger      *charmlog.Logger
	backoff     func(attempt int) time.Duration
}

// NewClient creates a new Open Food Facts client
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "RealFoodScore/1.0"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	// Open Food Facts asks for at most ~100 product reads per minute
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1.5
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	return &Client{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		baseURL:     strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		userAgent:   opts.UserAgent,
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		logger:      opts.Logger.WithPrefix("openfoodfacts"),
		backoff:     exponentialBackoff,
	}
}

// exponentialBackoff returns 500ms, 1s, 2s for attempts 1, 2, 3
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// GetProduct resolves a barcode to a product
func (c *Client) GetProduct(ctx context.Context, barcode string) (*domain.Product, error) {
	reqURL := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(barcode))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp productResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Status != 1 {
		c.logger.Debug("product not found", "barcode", barcode, "status", resp.StatusVerbose)
		return nil, fmt.Errorf("%w: barcode %s", domain.ErrProductNotFound, barcode)
	}

	product := mapProduct(resp.Product)
	if product.Barcode == "" {
		product.Barcode = barcode
	}
	return &product, nil
}

// SearchProducts runs a full text product search
func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("search_terms", strings.TrimSpace(query))
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(limit))
	reqURL := fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, params.Encode())

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	products := make([]domain.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		product := mapProduct(p)
		if product.Name == UnknownProductName && product.Ingredients() == "" {
			continue
		}
		products = append(products, product)
	}
	if len(products) == 0 {
		c.logger.Debug("no products found", "query", query)
		return nil, fmt.Errorf("%w: query %q", domain.ErrProductNotFound, query)
	}

	c.logger.Debug("search complete", "query", query, "results", len(products))
	return products, nil
}

// get performs a rate limited GET with retries on transport failures,
// 429 and 5xx responses
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrLookupUnavailable, err)
		}

		body, status, err := c.doRequest(ctx, reqURL)
		switch {
		case err != nil:
			var urlErr *url.Error
			if errors.As(err, &urlErr) && urlErr.Op == "parse" {
				return nil, err
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrLookupUnavailable, err)
		case status == http.StatusOK:
			return body, nil
		case status == http.StatusNotFound:
			return nil, domain.ErrProductNotFound
		case status == http.StatusTooManyRequests || status >= 500:
			lastErr = fmt.Errorf("%w: status %d", domain.ErrLookupUnavailable, status)
		default:
			return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrLookupUnavailable, status)
		}

		c.logger.Warn("request failed", "attempt", attempt, "err", lastErr)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrLookupUnavailable, ctx.Err())
		}
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", domain.ErrLookupUnavailable, ctx.Err())
			case <-time.After(c.backoff(attempt)):
			}
		}
	}

	c.logger.Error("all retries failed", "url", reqURL)
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxBodyBytes)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
