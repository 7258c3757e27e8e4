package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/realfoodscore/backend/internal/domain"
	"github.com/realfoodscore/backend/internal/logging"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50

	// fallbackKeywords is how many food keywords a retried search keeps
	fallbackKeywords = 2
)

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	CacheTTL time.Duration
	Logger   *charmlog.Logger
}

// ProductService resolves products by barcode or search, with a cache in
// front of the product database, and scores them
type ProductService struct {
	cache        domain.CacheRepository
	client       domain.ProductClient
	scorer       *ScoreService
	preprocessor *QueryPreprocessor
	matcher      *MatchingService
	cacheTTL     time.Duration
	logger       *charmlog.Logger
}

// NewProductService creates a new product service. A nil cache disables
// caching and a nil scorer uses the default catalog.
func NewProductService(
	cache domain.CacheRepository,
	client domain.ProductClient,
	scorer *ScoreService,
	config ProductServiceConfig,
) *ProductService {
	if scorer == nil {
		scorer = NewScoreService(nil)
	}
	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 720 * time.Hour // 30 days
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.WithPrefix("products")

	return &ProductService{
		cache:        cache,
		client:       client,
		scorer:       scorer,
		preprocessor: NewQueryPreprocessor(logger),
		matcher:      NewMatchingService(MatchConfig{EnableFuzzyMatching: true, Logger: logger}),
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// Scorer returns the score service used for barcode scoring
func (s *ProductService) Scorer() *ScoreService {
	return s.scorer
}

// CleanBarcode strips spaces and dashes from a barcode and checks it is
// 8 to 14 digits long
func CleanBarcode(barcode string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, strings.TrimSpace(barcode))

	if len(cleaned) < 8 || len(cleaned) > 14 || !isNumeric(cleaned) {
		return "", fmt.Errorf("%w: %q must be 8-14 digits", domain.ErrInvalidBarcode, barcode)
	}
	return cleaned, nil
}

// LookupBarcode returns the product behind a barcode.
// Flow: clean barcode -> check cache -> query product database -> cache -> return
func (s *ProductService) LookupBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	code, err := CleanBarcode(barcode)
	if err != nil {
		return nil, err
	}

	key := "product:" + code
	var cached domain.Product
	if s.getFromCache(ctx, key, &cached) {
		s.logger.Debug("cache hit", "barcode", code)
		return &cached, nil
	}

	product, err := s.client.GetProduct(ctx, code)
	if err != nil {
		return nil, err
	}

	s.setInCache(ctx, key, product)
	return product, nil
}

// ScoreBarcode looks a product up and scores its ingredient list. A product
// without ingredient data is returned with a nil report and
// domain.ErrNoIngredientData.
func (s *ProductService) ScoreBarcode(ctx context.Context, barcode string) (*domain.BarcodeScore, error) {
	product, err := s.LookupBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}

	result := &domain.BarcodeScore{Product: *product}
	ingredients := product.Ingredients()
	if ingredients == "" {
		return result, fmt.Errorf("%w: barcode %s", domain.ErrNoIngredientData, product.Barcode)
	}

	report, err := s.scorer.Score(product.Name, ingredients)
	if err != nil {
		return result, err
	}
	result.Report = report
	return result, nil
}

// SearchProducts runs a product search and returns the results ranked
// against the cleaned query, best first
func (s *ProductService) SearchProducts(ctx context.Context, query string, limit int) ([]domain.ProductMatch, error) {
	cleaned := s.preprocessor.PreprocessQuery(query)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty search query", domain.ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	key := fmt.Sprintf("search:%s:%d", cleaned, limit)
	var products []domain.Product
	if !s.getFromCache(ctx, key, &products) {
		var err error
		products, err = s.searchWithFallback(ctx, cleaned, limit)
		if err != nil {
			return nil, err
		}
		s.setInCache(ctx, key, products)
	}

	matches, err := s.matcher.RankProducts(ctx, cleaned, products)
	if err != nil {
		return nil, err
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// searchWithFallback retries an empty search once with only the most
// important food keywords of the query
func (s *ProductService) searchWithFallback(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	products, err := s.client.SearchProducts(ctx, query, limit)
	if err != nil || len(products) > 0 {
		return products, err
	}

	keywords := s.preprocessor.ExtractFoodKeywords(query)
	if len(keywords) <= fallbackKeywords {
		return products, nil
	}
	narrowed := strings.Join(keywords[:fallbackKeywords], " ")
	s.logger.Debug("retrying empty search", "query", query, "keywords", narrowed)
	return s.client.SearchProducts(ctx, narrowed, limit)
}

// getFromCache decodes a cached value into dst. Any failure is a miss.
func (s *ProductService) getFromCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("cache read failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("discarding undecodable cache entry", "key", key, "err", err)
		return false
	}
	return true
}

// setInCache stores a value; failures are logged and never surface
func (s *ProductService) setInCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache encode failed", "key", key, "err", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", "key", key, "err", err)
	}
}
