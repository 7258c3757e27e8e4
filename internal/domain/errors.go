package domain

import "errors"

var (
	// ErrMalformedInput is returned when an ingredient list cannot be tokenized at all
	ErrMalformedInput = errors.New("malformed ingredient list")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidBarcode is returned when a barcode is not 8-14 digits
	ErrInvalidBarcode = errors.New("invalid barcode")

	// ErrProductNotFound is returned when a product cannot be found in Open Food Facts
	ErrProductNotFound = errors.New("product not found")

	// ErrNoIngredientData is returned when a product was found but carries no ingredient list
	ErrNoIngredientData = errors.New("no ingredient data available for this product")

	// ErrLookupUnavailable is returned when the product database cannot be reached
	ErrLookupUnavailable = errors.New("product lookup unavailable")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
