package domain

import "strings"

// Product represents a packaged food resolved from a barcode or a search
type Product struct {
	Barcode         string   `json:"barcode"`
	Name            string   `json:"name"`
	Brand           string   `json:"brand,omitempty"`
	IngredientsText string   `json:"ingredientsText,omitempty"`
	IngredientsList []string `json:"ingredientsList,omitempty"`
	ImageURL        string   `json:"imageUrl,omitempty"`
	NutriScore      string   `json:"nutriScore,omitempty"`
	NovaGroup       int      `json:"novaGroup,omitempty"` // 1-4 processing level, 0 when unknown
	Categories      string   `json:"categories,omitempty"`
}

// Ingredients returns the ingredient string to score. The free-text list
// wins; the structured list is joined as a fallback.
func (p *Product) Ingredients() string {
	if text := strings.TrimSpace(p.IngredientsText); text != "" {
		return text
	}
	parts := make([]string, 0, len(p.IngredientsList))
	for _, item := range p.IngredientsList {
		if item = strings.TrimSpace(item); item != "" {
			parts = append(parts, item)
		}
	}
	return strings.Join(parts, ", ")
}

// ProductMatch represents a search result ranked against the query
type ProductMatch struct {
	Product       Product  `json:"product"`
	MatchScore    float64  `json:"matchScore"`
	MatchedTokens []string `json:"matchedTokens,omitempty"`
}

// BarcodeScore pairs a looked-up product with its score report.
// Report is nil when the product has no ingredient data.
type BarcodeScore struct {
	Product Product             `json:"product"`
	Report  *ProductScoreReport `json:"report,omitempty"`
}
