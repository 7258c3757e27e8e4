package openfoodfacts

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/realfoodscore/backend/internal/domain"
)

// UnknownProductName is used when a product record carries no usable name
const UnknownProductName = "Unknown Product"

type productResponse struct {
	Code          string     `json:"code"`
	Status        int        `json:"status"`
	StatusVerbose string     `json:"status_verbose"`
	Product       offProduct `json:"product"`
}

type searchResponse struct {
	Count    int          `json:"count"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Products []offProduct `json:"products"`
}

type offIngredient struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type offProduct struct {
	Code              string          `json:"code"`
	ProductName       string          `json:"product_name"`
	ProductNameEN     string          `json:"product_name_en"`
	GenericName       string          `json:"generic_name"`
	Brands            string          `json:"brands"`
	IngredientsText   string          `json:"ingredients_text"`
	IngredientsTextEN string          `json:"ingredients_text_en"`
	Ingredients       []offIngredient `json:"ingredients"`
	ImageFrontURL     string          `json:"image_front_url"`
	ImageURL          string          `json:"image_url"`
	NutriscoreGrade   string          `json:"nutriscore_grade"`
	NovaGroup         json.RawMessage `json:"nova_group"`
	Categories        string          `json:"categories"`
}

// mapProduct converts an Open Food Facts product record to the domain model
func mapProduct(p offProduct) domain.Product {
	product := domain.Product{
		Barcode:         strings.TrimSpace(p.Code),
		Name:            firstNonEmpty(p.ProductName, p.ProductNameEN, p.GenericName, UnknownProductName),
		Brand:           firstBrand(p.Brands),
		IngredientsText: firstNonEmpty(p.IngredientsText, p.IngredientsTextEN),
		ImageURL:        firstNonEmpty(p.ImageFrontURL, p.ImageURL),
		NutriScore:      strings.ToUpper(strings.TrimSpace(p.NutriscoreGrade)),
		NovaGroup:       parseNovaGroup(p.NovaGroup),
		Categories:      strings.TrimSpace(p.Categories),
	}

	for _, ing := range p.Ingredients {
		if text := strings.TrimSpace(ing.Text); text != "" {
			product.IngredientsList = append(product.IngredientsList, text)
		}
	}

	// "unknown" and "not-applicable" are placeholders, not grades
	if len(product.NutriScore) != 1 {
		product.NutriScore = ""
	}
	return product
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// firstBrand keeps the leading brand of a comma separated list
func firstBrand(brands string) string {
	brand, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(brand)
}

// parseNovaGroup accepts both the numeric and the string encodings
func parseNovaGroup(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return validNova(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return validNova(n)
		}
	}
	return 0
}

func validNova(n int) int {
	if n < 1 || n > 4 {
		return 0
	}
	return n
}
