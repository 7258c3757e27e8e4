package openfoodfacts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapProduct_NameFallback(t *testing.T) {
	tests := []struct {
		name     string
		product  offProduct
		expected string
	}{
		{"product name", offProduct{ProductName: "Oat Milk", ProductNameEN: "Oat Drink"}, "Oat Milk"},
		{"english name", offProduct{ProductName: "  ", ProductNameEN: "Oat Drink"}, "Oat Drink"},
		{"generic name", offProduct{GenericName: "Oat beverage"}, "Oat beverage"},
		{"unknown", offProduct{}, UnknownProductName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapProduct(tt.product).Name)
		})
	}
}

func TestMapProduct_Ingredients(t *testing.T) {
	t.Run("text wins", func(t *testing.T) {
		p := mapProduct(offProduct{
			IngredientsText:   "oats, water",
			IngredientsTextEN: "oats, water, salt",
			Ingredients:       []offIngredient{{Text: "oats"}},
		})
		assert.Equal(t, "oats, water", p.IngredientsText)
		assert.Equal(t, "oats, water", p.Ingredients())
	})

	t.Run("english text fallback", func(t *testing.T) {
		p := mapProduct(offProduct{IngredientsTextEN: "oats, water, salt"})
		assert.Equal(t, "oats, water, salt", p.Ingredients())
	})

	t.Run("structured list fallback", func(t *testing.T) {
		p := mapProduct(offProduct{Ingredients: []offIngredient{{Text: "oats"}, {Text: " "}, {Text: "salt"}}})
		assert.Equal(t, []string{"oats", "salt"}, p.IngredientsList)
		assert.Equal(t, "oats, salt", p.Ingredients())
	})

	t.Run("nothing", func(t *testing.T) {
		p := mapProduct(offProduct{ProductName: "Mystery"})
		assert.Empty(t, p.Ingredients())
	})
}

func TestMapProduct_Fields(t *testing.T) {
	p := mapProduct(offProduct{
		Code:            " 5000112637922 ",
		Brands:          "Acme, Acme Group",
		ImageURL:        "https://img.example.com/full.jpg",
		NutriscoreGrade: "unknown",
		Categories:      "Beverages, Sodas",
	})

	assert.Equal(t, "5000112637922", p.Barcode)
	assert.Equal(t, "Acme", p.Brand)
	assert.Equal(t, "https://img.example.com/full.jpg", p.ImageURL)
	assert.Empty(t, p.NutriScore)
	assert.Equal(t, "Beverages, Sodas", p.Categories)
}

func TestParseNovaGroup(t *testing.T) {
	tests := []struct {
		raw      string
		expected int
	}{
		{``, 0},
		{`4`, 4},
		{`"3"`, 3},
		{`"unknown"`, 0},
		{`7`, 0},
		{`null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseNovaGroup(json.RawMessage(tt.raw)))
		})
	}
}
