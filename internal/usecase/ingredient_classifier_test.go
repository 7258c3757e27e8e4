package usecase

import (
	"math"
	"testing"

	"github.com/realfoodscore/backend/internal/domain"
)

func TestClassify(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		name       string
		phrase     string
		expected   []domain.IngredientCategory
		expectKind domain.MatchKind
	}{
		{
			name:       "exact",
			phrase:     "sugar",
			expected:   []domain.IngredientCategory{domain.AddedSugar},
			expectKind: domain.MatchExact,
		},
		{
			name:       "plural of a catalog phrase",
			phrase:     "hydrogenated vegetable oils",
			expected:   []domain.IngredientCategory{domain.IndustrialOil},
			expectKind: domain.MatchExact,
		},
		{
			name:       "descriptive prefix",
			phrase:     "organic corn syrup",
			expected:   []domain.IngredientCategory{domain.AddedSugar},
			expectKind: domain.MatchContains,
		},
		{
			name:       "plural inside a longer phrase",
			phrase:     "dried strawberries",
			expected:   []domain.IngredientCategory{domain.WholeFood},
			expectKind: domain.MatchContains,
		},
		{
			name:       "two categories in one phrase",
			phrase:     "sugar and sunflower oil",
			expected:   []domain.IngredientCategory{domain.AddedSugar, domain.IndustrialOil},
			expectKind: domain.MatchContains,
		},
		{
			name:       "catalog phrase contains the ingredient",
			phrase:     "wheat flour",
			expected:   []domain.IngredientCategory{domain.WholeFood},
			expectKind: domain.MatchContained,
		},
		{
			name:       "oil name without the word oil",
			phrase:     "canola",
			expected:   []domain.IngredientCategory{domain.IndustrialOil},
			expectKind: domain.MatchContained,
		},
		{
			name:       "dual-listed phrase",
			phrase:     "amaranth",
			expected:   []domain.IngredientCategory{domain.ArtificialColor, domain.WholeFood},
			expectKind: domain.MatchExact,
		},
		{
			name:       "matching is word aligned",
			phrase:     "graham crackers",
			expected:   []domain.IngredientCategory{},
			expectKind: domain.MatchNone,
		},
		{
			name:       "unknown ingredient",
			phrase:     "natural flavor",
			expected:   []domain.IngredientCategory{},
			expectKind: domain.MatchNone,
		},
		{
			name:       "too short for containment",
			phrase:     "ox",
			expected:   []domain.IngredientCategory{},
			expectKind: domain.MatchNone,
		},
		{
			name:       "empty phrase",
			phrase:     "",
			expected:   []domain.IngredientCategory{},
			expectKind: domain.MatchNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, kind := c.Classify(domain.NormalizedIngredient{Raw: tt.phrase, Normalized: tt.phrase})

			if kind != tt.expectKind {
				t.Errorf("match kind = %s, expected %s", kind, tt.expectKind)
			}
			got := set.Categories()
			if len(got) != len(tt.expected) {
				t.Fatalf("categories = %v, expected %v", got, tt.expected)
			}
			for i := range tt.expected {
				if got[i] != tt.expected[i] {
					t.Errorf("categories = %v, expected %v", got, tt.expected)
					break
				}
			}
		})
	}
}

func TestClassify_LongerHitShadowsShorter(t *testing.T) {
	c := DefaultCatalog()

	// "high fructose corn syrup" must not also count the whole food "corn"
	set, _ := c.Classify(domain.NormalizedIngredient{Normalized: "organic high fructose corn syrup"})
	if set.Has(domain.WholeFood) {
		t.Errorf("categories = %v, corn should be shadowed", set.Categories())
	}
	if !set.Has(domain.AddedSugar) {
		t.Errorf("categories = %v, expected added sugar", set.Categories())
	}
}

func TestClassifyAll(t *testing.T) {
	c := DefaultCatalog()
	parsed, err := ParseIngredients("enriched flour (wheat flour, niacin, iron), soybean oil, red 40")
	if err != nil {
		t.Fatalf("ParseIngredients() error = %v", err)
	}

	result := c.ClassifyAll(parsed)

	if result.TotalCount != 5 {
		t.Errorf("TotalCount = %d, expected 5", result.TotalCount)
	}
	if len(result.Ingredients) != 5 {
		t.Fatalf("expected 5 classified ingredients, got %d", len(result.Ingredients))
	}
	if result.CategoryCounts[domain.IndustrialOil] != 1 {
		t.Errorf("industrial oil count = %d, expected 1", result.CategoryCounts[domain.IndustrialOil])
	}
	if result.CategoryCounts[domain.ArtificialColor] != 1 {
		t.Errorf("artificial color count = %d, expected 1", result.CategoryCounts[domain.ArtificialColor])
	}
	if result.UnclassifiedCount != 2 {
		t.Errorf("UnclassifiedCount = %d, expected 2 (niacin, iron)", result.UnclassifiedCount)
	}
	if math.Abs(result.WholeFoodRatio-0.2) > 1e-9 {
		t.Errorf("WholeFoodRatio = %v, expected 0.2", result.WholeFoodRatio)
	}
	if result.FlaggedHits() != 2 {
		t.Errorf("FlaggedHits() = %d, expected 2", result.FlaggedHits())
	}
	if result.FlaggedIngredientCount() != 2 {
		t.Errorf("FlaggedIngredientCount() = %d, expected 2", result.FlaggedIngredientCount())
	}

	for _, category := range domain.AllCategories {
		if _, ok := result.CategoryCounts[category]; !ok {
			t.Errorf("CategoryCounts missing %s", category)
		}
	}
	if result.Ingredients[1].Match != domain.MatchNone {
		t.Errorf("niacin match = %s, expected none", result.Ingredients[1].Match)
	}
}

func TestClassifyAll_StacksCategories(t *testing.T) {
	c := DefaultCatalog()
	result := c.ClassifyAll([]domain.NormalizedIngredient{
		{Raw: "amaranth", Normalized: "amaranth"},
	})

	if result.CategoryCounts[domain.ArtificialColor] != 1 || result.CategoryCounts[domain.WholeFood] != 1 {
		t.Errorf("CategoryCounts = %v", result.CategoryCounts)
	}
	if result.UnclassifiedCount != 0 {
		t.Errorf("UnclassifiedCount = %d", result.UnclassifiedCount)
	}
	if result.WholeFoodRatio != 1 {
		t.Errorf("WholeFoodRatio = %v", result.WholeFoodRatio)
	}
}

func TestClassifyAll_Empty(t *testing.T) {
	result := DefaultCatalog().ClassifyAll(nil)

	if result.TotalCount != 0 || result.WholeFoodRatio != 0 || result.UnclassifiedCount != 0 {
		t.Errorf("unexpected result for empty input: %+v", result)
	}
	if result.Ingredients == nil {
		t.Error("Ingredients should be an empty slice, not nil")
	}
}
