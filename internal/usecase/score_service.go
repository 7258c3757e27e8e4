package usecase

import (
	"fmt"

	"github.com/realfoodscore/backend/internal/domain"
)

var flagNouns = map[domain.IngredientCategory]string{
	domain.AddedSugar:          "added sugar(s)",
	domain.IndustrialOil:       "industrial oil(s)",
	domain.Preservative:        "artificial preservative(s)",
	domain.ArtificialColor:     "artificial color(s)",
	domain.ArtificialSweetener: "artificial sweetener(s)",
	domain.Emulsifier:          "emulsifier(s) or gum(s)",
}

// ScoreService runs the scoring pipeline: tokenize, classify, score every
// tier and assemble the report. It holds no mutable state.
type ScoreService struct {
	catalog *Catalog
	rfk     TierConfig
	guide   TierConfig
	prac    TierConfig
}

// NewScoreService creates a score service over the given catalog. A nil
// catalog selects the default one.
func NewScoreService(catalog *Catalog) *ScoreService {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &ScoreService{
		catalog: catalog,
		rfk:     RFKTier,
		guide:   GuidelineTier,
		prac:    PracticalTier,
	}
}

// Catalog returns the catalog the service classifies against
func (s *ScoreService) Catalog() *Catalog {
	return s.catalog
}

// Score produces the full report for a product. The only error is
// domain.ErrMalformedInput; an empty ingredient list is valid input.
func (s *ScoreService) Score(name, ingredients string) (*domain.ProductScoreReport, error) {
	parsed, err := ParseIngredients(ingredients)
	if err != nil {
		return nil, err
	}

	classification := s.catalog.ClassifyAll(parsed)
	scores := domain.TierScores{
		RFK:       s.rfk.Score(classification),
		Guideline: s.guide.Score(classification),
		Practical: s.prac.Score(classification),
	}

	return &domain.ProductScoreReport{
		Product:         name,
		IngredientCount: classification.TotalCount,
		Scores:          scores,
		Classification:  classification,
		Flags:           buildFlags(classification),
		Recommendations: buildRecommendations(classification, scores.Guideline.Grade),
	}, nil
}

// Score scores a product against the default catalog
func Score(name, ingredients string) (*domain.ProductScoreReport, error) {
	return NewScoreService(nil).Score(name, ingredients)
}

func buildFlags(result domain.ClassificationResult) []string {
	flags := make([]string, 0)
	for _, c := range domain.AllCategories {
		n := result.CategoryCounts[c]
		if !c.Flagged() || n == 0 {
			continue
		}
		flags = append(flags, fmt.Sprintf("Contains %d %s", n, flagNouns[c]))
	}
	return flags
}

func buildRecommendations(result domain.ClassificationResult, guidelineGrade string) []string {
	has := func(c domain.IngredientCategory) bool {
		return result.CategoryCounts[c] > 0
	}

	recs := make([]string, 0)
	if has(domain.AddedSugar) {
		recs = append(recs, "Look for unsweetened alternatives")
	}
	if has(domain.IndustrialOil) {
		recs = append(recs, "Choose products with olive oil, butter, or avocado oil")
	}
	if has(domain.Preservative) || has(domain.ArtificialColor) || has(domain.ArtificialSweetener) {
		recs = append(recs, "Seek products with simple, recognizable ingredients")
	}
	if has(domain.Emulsifier) {
		recs = append(recs, "Prefer products without added gums or emulsifiers")
	}
	if guidelineGrade == "D" || guidelineGrade == "F" {
		recs = append(recs, "Consider whole food alternatives to this product")
	}
	return recs
}
