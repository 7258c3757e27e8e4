package domain

// IngredientCategory is one of the fixed ingredient classes the catalog knows
type IngredientCategory string

const (
	AddedSugar          IngredientCategory = "added_sugar"
	IndustrialOil       IngredientCategory = "industrial_oil"
	Preservative        IngredientCategory = "preservative"
	ArtificialColor     IngredientCategory = "artificial_color"
	ArtificialSweetener IngredientCategory = "artificial_sweetener"
	Emulsifier          IngredientCategory = "emulsifier"
	WholeFood           IngredientCategory = "whole_food"
)

// AllCategories lists every category in declaration order. Iteration over
// categories anywhere in the engine follows this order.
var AllCategories = []IngredientCategory{
	AddedSugar,
	IndustrialOil,
	Preservative,
	ArtificialColor,
	ArtificialSweetener,
	Emulsifier,
	WholeFood,
}

// Flagged reports whether the category counts against a product
func (c IngredientCategory) Flagged() bool {
	return c != WholeFood && c.Valid()
}

// Valid reports whether c is a known category
func (c IngredientCategory) Valid() bool {
	return categoryBit(c) != 0
}

// ParseCategory resolves a category from its string form
func ParseCategory(s string) (IngredientCategory, bool) {
	c := IngredientCategory(s)
	return c, c.Valid()
}

// CategorySet is a small bitset over IngredientCategory
type CategorySet uint8

func categoryBit(c IngredientCategory) CategorySet {
	for i, known := range AllCategories {
		if known == c {
			return 1 << i
		}
	}
	return 0
}

// NewCategorySet builds a set from the given categories
func NewCategorySet(categories ...IngredientCategory) CategorySet {
	var s CategorySet
	for _, c := range categories {
		s = s.With(c)
	}
	return s
}

// With returns s plus c
func (s CategorySet) With(c IngredientCategory) CategorySet {
	return s | categoryBit(c)
}

// Union returns the union of both sets
func (s CategorySet) Union(other CategorySet) CategorySet {
	return s | other
}

// Has reports whether c is in the set
func (s CategorySet) Has(c IngredientCategory) bool {
	bit := categoryBit(c)
	return bit != 0 && s&bit != 0
}

// Empty reports whether no category is set
func (s CategorySet) Empty() bool {
	return s == 0
}

// Categories returns the members in declaration order
func (s CategorySet) Categories() []IngredientCategory {
	out := make([]IngredientCategory, 0, len(AllCategories))
	for _, c := range AllCategories {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// MatchKind records how an ingredient was matched against the catalog
type MatchKind string

const (
	MatchExact     MatchKind = "exact"
	MatchContains  MatchKind = "contains"  // ingredient contains a catalog phrase
	MatchContained MatchKind = "contained" // a catalog phrase contains the ingredient
	MatchNone      MatchKind = "none"
)

// NormalizedIngredient is a single parsed ingredient phrase
type NormalizedIngredient struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
}

// ClassifiedIngredient is a parsed ingredient with its catalog matches
type ClassifiedIngredient struct {
	NormalizedIngredient
	Categories []IngredientCategory `json:"categories"`
	Match      MatchKind            `json:"match"`
}

// Flagged reports whether any matched category counts against the product
func (i ClassifiedIngredient) Flagged() bool {
	for _, c := range i.Categories {
		if c.Flagged() {
			return true
		}
	}
	return false
}

// WholeFood reports whether the ingredient matched the whole food category
func (i ClassifiedIngredient) WholeFood() bool {
	for _, c := range i.Categories {
		if c == WholeFood {
			return true
		}
	}
	return false
}

// ClassificationResult aggregates the catalog matches of one ingredient list
type ClassificationResult struct {
	Ingredients       []ClassifiedIngredient     `json:"ingredients"`
	TotalCount        int                        `json:"totalCount"`
	CategoryCounts    map[IngredientCategory]int `json:"categoryCounts"`
	UnclassifiedCount int                        `json:"unclassifiedCount"`
	WholeFoodRatio    float64                    `json:"wholeFoodRatio"`
}

// FlaggedHits returns the number of flagged category matches. An ingredient
// matching two flagged categories counts twice.
func (r ClassificationResult) FlaggedHits() int {
	total := 0
	for c, n := range r.CategoryCounts {
		if c.Flagged() {
			total += n
		}
	}
	return total
}

// FlaggedIngredientCount returns the number of ingredients with at least one
// flagged category
func (r ClassificationResult) FlaggedIngredientCount() int {
	n := 0
	for _, ing := range r.Ingredients {
		if ing.Flagged() {
			n++
		}
	}
	return n
}

// Tier identifies one of the scoring philosophies
type Tier string

const (
	TierRFK       Tier = "rfk"
	TierGuideline Tier = "guideline"
	TierPractical Tier = "practical"
)

// AllTiers lists the tiers in report order
var AllTiers = []Tier{TierRFK, TierGuideline, TierPractical}

// ScoreBreakdown holds the sub-scores behind a tier score, each 0-100
type ScoreBreakdown struct {
	CountScore     float64 `json:"countScore"`
	FlaggedScore   float64 `json:"flaggedScore"`
	WholeFoodScore float64 `json:"wholeFoodScore"`
}

// TierScore is the bounded score one tier assigns to a product
type TierScore struct {
	Tier        Tier           `json:"tier"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Score       float64        `json:"score"` // 0-100, higher is better
	Grade       string         `json:"grade"` // A, B, C, D, F
	Label       string         `json:"label"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
}

// TierScores holds one score per tier
type TierScores struct {
	RFK       TierScore `json:"rfk"`
	Guideline TierScore `json:"guideline"`
	Practical TierScore `json:"practical"`
}

// ByTier returns the score of the given tier
func (s TierScores) ByTier(t Tier) (TierScore, bool) {
	switch t {
	case TierRFK:
		return s.RFK, true
	case TierGuideline:
		return s.Guideline, true
	case TierPractical:
		return s.Practical, true
	default:
		return TierScore{}, false
	}
}

// ProductScoreReport is the full scoring output for one product
type ProductScoreReport struct {
	Product         string               `json:"product"`
	IngredientCount int                  `json:"ingredientCount"`
	Scores          TierScores           `json:"scores"`
	Classification  ClassificationResult `json:"classification"`
	Flags           []string             `json:"flags"`
	Recommendations []string             `json:"recommendations"`
}
