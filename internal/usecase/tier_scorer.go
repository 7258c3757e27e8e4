package usecase

import (
	"math"

	"github.com/realfoodscore/backend/internal/domain"
)

// Component weights shared by every tier. They sum to 1.
const (
	CountWeight     = 0.25
	FlaggedWeight   = 0.50
	WholeFoodWeight = 0.25
)

// CountCurve scores the number of ingredients. Counts up to Free score 100,
// each further ingredient up to Knee costs Step and every one past Knee
// costs TailStep.
type CountCurve struct {
	Free     int
	Step     float64
	Knee     int
	TailStep float64
}

// Score returns the curve value for n ingredients, floored at 0
func (c CountCurve) Score(n int) float64 {
	if n <= c.Free {
		return 100
	}
	var s float64
	if n <= c.Knee {
		s = 100 - c.Step*float64(n-c.Free)
	} else {
		s = 100 - c.Step*float64(c.Knee-c.Free) - c.TailStep*float64(n-c.Knee)
	}
	return math.Max(0, s)
}

// Penalty is the cost of a flagged category: First for the first matching
// ingredient and Additional for each one after it
type Penalty struct {
	First      float64
	Additional float64
}

// Cost returns the penalty for n matches
func (p Penalty) Cost(n int) float64 {
	if n <= 0 {
		return 0
	}
	return p.First + float64(n-1)*p.Additional
}

// LabelThresholds are the minimum scores for each qualitative label
type LabelThresholds struct {
	Excellent float64
	Good      float64
	Fair      float64
}

// Label buckets a rounded score, first match wins
func (t LabelThresholds) Label(score float64) string {
	switch {
	case score >= t.Excellent:
		return "Excellent"
	case score >= t.Good:
		return "Good"
	case score >= t.Fair:
		return "Fair"
	default:
		return "Poor"
	}
}

// TierConfig calibrates the shared scoring strategy for one tier
type TierConfig struct {
	Tier        domain.Tier
	Title       string
	Description string
	Count       CountCurve
	Penalties   map[domain.IngredientCategory]Penalty
	Labels      LabelThresholds
}

var (
	// RFKTier weighs colors heaviest, then industrial oils, then
	// preservatives; added sugar is the lightest flagged category.
	RFKTier = TierConfig{
		Tier:        domain.TierRFK,
		Title:       "MAHA Score",
		Description: "Weighted toward the stated priorities: dyes, seed oils and additives",
		Count:       CountCurve{Free: 5, Step: 4, Knee: 20, TailStep: 2},
		Penalties: map[domain.IngredientCategory]Penalty{
			domain.AddedSugar:          {First: 20, Additional: 4},
			domain.IndustrialOil:       {First: 30, Additional: 8},
			domain.Preservative:        {First: 24, Additional: 6},
			domain.ArtificialColor:     {First: 35, Additional: 8},
			domain.ArtificialSweetener: {First: 22, Additional: 5},
			domain.Emulsifier:          {First: 21, Additional: 4},
		},
		Labels: LabelThresholds{Excellent: 85, Good: 70, Fair: 50},
	}

	// GuidelineTier penalizes every flagged category alike.
	GuidelineTier = TierConfig{
		Tier:        domain.TierGuideline,
		Title:       "Official Standard",
		Description: "Literal reading of the dietary guidelines, every additive class counts the same",
		Count:       CountCurve{Free: 5, Step: 4, Knee: 20, TailStep: 2},
		Penalties:   flatPenalties(Penalty{First: 20, Additional: 5}),
		Labels:      LabelThresholds{Excellent: 90, Good: 75, Fair: 60},
	}

	// PracticalTier is never harsher than the other two.
	PracticalTier = TierConfig{
		Tier:        domain.TierPractical,
		Title:       "Better Choice",
		Description: "Compared to typical alternatives on the shelf",
		Count:       CountCurve{Free: 8, Step: 3, Knee: 20, TailStep: 2},
		Penalties: map[domain.IngredientCategory]Penalty{
			domain.AddedSugar:          {First: 12, Additional: 3},
			domain.IndustrialOil:       {First: 10, Additional: 3},
			domain.Preservative:        {First: 8, Additional: 3},
			domain.ArtificialColor:     {First: 15, Additional: 3},
			domain.ArtificialSweetener: {First: 10, Additional: 3},
			domain.Emulsifier:          {First: 8, Additional: 2},
		},
		Labels: LabelThresholds{Excellent: 80, Good: 65, Fair: 45},
	}
)

func flatPenalties(p Penalty) map[domain.IngredientCategory]Penalty {
	out := make(map[domain.IngredientCategory]Penalty)
	for _, c := range domain.AllCategories {
		if c.Flagged() {
			out[c] = p
		}
	}
	return out
}

// Score applies the tier to a classification result. It never fails; an
// empty result scores count 100, flagged 100 and whole food 0.
func (t TierConfig) Score(result domain.ClassificationResult) domain.TierScore {
	count := t.Count.Score(result.TotalCount)

	var penalty float64
	for _, c := range domain.AllCategories {
		if !c.Flagged() {
			continue
		}
		penalty += t.Penalties[c].Cost(result.CategoryCounts[c])
	}
	flagged := math.Max(0, 100-penalty)

	wholeFood := 100 * result.WholeFoodRatio

	total := CountWeight*count + FlaggedWeight*flagged + WholeFoodWeight*wholeFood
	score := round1(clamp(total, 0, 100))

	return domain.TierScore{
		Tier:        t.Tier,
		Title:       t.Title,
		Description: t.Description,
		Score:       score,
		Grade:       Grade(score),
		Label:       t.Labels.Label(score),
		Breakdown: domain.ScoreBreakdown{
			CountScore:     round1(count),
			FlaggedScore:   round1(flagged),
			WholeFoodScore: round1(wholeFood),
		},
	}
}

// Grade maps a score to a letter grade
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
