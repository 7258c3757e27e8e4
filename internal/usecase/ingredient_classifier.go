package usecase

import (
	"strings"

	"github.com/realfoodscore/backend/internal/domain"
)

type wordSpan struct {
	start, end int
}

func (s wordSpan) within(other wordSpan) bool {
	return s.start >= other.start && s.end <= other.end
}

// Classify matches one normalized ingredient against the catalog. An exact
// phrase hit wins; otherwise word-aligned containment is tried in both
// directions and every matched category is kept.
func (c *Catalog) Classify(ing domain.NormalizedIngredient) (domain.CategorySet, domain.MatchKind) {
	phrase := ing.Normalized
	if phrase == "" {
		return 0, domain.MatchNone
	}

	if set, ok := c.exact[phrase]; ok {
		return set, domain.MatchExact
	}
	words := strings.Fields(phrase)
	if set, ok := c.lookupSingular(words); ok {
		return set, domain.MatchExact
	}

	forward := c.matchContains(words)
	var reverse domain.CategorySet
	if len(phrase) >= MinContainmentLength {
		reverse = c.partial[phrase]
	}

	switch {
	case !forward.Empty():
		return forward.Union(reverse), domain.MatchContains
	case !reverse.Empty():
		return reverse, domain.MatchContained
	default:
		return 0, domain.MatchNone
	}
}

// matchContains collects catalog phrases found inside words, longest
// first. Shorter hits inside an accepted hit are ignored so "corn syrup
// solids" reports corn syrup and not also corn.
func (c *Catalog) matchContains(words []string) domain.CategorySet {
	var (
		set      domain.CategorySet
		accepted []wordSpan
	)

	longest := min(c.maxWords, len(words)-1)
	for n := longest; n >= 1; n-- {
	spans:
		for i := 0; i+n <= len(words); i++ {
			span := wordSpan{start: i, end: i + n}
			for _, a := range accepted {
				if span.within(a) {
					continue spans
				}
			}

			gram := words[i : i+n]
			if len(strings.Join(gram, " ")) < MinContainmentLength {
				continue
			}
			hit, ok := c.lookupSingular(gram)
			if !ok {
				continue
			}
			set = set.Union(hit)
			accepted = append(accepted, span)
		}
	}
	return set
}

// lookupSingular looks a word sequence up as written, then with a plural
// suffix removed from its last word
func (c *Catalog) lookupSingular(words []string) (domain.CategorySet, bool) {
	if len(words) == 0 {
		return 0, false
	}
	key := strings.Join(words, " ")
	if set, ok := c.exact[key]; ok {
		return set, true
	}

	prefix := key[:len(key)-len(words[len(words)-1])]
	last := words[len(words)-1]
	for _, suffix := range []string{"es", "s"} {
		if len(last) <= len(suffix)+2 || !strings.HasSuffix(last, suffix) {
			continue
		}
		if set, ok := c.exact[prefix+strings.TrimSuffix(last, suffix)]; ok {
			return set, true
		}
	}
	return 0, false
}

// ClassifyAll classifies every ingredient and folds the matches into a
// ClassificationResult. An ingredient matching several categories counts
// toward each of them.
func (c *Catalog) ClassifyAll(ingredients []domain.NormalizedIngredient) domain.ClassificationResult {
	result := domain.ClassificationResult{
		Ingredients:    make([]domain.ClassifiedIngredient, 0, len(ingredients)),
		TotalCount:     len(ingredients),
		CategoryCounts: make(map[domain.IngredientCategory]int, len(domain.AllCategories)),
	}
	for _, category := range domain.AllCategories {
		result.CategoryCounts[category] = 0
	}

	for _, ing := range ingredients {
		set, kind := c.Classify(ing)
		categories := set.Categories()
		for _, category := range categories {
			result.CategoryCounts[category]++
		}
		if set.Empty() {
			result.UnclassifiedCount++
		}
		result.Ingredients = append(result.Ingredients, domain.ClassifiedIngredient{
			NormalizedIngredient: ing,
			Categories:           categories,
			Match:                kind,
		})
	}

	if result.TotalCount > 0 {
		result.WholeFoodRatio = float64(result.CategoryCounts[domain.WholeFood]) / float64(result.TotalCount)
	}
	return result
}
