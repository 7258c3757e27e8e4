package usecase

import (
	"context"
	"regexp"
	"sort"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/realfoodscore/backend/internal/domain"
	"github.com/realfoodscore/backend/internal/logging"
)

var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// Token weight categories for scoring
const (
	weightFood        = 3.0 // Core food terms (milk, chicken, bread)
	weightDescriptive = 2.0 // Descriptive terms (whole, skim, organic)
	weightDefault     = 1.0 // Everything else
	fuzzyWeightFactor = 0.8 // Fuzzy matches get 80% of normal weight
)

// Scoring bonuses
const (
	brandMatchBonus     = 15.0 // Query names the product's brand
	substringMatchBonus = 10.0 // Query is a substring of the product name or the reverse
	ingredientDataBonus = 5.0  // Product can be scored
)

// foodTerms contains high-importance food keywords (weight 3.0)
var foodTerms = map[string]bool{
	// Proteins
	"chicken": true, "beef": true, "pork": true, "fish": true, "salmon": true,
	"turkey": true, "lamb": true, "shrimp": true, "tuna": true, "bacon": true,
	"sausage": true, "steak": true, "ham": true, "crab": true, "tofu": true,
	// Dairy
	"milk": true, "cheese": true, "yogurt": true, "butter": true, "cream": true,
	"eggs": true, "egg": true, "cheddar": true, "mozzarella": true, "parmesan": true,
	// Grains
	"bread": true, "rice": true, "pasta": true, "cereal": true, "oats": true,
	"wheat": true, "flour": true, "noodles": true, "tortilla": true, "granola": true,
	// Produce
	"apple": true, "banana": true, "orange": true, "lettuce": true, "tomato": true,
	"potato": true, "onion": true, "carrot": true, "broccoli": true, "spinach": true,
	"strawberry": true, "blueberry": true, "grape": true, "lemon": true, "lime": true,
	"avocado": true, "cucumber": true, "pepper": true, "corn": true, "beans": true,
	// Beverages
	"juice": true, "soda": true, "cola": true, "coffee": true, "tea": true,
	"water": true, "lemonade": true, "smoothie": true, "kombucha": true,
	// Snacks & Sweets
	"chips": true, "crackers": true, "cookies": true, "candy": true, "chocolate": true,
	"cake": true, "pie": true, "brownie": true, "popcorn": true, "bar": true,
	// Condiments & Sauces
	"ketchup": true, "mustard": true, "mayo": true, "mayonnaise": true, "sauce": true,
	"salsa": true, "dressing": true, "syrup": true, "honey": true, "jam": true,
	"peanut": true, "hummus": true,
	// Prepared Foods
	"pizza": true, "burger": true, "sandwich": true, "soup": true, "salad": true,
	"burrito": true, "taco": true, "wrap": true,
}

// descriptiveTerms contains medium-importance descriptive keywords (weight 2.0)
var descriptiveTerms = map[string]bool{
	// Preparation/processing
	"whole": true, "skim": true, "reduced": true, "fat": true, "low": true,
	"nonfat": true, "organic": true, "natural": true, "fresh": true, "frozen": true,
	"canned": true, "dried": true, "raw": true, "cooked": true, "grilled": true,
	"baked": true, "fried": true, "roasted": true, "smoked": true,
	// Flavor/variety
	"vanilla": true, "plain": true, "flavored": true, "original": true,
	"classic": true, "sweet": true, "spicy": true, "mild": true, "hot": true,
	"regular": true, "lite": true, "light": true, "diet": true, "zero": true,
	// Type descriptors
	"white": true, "brown": true, "refined": true, "enriched": true,
	"unsweetened": true, "sweetened": true, "salted": true, "unsalted": true,
	"creamy": true, "crunchy": true, "greek": true,
	// Nutritional qualifiers
	"protein": true, "fiber": true, "gluten": true, "free": true, "sugar": true,
}

// extendedStopWords includes basic English stop words plus product-specific noise
var extendedStopWords = map[string]bool{
	// Basic English stop words
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "is": true,
	// Size/quantity units
	"oz": true, "fl": true, "lb": true, "lbs": true, "ml": true,
	"gallon": true, "liter": true, "litre": true, "gram": true, "grams": true,
	"kg": true, "ounce": true, "ounces": true,
	// Packaging terms
	"pack": true, "count": true, "ct": true, "pk": true, "box": true,
	"bag": true, "bottle": true, "can": true, "jar": true, "pouch": true,
	// Marketing/generic terms
	"size": true, "value": true, "family": true, "each": true, "per": true,
	"new": true, "product": true,
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	// MinScore drops candidates scoring below it; zero keeps every candidate
	MinScore            float64
	EnableFuzzyMatching bool
	FuzzyEditDistance   int
	Logger              *charmlog.Logger
}

// MatchingService ranks product search results against the query
type MatchingService struct {
	minScore            float64
	enableFuzzyMatching bool
	fuzzyEditDistance   int
	logger              *charmlog.Logger
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	fuzzyDist := config.FuzzyEditDistance
	if fuzzyDist <= 0 {
		fuzzyDist = 1
	}
	minScore := config.MinScore
	if minScore < 0 {
		minScore = 0
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &MatchingService{
		minScore:            minScore,
		enableFuzzyMatching: config.EnableFuzzyMatching,
		fuzzyEditDistance:   fuzzyDist,
		logger:              logger,
	}
}

// RankProducts scores every product against the query and returns them
// best first. Ties keep the upstream order.
func (s *MatchingService) RankProducts(
	ctx context.Context,
	query string,
	products []domain.Product,
) ([]domain.ProductMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidRequest
	}
	if len(products) == 0 {
		return nil, domain.ErrProductNotFound
	}

	matches := make([]domain.ProductMatch, 0, len(products))
	for _, product := range products {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		score, matchedTokens := s.calculateMatchScore(query, product)
		s.logger.Debug("candidate", "name", product.Name, "brand", product.Brand, "score", score, "matched", matchedTokens)

		if score < s.minScore {
			continue
		}
		matches = append(matches, domain.ProductMatch{
			Product:       product,
			MatchScore:    score,
			MatchedTokens: matchedTokens,
		})
	}

	if len(matches) == 0 {
		return nil, domain.ErrProductNotFound
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	return matches, nil
}

// calculateMatchScore computes the similarity between the query and a
// product's name and brand. It combines:
//   - query coverage: weighted share of query tokens found in the product (most important)
//   - product coverage: share of product tokens found in the query
//   - Jaccard overlap of both token sets
//
// plus brand, substring and ingredient data bonuses. Returns the score
// (0-100) and the matched query tokens.
func (s *MatchingService) calculateMatchScore(query string, product domain.Product) (float64, []string) {
	queryTokens := uniqueTokens(tokenize(query))
	productTokens := tokenize(product.Name + " " + product.Brand)

	if len(queryTokens) == 0 || len(productTokens) == 0 {
		return 0, nil
	}

	productSet := make(map[string]bool, len(productTokens))
	for _, t := range productTokens {
		productSet[t] = true
	}

	var totalWeight, matchedWeight float64
	var matchedTokens []string
	for _, token := range queryTokens {
		weight := getTokenWeight(token)
		totalWeight += weight

		if productSet[token] {
			matchedWeight += weight
			matchedTokens = append(matchedTokens, token)
			continue
		}
		if s.enableFuzzyMatching && s.fuzzyMatchAny(token, productTokens) {
			matchedWeight += weight * fuzzyWeightFactor
			matchedTokens = append(matchedTokens, token)
		}
	}
	queryCoverage := matchedWeight / totalWeight

	productMatched, _ := findIntersection(queryTokens, productTokens)
	productCoverage := float64(productMatched) / float64(len(productTokens))

	exactMatched, _ := findIntersection(productTokens, queryTokens)
	jaccard := float64(exactMatched) / float64(findUnion(queryTokens, productTokens))

	score := (queryCoverage*0.60 + productCoverage*0.20 + jaccard*0.20) * 100

	queryLower := strings.ToLower(strings.TrimSpace(query))
	nameLower := strings.ToLower(strings.TrimSpace(product.Name))

	if brand := strings.ToLower(strings.TrimSpace(product.Brand)); brand != "" && strings.Contains(queryLower, brand) {
		score += brandMatchBonus
	}
	if len(queryLower) > 3 && nameLower != "" &&
		(strings.Contains(nameLower, queryLower) || strings.Contains(queryLower, nameLower)) {
		score += substringMatchBonus
	}
	if product.Ingredients() != "" {
		score += ingredientDataBonus
	}

	if score > 100 {
		score = 100
	}
	return round1(score), matchedTokens
}

func (s *MatchingService) fuzzyMatchAny(token string, candidates []string) bool {
	for _, c := range candidates {
		if fuzzyTokenMatch(token, c, s.fuzzyEditDistance) {
			return true
		}
	}
	return false
}

// getTokenWeight returns the importance weight of a token
func getTokenWeight(token string) float64 {
	switch {
	case foodTerms[token]:
		return weightFood
	case descriptiveTerms[token]:
		return weightDescriptive
	default:
		return weightDefault
	}
}

// tokenize splits a string into normalized lowercase tokens.
// Removes punctuation, stop words, product noise, and pure numeric tokens.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 1 || extendedStopWords[word] || isNumeric(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func uniqueTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := tokens[:0:0]
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Only tokens of 4+ chars, short ones give false positives
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	// two rows instead of the full matrix
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

// findIntersection returns the count of distinct tokens of tokens2 present
// in tokens1, and those tokens
func findIntersection(tokens1, tokens2 []string) (int, []string) {
	set := make(map[string]bool, len(tokens1))
	for _, t := range tokens1 {
		set[t] = true
	}

	var matched []string
	seen := make(map[string]bool)
	for _, t := range tokens2 {
		if set[t] && !seen[t] {
			matched = append(matched, t)
			seen[t] = true
		}
	}

	return len(matched), matched
}

// findUnion returns the count of unique tokens across both sets
func findUnion(tokens1, tokens2 []string) int {
	set := make(map[string]bool, len(tokens1)+len(tokens2))
	for _, t := range tokens1 {
		set[t] = true
	}
	for _, t := range tokens2 {
		set[t] = true
	}
	return len(set)
}
