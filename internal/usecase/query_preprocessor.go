package usecase

import (
	"regexp"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/realfoodscore/backend/internal/logging"
)

// maxQueryLength bounds the search terms sent to Open Food Facts
const maxQueryLength = 100

// QueryPreprocessor cleans free text product searches before they are sent
// to the product database
type QueryPreprocessor struct {
	logger *charmlog.Logger
}

// Compiled regex patterns for query preprocessing
var (
	// Matches size/quantity patterns like "128 fl oz", "12 oz", "1.5 liter", "500g"
	sizeQuantityPattern = regexp.MustCompile(`\b\d+\.?\d*\s*(fl\s*)?oz\b|\b\d+\.?\d*\s*(fl\s*)?ounces?\b|\b\d+\.?\d*\s*lbs?\b|\b\d+\.?\d*\s*pounds?\b|\b\d+\.?\d*\s*ml\b|\b\d+\.?\d*\s*cl\b|\b\d+\.?\d*\s*l\b|\b\d+\.?\d*\s*liters?\b|\b\d+\.?\d*\s*litres?\b|\b\d+\.?\d*\s*gallons?\b|\b\d+\.?\d*\s*kg\b|\b\d+\.?\d*\s*grams?\b|\b\d+\.?\d*\s*g\b`)

	// Matches pack/count patterns like "12 pack", "pack of 6", "6-pack", "24 count", "6 ct"
	packCountPattern = regexp.MustCompile(`\b\d+[-\s]*(pack|pk|count|ct)(\s+\w+)?\b|\bpack\s*of\s*\d+\b|\b\d+\s*cans?\b|\b\d+\s*bottles?\b|\b\d+\s*pouches?\b|\b\d+\s*bars?\b`)

	// Matches standalone numbers with no unit at either end (e.g., ", 128")
	standaloneNumberPattern = regexp.MustCompile(`[,\-]\s*\d+\.?\d*\s*$|^\d+\.?\d*\s*[,\-]`)

	orphanPunctuationPattern   = regexp.MustCompile(`\s+[,\-;:]+\s+`)
	trailingPunctuationPattern = regexp.MustCompile(`[,\-;:]+\s*$`)
	leadingPunctuationPattern  = regexp.MustCompile(`^\s*[,\-;:]+`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// queryNoiseWords are marketing and packaging terms that never help a
// product search
var queryNoiseWords = map[string]bool{
	// Marketing terms
	"value": true, "family": true, "bonus": true, "new": true, "improved": true,
	"premium": true, "select": true, "choice": true, "quality": true, "best": true,
	"great": true, "delicious": true, "tasty": true, "favorite": true, "special": true,

	// Size descriptors
	"size": true, "large": true, "medium": true, "small": true, "mini": true,
	"jumbo": true, "giant": true, "big": true, "single": true, "double": true,

	// Packaging terms
	"package": true, "box": true, "bag": true, "bottle": true, "can": true,
	"jar": true, "tub": true, "carton": true, "sleeve": true, "pouch": true,

	// Generic terms
	"food": true, "item": true, "product": true, "brand": true,
}

// NewQueryPreprocessor creates a new query preprocessor. A nil logger
// disables debug output.
func NewQueryPreprocessor(logger *charmlog.Logger) *QueryPreprocessor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &QueryPreprocessor{logger: logger}
}

// PreprocessQuery lowercases a search query and strips size, pack count and
// marketing noise. The result is empty when nothing searchable remains.
func (p *QueryPreprocessor) PreprocessQuery(query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}

	cleaned := strings.ToLower(query)
	cleaned = sizeQuantityPattern.ReplaceAllString(cleaned, " ")
	cleaned = packCountPattern.ReplaceAllString(cleaned, " ")
	cleaned = standaloneNumberPattern.ReplaceAllString(cleaned, " ")
	cleaned = removeNoiseWords(cleaned)
	cleaned = cleanOrphanedPunctuation(cleaned)
	cleaned = strings.TrimSpace(multiSpacePattern.ReplaceAllString(cleaned, " "))

	if len(cleaned) > maxQueryLength {
		cleaned = cleaned[:maxQueryLength]
		// cut at a word boundary when one is close enough
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > maxQueryLength/2 {
			cleaned = cleaned[:lastSpace]
		}
	}

	p.logger.Debug("preprocessed query", "input", query, "output", cleaned)
	return cleaned
}

// removeNoiseWords drops marketing and generic terms, keeping the
// punctuation of surviving words
func removeNoiseWords(s string) string {
	words := strings.Fields(s)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		if !queryNoiseWords[strings.Trim(word, ",.!?;:-'\"")] {
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, " ")
}

// cleanOrphanedPunctuation removes punctuation left alone by earlier passes
func cleanOrphanedPunctuation(s string) string {
	s = orphanPunctuationPattern.ReplaceAllString(s, " ")
	s = trailingPunctuationPattern.ReplaceAllString(s, "")
	return leadingPunctuationPattern.ReplaceAllString(s, "")
}

// ExtractFoodKeywords returns the tokens of text ordered by importance:
// food terms, then descriptive terms, then everything else
func (p *QueryPreprocessor) ExtractFoodKeywords(text string) []string {
	tokens := tokenize(text)

	var high, med, low []string
	for _, token := range tokens {
		switch getTokenWeight(token) {
		case weightFood:
			high = append(high, token)
		case weightDescriptive:
			med = append(med, token)
		default:
			low = append(low, token)
		}
	}

	result := make([]string, 0, len(tokens))
	result = append(result, high...)
	result = append(result, med...)
	return append(result, low...)
}
