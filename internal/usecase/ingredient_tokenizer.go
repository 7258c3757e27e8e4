package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/realfoodscore/backend/internal/domain"
)

// MaxIngredientListBytes caps the size of a single ingredient list
const MaxIngredientListBytes = 64 << 10

var (
	listLabelPattern = regexp.MustCompile(`(?i)^\s*ingredients?\s*:\s*`)

	// "contains 2% or less of", "less than 2% of each of the following:"
	lessThanPattern = regexp.MustCompile(`^(?:contains?\s+)?(?:less\s+than\s+)?\d+(?:\.\d+)?\s*%\s*(?:or\s+less\b\s*)?(?:of\b\s*)?(?:each\s+of\s+)?(?:the\s+following\s*)?:?\s*`)
	containsPattern = regexp.MustCompile(`^contains?\s*(?:one\s+or\s+more\s+of\s+(?:the\s+following\s*)?)?:\s*`)
	percentPattern  = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*%`)

	apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")
)

// ParseIngredients splits a raw ingredient list into ordered normalized
// ingredients. Compound ingredients are replaced by their sub-ingredients.
func ParseIngredients(raw string) ([]domain.NormalizedIngredient, error) {
	if len(raw) > MaxIngredientListBytes {
		return nil, fmt.Errorf("%w: ingredient list is %d bytes, limit is %d", domain.ErrMalformedInput, len(raw), MaxIngredientListBytes)
	}
	if !utf8.ValidString(raw) {
		return nil, fmt.Errorf("%w: ingredient list is not valid UTF-8", domain.ErrMalformedInput)
	}
	if strings.IndexByte(raw, 0) >= 0 {
		return nil, fmt.Errorf("%w: ingredient list contains a NUL byte", domain.ErrMalformedInput)
	}

	text := listLabelPattern.ReplaceAllString(strings.TrimSpace(raw), "")

	out := make([]domain.NormalizedIngredient, 0)
	for _, segment := range splitTopLevel(text) {
		out = parseSegment(segment, out)
	}
	return out, nil
}

// parseSegment appends the ingredients of one top-level segment to out
func parseSegment(segment string, out []domain.NormalizedIngredient) []domain.NormalizedIngredient {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return out
	}

	groups := matchGroups(segment)
	var (
		label      strings.Builder
		compounds  []string
		qualifiers []string
	)
	for i := 0; i < len(segment); i++ {
		end, ok := groups[i]
		if !ok {
			label.WriteByte(segment[i])
			continue
		}
		inner := segment[i+1 : end]
		if isList(inner) {
			compounds = append(compounds, inner)
		} else {
			qualifiers = append(qualifiers, inner)
		}
		label.WriteByte(' ')
		i = end
	}

	if len(compounds) > 0 {
		for _, inner := range compounds {
			for _, part := range splitTopLevel(inner) {
				out = parseSegment(part, out)
			}
		}
		return out
	}

	normalized := normalizePhrase(label.String())
	if normalized == "" {
		// "(sea salt)" on its own still names an ingredient
		for _, q := range qualifiers {
			out = parseSegment(q, out)
		}
		return out
	}

	return append(out, domain.NormalizedIngredient{Raw: segment, Normalized: normalized})
}

// matchGroups pairs every matched opening bracket with its closing
// bracket. Unmatched brackets are absent from the result.
func matchGroups(s string) map[int]int {
	type open struct {
		pos   int
		close byte
	}
	var (
		stack []open
		pairs map[int]int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			stack = append(stack, open{pos: i, close: ')'})
		case '[':
			stack = append(stack, open{pos: i, close: ']'})
		case ')', ']':
			if len(stack) == 0 || stack[len(stack)-1].close != s[i] {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if pairs == nil {
				pairs = make(map[int]int)
			}
			pairs[top.pos] = i
		}
	}
	return pairs
}

// splitTopLevel splits on commas that are not inside a matched group
func splitTopLevel(s string) []string {
	groups := matchGroups(s)
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if end, ok := groups[i]; ok {
			i = end
			continue
		}
		if s[i] == ',' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func isList(s string) bool {
	n := 0
	for _, part := range splitTopLevel(s) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n > 1
}

// normalizePhrase produces the matchable form of one ingredient phrase.
// Catalog entries go through the same function.
func normalizePhrase(s string) string {
	s = foldDiacritics(s)
	s = strings.ToLower(s)
	s = apostrophes.Replace(s)
	s = strings.TrimSpace(s)

	s = lessThanPattern.ReplaceAllString(s, "")
	s = containsPattern.ReplaceAllString(s, "")
	s = percentPattern.ReplaceAllString(s, " ")

	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case r == '&', r == '\'', r == '-', r == '.':
			return r
		default:
			return ' '
		}
	}, s)

	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " .-'&")
}

// foldDiacritics maps "jalapeño" to "jalapeno"
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
