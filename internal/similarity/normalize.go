// Package similarity provides per-field similarity scoring for career
// records and the confidence classification built on top of it. All field
// functions are pure and deterministic.
package similarity

import "strings"

// companySuffixes canonicalizes legal-suffix spellings in both directions so
// "Corp." and "Corporation" compare equal.
var companySuffixes = map[string]string{
	"corp":          "corporation",
	"corporation":   "corporation",
	"inc":           "incorporated",
	"incorporated":  "incorporated",
	"ltd":           "limited",
	"limited":       "limited",
	"co":            "company",
	"company":       "company",
	"llc":           "llc",
	"intl":          "international",
	"international": "international",
}

// seniorityModifiers are title qualifiers stripped before comparison.
var seniorityModifiers = map[string]struct{}{
	"senior":    {},
	"sr":        {},
	"junior":    {},
	"jr":        {},
	"lead":      {},
	"staff":     {},
	"principal": {},
}

// romanSuffixes are trailing level markers ("Engineer II") stripped before
// comparison.
var romanSuffixes = map[string]struct{}{
	"i": {}, "ii": {}, "iii": {}, "iv": {}, "v": {}, "vi": {}, "vii": {},
}

// stripPunctuation replaces every non-alphanumeric rune with a space.
func stripPunctuation(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// normalizeCompany lowercases, strips punctuation, expands "&", collapses
// "limited liability company" to its abbreviation, and canonicalizes legal
// suffixes token by token.
func normalizeCompany(name string) []string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "&", " and ")
	s = stripPunctuation(s)
	s = strings.ReplaceAll(s, "limited liability company", "llc")

	tokens := strings.Fields(s)
	for i, t := range tokens {
		if canonical, ok := companySuffixes[t]; ok {
			tokens[i] = canonical
		}
	}
	return tokens
}

// normalizeTitle lowercases, strips punctuation and a trailing roman-numeral
// suffix, and returns the tokens both with and without seniority modifiers.
func normalizeTitle(title string) (raw, base []string) {
	s := stripPunctuation(strings.ToLower(strings.TrimSpace(title)))
	tokens := strings.Fields(s)
	if len(tokens) > 1 {
		if _, ok := romanSuffixes[tokens[len(tokens)-1]]; ok {
			tokens = tokens[:len(tokens)-1]
		}
	}
	raw = tokens

	base = make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seniorityModifiers[t]; ok {
			continue
		}
		base = append(base, t)
	}
	// A title made only of modifiers keeps its raw form.
	if len(base) == 0 {
		base = raw
	}
	return raw, base
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// jaccard computes |intersection| / |union| over two token sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// subset reports whether every element of a is in b.
func subset(a, b map[string]struct{}) bool {
	if len(a) == 0 || len(a) > len(b) {
		return false
	}
	for t := range a {
		if _, ok := b[t]; !ok {
			return false
		}
	}
	return true
}
