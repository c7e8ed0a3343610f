package evidence

import (
	"regexp"
	"strings"
)

var tokenRegex = regexp.MustCompile(`[a-z0-9]+`)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "to": {},
	"of": {}, "and": {}, "or": {}, "in": {}, "on": {}, "for": {}, "with": {},
}

// tokenize lowercases the input and returns the set of alphanumeric words of
// at least three characters, minus stop words.
func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, t := range tokenRegex.FindAllString(strings.ToLower(s), -1) {
		if len(t) < 3 {
			continue
		}
		if _, stop := stopWords[t]; stop {
			continue
		}
		tokens[t] = struct{}{}
	}
	return tokens
}

// similarEnough reports whether two strings overlap enough to be considered
// the same claim: Jaccard ratio over token sets at or above the threshold,
// with at least two shared tokens so a pair of common short words can never
// pass on ratio alone.
func similarEnough(a, b string, threshold float64) bool {
	ta := tokenize(a)
	tb := tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}

	inter := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			inter++
		}
	}
	if inter < 2 {
		return false
	}

	union := len(ta) + len(tb) - inter
	return float64(inter)/float64(union) >= threshold
}
