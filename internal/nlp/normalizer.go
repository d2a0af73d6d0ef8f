// Package nlp implements Dutch text normalization for the review pipeline:
// cleaning, tokenization, stopword removal, negation compounding and
// morphological reduction.
package nlp

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	urlRE = regexp.MustCompile(`https?://\S+|www\.\S+`)
	numRE = regexp.MustCompile(`\d+`)
)

// negationCues trigger compounding with the following content token.
var negationCues = map[string]struct{}{
	"niet": {},
	"geen": {},
}

// negationPrefix marks a token as the compound of a negation cue and the
// content token that followed it.
const negationPrefix = "not_"

// minTokenLen is the shortest token kept after cleaning.
const minTokenLen = 3

// Normalizer turns raw review text into a canonical token sequence.
type Normalizer struct {
	reducer Reducer
	stop    map[string]struct{}
}

// NewNormalizer creates a normalizer using the given morphological reducer.
func NewNormalizer(reducer Reducer) *Normalizer {
	return &Normalizer{
		reducer: reducer,
		stop:    stopwordSet(),
	}
}

// Normalize cleans and tokenizes raw text. Unrecognized constructs are
// dropped, never errored; an empty result is valid.
func (n *Normalizer) Normalize(raw string) []string {
	text := strings.ToLower(raw)
	text = urlRE.ReplaceAllString(text, " ")
	text = numRE.ReplaceAllString(text, " ")
	text = stripPunct(text)

	parts := strings.Fields(text)
	tokens := make([]string, 0, len(parts))

	for i := 0; i < len(parts); i++ {
		w := parts[i]

		if _, cue := negationCues[w]; cue && i+1 < len(parts) {
			next := parts[i+1]
			if _, stop := n.stop[next]; !stop && len([]rune(next)) >= minTokenLen {
				tokens = append(tokens, negationPrefix+next)
			}
			i++ // negation cue and its target are both consumed
			continue
		}

		if _, stop := n.stop[w]; stop {
			continue
		}
		if len([]rune(w)) < minTokenLen {
			continue
		}
		if strings.HasPrefix(w, negationPrefix) {
			// Already-compounded tokens pass through unreduced so that
			// normalization stays idempotent.
			tokens = append(tokens, w)
			continue
		}
		reduced := n.reducer.Reduce(w)
		// Filter again after reduction: a reduced form may collapse into a
		// stopword or fall under the length floor, and letting it through
		// would make normalization non-idempotent.
		if _, stop := n.stop[reduced]; stop {
			continue
		}
		if len([]rune(reduced)) < minTokenLen {
			continue
		}
		tokens = append(tokens, reduced)
	}

	return tokens
}

// NormalizeJoined returns the normalized tokens joined with single spaces,
// the form consumed by the character-level vectorizer and exports.
func (n *Normalizer) NormalizeJoined(raw string) string {
	return strings.Join(n.Normalize(raw), " ")
}

// stripPunct deletes punctuation and symbol runes. The underscore survives
// because negation compounds use it.
func stripPunct(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '_' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
