// Package complaints tags reviews against the fixed complaint taxonomy and
// aggregates the matches. Tagging is pure and deterministic: no training, no
// fitting, no state beyond the compiled patterns.
package complaints

import (
	"fmt"
	"regexp"
	"strings"

	"reviewlens/internal/model"
)

type compiledPattern struct {
	regex    *regexp.Regexp
	category Category
}

// Tagger matches review text against the taxonomy patterns.
type Tagger struct {
	patterns []compiledPattern
}

// NewTagger compiles the taxonomy. Patterns are matched case-insensitively
// against the raw (uncleaned) text, preserving the surface forms the
// patterns were written against.
func NewTagger() (*Tagger, error) {
	tax := Taxonomy()
	compiled := make([]compiledPattern, 0, len(tax))
	for _, p := range tax {
		re, err := regexp.Compile("(?i)" + p.Regex)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern for %s: %w", p.Category, err)
		}
		compiled = append(compiled, compiledPattern{category: p.Category, regex: re})
	}
	return &Tagger{patterns: compiled}, nil
}

// Tag returns the matching categories for one text, in canonical taxonomy
// order. An empty result is valid: no taxonomy keyword matched.
func (t *Tagger) Tag(text string) []Category {
	var out []Category
	for _, p := range t.patterns {
		if p.regex.MatchString(text) {
			out = append(out, p.category)
		}
	}
	return out
}

// TagReview tags the raw text plus the negation-aware cleaned text, so
// patterns targeting compounded tokens (not_lekker) also fire.
func (t *Tagger) TagReview(rv model.Review) []Category {
	text := rv.Text
	if rv.CleanedText != "" {
		text = text + " " + rv.CleanedText
	}
	return t.Tag(text)
}

// Counts aggregates (review, category) matches.
type Counts struct {
	Total       map[Category]int
	BySentiment map[Category]map[model.Sentiment]int
}

// Aggregate counts tagged reviews per category, cross-tabulated by sentiment.
// Reviews must already carry their Categories.
func Aggregate(reviews []model.Review) Counts {
	counts := Counts{
		Total:       make(map[Category]int),
		BySentiment: make(map[Category]map[model.Sentiment]int),
	}
	for _, rv := range reviews {
		for _, c := range rv.Categories {
			cat := Category(c)
			counts.Total[cat]++
			if counts.BySentiment[cat] == nil {
				counts.BySentiment[cat] = make(map[model.Sentiment]int)
			}
			counts.BySentiment[cat][rv.Sentiment]++
		}
	}
	return counts
}

// NegativeCounts extracts the per-category counts restricted to negative
// reviews, the signal consumed by the suggestion generator.
func (c Counts) NegativeCounts() map[string]int {
	out := make(map[string]int)
	for cat, bySent := range c.BySentiment {
		if n := bySent[model.SentimentNegative]; n > 0 {
			out[string(cat)] = n
		}
	}
	return out
}

// Strings converts categories to plain strings for the review record.
func Strings(cats []Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// Join renders category membership as a delimited list for export.
func Join(cats []string) string {
	return strings.Join(cats, ";")
}
