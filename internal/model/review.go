// Package model defines the core domain types shared across the pipeline.
package model

import (
	"strings"
	"time"
)

// Sentiment is the rating-derived sentiment class of a review.
type Sentiment string

const (
	// SentimentNegative covers ratings of 1 and 2 stars.
	SentimentNegative Sentiment = "negative"
	// SentimentNeutral covers a rating of exactly 3 stars.
	SentimentNeutral Sentiment = "neutral"
	// SentimentPositive covers ratings of 4 and 5 stars.
	SentimentPositive Sentiment = "positive"
)

// Sentiments lists all classes in canonical order (negative, neutral, positive).
func Sentiments() []Sentiment {
	return []Sentiment{SentimentNegative, SentimentNeutral, SentimentPositive}
}

// Rating bounds for review scores.
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a single restaurant review from any source.
type Review struct {
	Timestamp   time.Time
	Source      string
	Text        string // Raw review text
	Location    string
	Month       string // Derived year-month, e.g. "2024-03"
	CleanedText string // Normalized token sequence joined by spaces
	Sentiment   Sentiment
	Tokens      []string // Normalized tokens, set by the normalizer
	Categories  []string // Complaint categories, set by the tagger
	Rating      int
}

// ClampRating forces a rating into the valid [MinRating, MaxRating] range.
func ClampRating(r int) int {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}

// SentimentForRating derives the sentiment class from a (clamped) rating.
func SentimentForRating(rating int) Sentiment {
	switch {
	case rating <= 2:
		return SentimentNegative
	case rating >= 4:
		return SentimentPositive
	default:
		return SentimentNeutral
	}
}

// Derive fills in the fields computed from Rating and Timestamp.
func (r *Review) Derive() {
	r.Rating = ClampRating(r.Rating)
	r.Sentiment = SentimentForRating(r.Rating)
	if !r.Timestamp.IsZero() {
		r.Month = r.Timestamp.UTC().Format("2006-01")
	}
}

// DedupeReviews removes reviews with identical text, keeping the one with the
// latest timestamp. Input order is preserved for the survivors.
func DedupeReviews(reviews []Review) []Review {
	latest := make(map[string]int, len(reviews))
	for i, rv := range reviews {
		key := strings.TrimSpace(rv.Text)
		if j, ok := latest[key]; ok {
			if rv.Timestamp.After(reviews[j].Timestamp) {
				latest[key] = i
			}
			continue
		}
		latest[key] = i
	}

	keep := make(map[int]bool, len(latest))
	for _, i := range latest {
		keep[i] = true
	}

	out := make([]Review, 0, len(latest))
	for i, rv := range reviews {
		if keep[i] {
			out = append(out, rv)
		}
	}
	return out
}
