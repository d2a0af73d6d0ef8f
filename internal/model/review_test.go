package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampRating(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "below range", in: 0, want: 1},
		{name: "negative", in: -3, want: 1},
		{name: "lower bound", in: 1, want: 1},
		{name: "upper bound", in: 5, want: 5},
		{name: "above range", in: 9, want: 5},
		{name: "in range", in: 3, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampRating(tt.in))
		})
	}
}

func TestSentimentForRating(t *testing.T) {
	tests := []struct {
		want   Sentiment
		rating int
	}{
		{SentimentNegative, 1},
		{SentimentNegative, 2},
		{SentimentNeutral, 3},
		{SentimentPositive, 4},
		{SentimentPositive, 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SentimentForRating(tt.rating), "rating %d", tt.rating)
	}
}

func TestReviewDerive(t *testing.T) {
	ts := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	rv := Review{Rating: 7, Timestamp: ts}
	rv.Derive()

	assert.Equal(t, 5, rv.Rating)
	assert.Equal(t, SentimentPositive, rv.Sentiment)
	assert.Equal(t, "2024-03", rv.Month)
}

func TestReviewDerive_NoTimestamp(t *testing.T) {
	rv := Review{Rating: 2}
	rv.Derive()

	assert.Equal(t, SentimentNegative, rv.Sentiment)
	assert.Empty(t, rv.Month)
}

func TestDedupeReviews_KeepsLatest(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	reviews := []Review{
		{Text: "eten was koud", Timestamp: early, Source: "google"},
		{Text: "prima avond", Timestamp: early, Source: "google"},
		{Text: "eten was koud", Timestamp: late, Source: "tripadvisor"},
	}

	got := DedupeReviews(reviews)
	require.Len(t, got, 2)

	var dup *Review
	for i := range got {
		if got[i].Text == "eten was koud" {
			dup = &got[i]
		}
	}
	require.NotNil(t, dup)
	assert.Equal(t, "tripadvisor", dup.Source)
	assert.Equal(t, late, dup.Timestamp)
}

func TestDedupeReviews_NoDuplicates(t *testing.T) {
	reviews := []Review{
		{Text: "a"}, {Text: "b"}, {Text: "c"},
	}
	got := DedupeReviews(reviews)
	assert.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Text)
	assert.Equal(t, "c", got[2].Text)
}
