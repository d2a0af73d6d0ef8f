package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewlens/internal/complaints"
	"reviewlens/internal/ml"
	"reviewlens/internal/model"
)

func readCSV(t *testing.T, dir, name string) [][]string {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, name))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteEnrichedReviews(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir)
	require.NoError(t, err)

	reviews := []model.Review{
		{
			Source:      "google",
			Rating:      2,
			Sentiment:   model.SentimentNegative,
			Location:    "Amsterdam",
			Month:       "2024-03",
			Text:        "lang wachten, eten koud",
			CleanedText: "lang wacht koud",
			Categories:  []string{"wait_time", "portion_temp"},
		},
	}
	require.NoError(t, e.WriteEnrichedReviews(reviews))

	rows := readCSV(t, dir, "reviews_enriched.csv")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"source", "rating", "sentiment", "location", "month",
		"review", "cleaned_review", "complaint_categories",
	}, rows[0])
	assert.Equal(t, []string{
		"google", "2", "negative", "Amsterdam", "2024-03",
		"lang wachten, eten koud", "lang wacht koud", "wait_time;portion_temp",
	}, rows[1])
}

func TestWriteComplaintCounts_AllCategoriesPresent(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir)
	require.NoError(t, err)

	counts := complaints.Aggregate([]model.Review{
		{Sentiment: model.SentimentNegative, Categories: []string{"wait_time"}},
		{Sentiment: model.SentimentPositive, Categories: []string{"wait_time"}},
	})
	require.NoError(t, e.WriteComplaintCounts(counts))

	rows := readCSV(t, dir, "complaint_category_counts.csv")
	require.Len(t, rows, 1+len(complaints.Categories()))

	byCat := make(map[string][]string)
	for _, row := range rows[1:] {
		byCat[row[0]] = row
	}
	assert.Equal(t, []string{"wait_time", "1", "0", "1", "2"}, byCat["wait_time"])
	assert.Equal(t, []string{"service", "0", "0", "0", "0"}, byCat["service"])
}

func TestWriteTopTerms(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir)
	require.NoError(t, err)

	topTerms := map[string][]ml.WeightedTerm{
		"positive": {{Term: "lekker", Weight: 0.5}},
		"negative": {{Term: "koud", Weight: 0.75}, {Term: "traag", Weight: 0.25}},
	}
	require.NoError(t, e.WriteTopTerms(topTerms))

	rows := readCSV(t, dir, "top_terms.csv")
	require.Len(t, rows, 4)

	// Classes are written alphabetically, terms by rank.
	assert.Equal(t, []string{"negative", "1", "koud", "0.750000"}, rows[1])
	assert.Equal(t, []string{"negative", "2", "traag", "0.250000"}, rows[2])
	assert.Equal(t, []string{"positive", "1", "lekker", "0.500000"}, rows[3])
}

func TestWriteSuggestions(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir)
	require.NoError(t, err)

	generated := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	suggestions := []model.Suggestion{
		{Text: "Zet extra personeel in.", Source: model.SourceLLM, Model: "ollama:gemma3:latest", GeneratedAt: generated},
	}
	require.NoError(t, e.WriteSuggestions(suggestions))

	rows := readCSV(t, dir, "business_suggestions.csv")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Zet extra personeel in.", "llm", "ollama:gemma3:latest", "2024-03-15T12:00:00Z"}, rows[1])

	summary, err := os.ReadFile(filepath.Join(dir, "business_suggestions.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "bron=llm")
	assert.Contains(t, string(summary), "- Zet extra personeel in.")
}

func TestWriteSuggestions_Empty(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir)
	require.NoError(t, err)

	require.NoError(t, e.WriteSuggestions(nil))

	summary, err := os.ReadFile(filepath.Join(dir, "business_suggestions.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Geen suggesties gegenereerd.")
}

func TestWriteAverageRating(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir)
	require.NoError(t, err)

	require.NoError(t, e.WriteAverageRating(3.4567))

	rows := readCSV(t, dir, "average_rating.csv")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"3.457"}, rows[1])
}

func TestWriteModelReport(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir)
	require.NoError(t, err)

	result := &ml.Result{
		Best: ml.Scored{
			Candidate: ml.Candidate{Family: ml.FamilyLogistic, C: 0.5},
			MeanF1:    0.8,
		},
		FoldCount: 3,
		Holdout:   ml.Evaluate([]int{0, 1}, []int{0, 1}, []string{"negatief", "positief"}),
	}
	require.NoError(t, e.WriteModelReport(result))

	report, err := os.ReadFile(filepath.Join(dir, "model_report.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "selected: logreg C=0.5 (cv macro-f1 0.800, 3 folds)")
	assert.Contains(t, string(report), "negatief")
}

func TestNewExporter_NestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")

	_, err := NewExporter(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
