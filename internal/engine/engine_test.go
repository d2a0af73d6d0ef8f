package engine

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewlens/internal/common"
	"reviewlens/internal/config"
)

// writeTestCorpus writes a balanced three-class corpus large enough for
// stratified cross-validation.
func writeTestCorpus(t *testing.T, dir string) string {
	t.Helper()
	content := "source,rating,review,timestamp\n"
	for i := 0; i < 10; i++ {
		content += fmt.Sprintf("google,1,het eten was vies en koud tafel %d,2024-03-%02d\n", i, i+1)
		content += fmt.Sprintf("google,3,het was een gemiddelde avond tafel %d,2024-03-%02d\n", i, i+1)
		content += fmt.Sprintf("google,5,heerlijk gegeten en vriendelijke bediening tafel %d,2024-03-%02d\n", i, i+1)
	}
	path := filepath.Join(dir, "reviews.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		InputPath: writeTestCorpus(t, dir),
		OutputDir: filepath.Join(dir, "output"),
	}
	cfg.LLM.Enabled = false
	cfg.LLM.MaxNegSamples = 100
	cfg.Training.Seed = 42
	cfg.Training.TestRatio = 0.2
	cfg.Training.MaxFolds = 3
	cfg.Training.Workers = 2
	return cfg
}

func readArtifact(t *testing.T, dir, name string) [][]string {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, name))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestEngine_Run(t *testing.T) {
	cfg := testConfig(t)
	eng, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = eng.Close() }()

	summary, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 30, summary.Reviews)
	assert.True(t, summary.Trained)
	assert.NotEmpty(t, summary.SelectedModel)
	assert.Greater(t, summary.Suggestions, 0)

	reviews := readArtifact(t, cfg.OutputDir, "reviews_enriched.csv")
	require.Len(t, reviews, 31)

	// Sentiment derives from the rating per row.
	bySentiment := make(map[string]int)
	for _, row := range reviews[1:] {
		bySentiment[row[2]]++
	}
	assert.Equal(t, map[string]int{"negative": 10, "neutral": 10, "positive": 10}, bySentiment)

	counts := readArtifact(t, cfg.OutputDir, "complaint_category_counts.csv")
	byCat := make(map[string][]string)
	for _, row := range counts[1:] {
		byCat[row[0]] = row
	}
	// Every negative review mentions "vies" and "koud"; every positive one
	// mentions the service.
	assert.Equal(t, []string{"food_quality", "10", "0", "0", "10"}, byCat["food_quality"])
	assert.Equal(t, []string{"portion_temp", "10", "0", "0", "10"}, byCat["portion_temp"])
	assert.Equal(t, []string{"service", "0", "0", "10", "10"}, byCat["service"])

	avg := readArtifact(t, cfg.OutputDir, "average_rating.csv")
	assert.Equal(t, []string{"3.000"}, avg[1])

	suggestions := readArtifact(t, cfg.OutputDir, "business_suggestions.csv")
	require.Greater(t, len(suggestions), 1)
	for _, row := range suggestions[1:] {
		assert.Equal(t, "rule", row[1]) // LLM disabled: rule provenance only
	}

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "top_terms.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "model_report.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "business_suggestions.txt"))
	assert.NoError(t, err)
}

func TestEngine_RunTinyCorpus(t *testing.T) {
	dir := t.TempDir()
	content := "rating,review\n" +
		"1,veel te lang wachten op het eten\n" +
		"2,het eten was koud\n" +
		"3,prima avond gehad\n" +
		"4,vriendelijke bediening\n" +
		"5,heerlijk gegeten\n"
	path := filepath.Join(dir, "reviews.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := testConfig(t)
	cfg.InputPath = path

	eng, err := New(cfg)
	require.NoError(t, err)

	summary, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Reviews)
	assert.True(t, summary.Trained)

	rows := readArtifact(t, cfg.OutputDir, "reviews_enriched.csv")
	require.Len(t, rows, 6)

	var sentiments []string
	for _, row := range rows[1:] {
		sentiments = append(sentiments, row[2])
	}
	assert.Equal(t, []string{"negative", "negative", "neutral", "positive", "positive"}, sentiments)

	// Category totals must equal the tagger's (review, category) matches:
	// wait_time and portion_temp from the two negative reviews, service from
	// the four-star one.
	counts := readArtifact(t, cfg.OutputDir, "complaint_category_counts.csv")
	totals := make(map[string]string)
	for _, row := range counts[1:] {
		totals[row[0]] = row[4]
	}
	assert.Equal(t, "1", totals["wait_time"])
	assert.Equal(t, "1", totals["portion_temp"])
	assert.Equal(t, "1", totals["service"])
	assert.Equal(t, "0", totals["food_quality"])
	assert.Equal(t, "0", totals["cleanliness"])
}

func TestEngine_RunPersistsToStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoragePath = filepath.Join(t.TempDir(), "artifacts.db")

	eng, err := New(cfg)
	require.NoError(t, err)

	summary, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	db, err := sql.Open("sqlite3", cfg.StoragePath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var reviewCount int
	require.NoError(t, db.QueryRow(
		`SELECT review_count FROM runs WHERE id = ?`, summary.RunID,
	).Scan(&reviewCount))
	assert.Equal(t, 30, reviewCount)

	var stored int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM reviews`).Scan(&stored))
	assert.Equal(t, 30, stored)
}

func TestEngine_RunDeterministicModelSelection(t *testing.T) {
	first, err := New(testConfig(t))
	require.NoError(t, err)
	second, err := New(testConfig(t))
	require.NoError(t, err)

	a, err := first.Run(context.Background())
	require.NoError(t, err)
	b, err := second.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.SelectedModel, b.SelectedModel)
	assert.InDelta(t, a.MacroF1, b.MacroF1, 1e-12)
	assert.InDelta(t, a.Accuracy, b.Accuracy, 1e-12)
}

func TestEngine_RunSingleClassCorpus(t *testing.T) {
	dir := t.TempDir()
	content := "rating,review\n"
	for i := 0; i < 6; i++ {
		content += fmt.Sprintf("5,heerlijk gegeten nummer %d\n", i)
	}
	path := filepath.Join(dir, "reviews.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := testConfig(t)
	cfg.InputPath = path

	eng, err := New(cfg)
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	assert.ErrorIs(t, err, common.ErrTooFewClasses)
}

func TestEngine_RunMissingInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.InputPath = filepath.Join(t.TempDir(), "nope.csv")

	eng, err := New(cfg)
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	assert.Error(t, err)
}

func TestEngine_RunCancelledWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	eng, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = eng.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(cfg.OutputDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEngine_ProgressCallback(t *testing.T) {
	cfg := testConfig(t)
	eng, err := New(cfg)
	require.NoError(t, err)

	var last, total int
	eng.SetProgress(func(done, tot int) { last, total = done, tot })

	_, err = eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, total, last)
	assert.Equal(t, 27, total) // 9 candidates x 3 folds
}
