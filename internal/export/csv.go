// Package export writes the pipeline artifacts for downstream BI tools.
// Files are written only after their producing stage fully completed.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"reviewlens/internal/complaints"
	"reviewlens/internal/ml"
	"reviewlens/internal/model"
)

// Exporter writes CSV artifacts into one output directory.
type Exporter struct {
	dir string
}

// NewExporter creates the output directory if needed.
func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Exporter{dir: dir}, nil
}

// WriteEnrichedReviews writes the per-review enriched dataset.
func (e *Exporter) WriteEnrichedReviews(reviews []model.Review) error {
	rows := [][]string{{
		"source", "rating", "sentiment", "location", "month",
		"review", "cleaned_review", "complaint_categories",
	}}
	for _, rv := range reviews {
		rows = append(rows, []string{
			rv.Source,
			strconv.Itoa(rv.Rating),
			string(rv.Sentiment),
			rv.Location,
			rv.Month,
			rv.Text,
			rv.CleanedText,
			complaints.Join(rv.Categories),
		})
	}
	return e.writeCSV("reviews_enriched.csv", rows)
}

// WriteComplaintCounts writes per-category counts split by sentiment.
func (e *Exporter) WriteComplaintCounts(counts complaints.Counts) error {
	rows := [][]string{{"category", "negative", "neutral", "positive", "total"}}
	for _, cat := range complaints.Categories() {
		bySent := counts.BySentiment[cat]
		rows = append(rows, []string{
			string(cat),
			strconv.Itoa(bySent[model.SentimentNegative]),
			strconv.Itoa(bySent[model.SentimentNeutral]),
			strconv.Itoa(bySent[model.SentimentPositive]),
			strconv.Itoa(counts.Total[cat]),
		})
	}
	return e.writeCSV("complaint_category_counts.csv", rows)
}

// WriteTopTerms writes the interpretability artifact extracted from the
// selected model's coefficients.
func (e *Exporter) WriteTopTerms(topTerms map[string][]ml.WeightedTerm) error {
	rows := [][]string{{"sentiment", "rank", "term", "weight"}}

	classes := make([]string, 0, len(topTerms))
	for class := range topTerms {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	for _, class := range classes {
		for i, t := range topTerms[class] {
			rows = append(rows, []string{
				class,
				strconv.Itoa(i + 1),
				t.Term,
				strconv.FormatFloat(t.Weight, 'f', 6, 64),
			})
		}
	}
	return e.writeCSV("top_terms.csv", rows)
}

// WriteSuggestions writes the suggestions with provenance, plus a short
// human-readable summary file.
func (e *Exporter) WriteSuggestions(suggestions []model.Suggestion) error {
	rows := [][]string{{"suggestion", "source", "model", "generated_at"}}
	for _, s := range suggestions {
		rows = append(rows, []string{
			s.Text,
			string(s.Source),
			s.Model,
			s.GeneratedAt.UTC().Format(time.RFC3339),
		})
	}
	if err := e.writeCSV("business_suggestions.csv", rows); err != nil {
		return err
	}
	return e.writeSuggestionSummary(suggestions)
}

func (e *Exporter) writeSuggestionSummary(suggestions []model.Suggestion) error {
	var b []byte
	if len(suggestions) > 0 {
		b = append(b, fmt.Sprintf("Belangrijkste verbetersuggesties (bron=%s)\n", suggestions[0].Source)...)
		for _, s := range suggestions {
			b = append(b, fmt.Sprintf("- %s\n", s.Text)...)
		}
	} else {
		b = append(b, "Geen suggesties gegenereerd.\n"...)
	}
	return e.writeFile("business_suggestions.txt", b)
}

// WriteAverageRating writes the overall mean rating.
func (e *Exporter) WriteAverageRating(avg float64) error {
	rows := [][]string{
		{"average_rating"},
		{strconv.FormatFloat(avg, 'f', 3, 64)},
	}
	return e.writeCSV("average_rating.csv", rows)
}

// WriteModelReport writes the held-out evaluation report.
func (e *Exporter) WriteModelReport(result *ml.Result) error {
	report := fmt.Sprintf("selected: %s C=%g (cv macro-f1 %.3f, %d folds)\n\n%s",
		result.Best.Candidate.Family, result.Best.Candidate.C,
		result.Best.MeanF1, result.FoldCount, result.Holdout)
	return e.writeFile("model_report.txt", []byte(report))
}

func (e *Exporter) writeCSV(name string, rows [][]string) error {
	f, err := os.Create(filepath.Join(e.dir, name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (e *Exporter) writeFile(name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(e.dir, name), data, 0o640); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
