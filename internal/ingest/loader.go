// Package ingest loads raw review records from CSV and maps them onto the
// internal schema.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"reviewlens/internal/common"
	"reviewlens/internal/model"
)

// columnAliases maps recognized case-insensitive header names onto the
// internal field names.
var columnAliases = map[string]string{
	"source":      "source",
	"rating":      "rating",
	"stars":       "rating",
	"review":      "review",
	"review_text": "review",
	"location":    "location",
	"locatie":     "location",
	"timestamp":   "timestamp",
	"review_date": "timestamp",
	"date":        "timestamp",
}

// timestampLayouts are tried in order when parsing the review date.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02-01-2006",
	"2006/01/02",
}

// Load reads the CSV at path and returns cleaned, deduplicated reviews with
// derived fields filled in. Rows missing review text or a parseable rating
// are dropped, never fatal; ratings are clamped into [1,5].
func Load(path string) ([]model.Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	reviews, dropped, err := parse(f)
	if err != nil {
		return nil, err
	}

	before := len(reviews)
	reviews = model.DedupeReviews(reviews)

	common.LogInfo("loaded reviews", common.Fields{
		"path":       path,
		"rows":       len(reviews),
		"dropped":    dropped,
		"duplicates": before - len(reviews),
	})
	if len(reviews) == 0 {
		return nil, common.ErrNoReviews
	}
	return reviews, nil
}

func parse(r io.Reader) ([]model.Review, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if field, ok := columnAliases[key]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}
	if _, ok := cols["review"]; !ok {
		return nil, 0, fmt.Errorf("%w: review", common.ErrMissingColumn)
	}
	if _, ok := cols["rating"]; !ok {
		return nil, 0, fmt.Errorf("%w: rating", common.ErrMissingColumn)
	}

	var reviews []model.Review
	dropped := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row: drop and continue.
			dropped++
			continue
		}

		text := strings.TrimSpace(field(record, cols, "review"))
		rating, ratingOK := parseRating(field(record, cols, "rating"))
		if text == "" || !ratingOK {
			dropped++
			continue
		}

		rv := model.Review{
			Source:    strings.TrimSpace(field(record, cols, "source")),
			Location:  strings.TrimSpace(field(record, cols, "location")),
			Text:      text,
			Rating:    rating,
			Timestamp: parseTimestamp(field(record, cols, "timestamp")),
		}
		rv.Derive()
		reviews = append(reviews, rv)
	}
	return reviews, dropped, nil
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func parseRating(s string) (int, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return model.ClampRating(int(math.Round(v))), true
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
