// Package engine orchestrates the full analysis pipeline: ingestion,
// normalization, complaint tagging, model selection and training, suggestion
// generation and artifact export.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"reviewlens/internal/common"
	"reviewlens/internal/complaints"
	"reviewlens/internal/config"
	"reviewlens/internal/export"
	"reviewlens/internal/features"
	"reviewlens/internal/ingest"
	"reviewlens/internal/ml"
	"reviewlens/internal/model"
	"reviewlens/internal/nlp"
	"reviewlens/internal/storage"
	"reviewlens/internal/suggest"
)

// Engine wires the pipeline stages together for one batch run.
type Engine struct {
	cfg        config.Config
	normalizer *nlp.Normalizer
	tagger     *complaints.Tagger
	generator  *suggest.Generator
	store      *storage.SQLiteStore // nil when storage is disabled
	onProgress func(done, total int)
}

// Summary reports what one run produced.
type Summary struct {
	RunID         string
	SelectedModel string
	Reviews       int
	Suggestions   int
	MacroF1       float64
	Accuracy      float64
	Trained       bool
}

// New assembles an engine from validated configuration. The morphological
// reduction capability is probed exactly once, here.
func New(cfg config.Config) (*Engine, error) {
	tagger, err := complaints.NewTagger()
	if err != nil {
		return nil, fmt.Errorf("failed to build complaint tagger: %w", err)
	}

	var llm suggest.Strategy
	if cfg.LLM.Enabled {
		llm = suggest.NewOllamaStrategy(cfg.LLM)
	}

	var store *storage.SQLiteStore
	if cfg.StoragePath != "" {
		store, err = storage.NewSQLiteStore(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open artifacts database: %w", err)
		}
	}

	return &Engine{
		cfg:        cfg,
		normalizer: nlp.NewNormalizer(nlp.SelectReducer(cfg.LemmaDictPath)),
		tagger:     tagger,
		generator:  suggest.NewGenerator(llm, suggest.NewRuleStrategy()),
		store:      store,
	}, nil
}

// SetProgress installs a callback for cross-validation progress reporting.
func (e *Engine) SetProgress(fn func(done, total int)) {
	e.onProgress = fn
}

// Close releases held resources.
func (e *Engine) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Run executes one batch analysis. Artifacts are written only after their
// producing stage fully completed.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	runID := uuid.New().String()
	startedAt := time.Now().UTC()
	summary := Summary{RunID: runID}

	common.LogInfo("starting analysis run", common.Fields{
		"run_id": runID,
		"input":  e.cfg.InputPath,
	})

	reviews, err := ingest.Load(e.cfg.InputPath)
	if err != nil {
		return summary, err
	}
	summary.Reviews = len(reviews)

	// Normalization and tagging are pure per-review enrichments.
	for i := range reviews {
		reviews[i].Tokens = e.normalizer.Normalize(reviews[i].Text)
		reviews[i].CleanedText = joinTokens(reviews[i].Tokens)
		reviews[i].Categories = complaints.Strings(e.tagger.TagReview(reviews[i]))
	}
	counts := complaints.Aggregate(reviews)

	result, err := e.trainModel(ctx, reviews)
	if err != nil {
		return summary, err
	}
	if result != nil {
		summary.Trained = true
		summary.SelectedModel = fmt.Sprintf("%s C=%g", result.Best.Candidate.Family, result.Best.Candidate.C)
		summary.MacroF1 = result.Best.MeanF1
		summary.Accuracy = result.Holdout.Accuracy
		common.LogInfo("model selected", common.Fields{
			"run_id":   runID,
			"model":    summary.SelectedModel,
			"macro_f1": summary.MacroF1,
			"accuracy": summary.Accuracy,
		})
	}

	suggestions := e.generator.Generate(ctx, suggest.Input{
		ComplaintCounts: counts.NegativeCounts(),
		NegativeSamples: negativeSamples(reviews, e.cfg.LLM.MaxNegSamples),
	})
	summary.Suggestions = len(suggestions)

	if err := ctx.Err(); err != nil {
		// Terminated mid-run: partial outputs are not valid, write nothing.
		return summary, err
	}

	if err := e.export(reviews, counts, result, suggestions); err != nil {
		return summary, err
	}

	if e.store != nil {
		run := storage.Run{
			ID:          runID,
			StartedAt:   startedAt,
			InputPath:   e.cfg.InputPath,
			Reviews:     reviews,
			Counts:      counts,
			Suggestions: suggestions,
		}
		if result != nil {
			run.SelectedModel = summary.SelectedModel
			run.MacroF1 = summary.MacroF1
			run.Accuracy = summary.Accuracy
			run.TopTerms = result.TopTerms
		}
		if err := e.store.SaveRun(ctx, run); err != nil {
			return summary, fmt.Errorf("failed to persist run: %w", err)
		}
	}

	common.LogInfo("analysis run complete", common.Fields{
		"run_id":      runID,
		"reviews":     summary.Reviews,
		"suggestions": summary.Suggestions,
		"elapsed":     time.Since(startedAt).Round(time.Millisecond).String(),
	})
	return summary, nil
}

// trainModel runs the stratified split, vectorizer fit and model selection.
// A corpus with fewer than two sentiment classes cannot be trained on and is
// a hard error.
func (e *Engine) trainModel(ctx context.Context, reviews []model.Review) (*ml.Result, error) {
	classNames := sentimentClassNames()
	labels := make([]int, len(reviews))
	for i, rv := range reviews {
		labels[i] = sentimentIndex(rv.Sentiment)
	}

	if ml.NonzeroClasses(labels, len(classNames)) < 2 {
		return nil, fmt.Errorf("corpus: %w", common.ErrTooFewClasses)
	}

	rng := rand.New(rand.NewSource(e.cfg.Training.Seed))
	trainIdx, testIdx := ml.StratifiedSplit(labels, len(classNames), e.cfg.Training.TestRatio, rng)

	// The vectorizer is fitted on the training split only; the held-out
	// split is transformed against the frozen vocabulary.
	trainDocs := make([][]string, len(trainIdx))
	for i, idx := range trainIdx {
		trainDocs[i] = reviews[idx].Tokens
	}
	vec := features.Fit(trainDocs)

	ds := ml.Dataset{
		TrainVecs:   make([]features.Vector, len(trainIdx)),
		TrainLabels: make([]int, len(trainIdx)),
		TestVecs:    make([]features.Vector, len(testIdx)),
		TestLabels:  make([]int, len(testIdx)),
	}
	for i, idx := range trainIdx {
		ds.TrainVecs[i] = vec.Transform(reviews[idx].Tokens)
		ds.TrainLabels[i] = labels[idx]
	}
	for i, idx := range testIdx {
		ds.TestVecs[i] = vec.Transform(reviews[idx].Tokens)
		ds.TestLabels[i] = labels[idx]
	}

	return ml.SelectAndTrain(ctx, ds, classNames, vec, ml.Options{
		Seed:       e.cfg.Training.Seed,
		MaxFolds:   e.cfg.Training.MaxFolds,
		Workers:    e.cfg.Training.Workers,
		OnProgress: e.onProgress,
	})
}

func (e *Engine) export(reviews []model.Review, counts complaints.Counts, result *ml.Result, suggestions []model.Suggestion) error {
	exporter, err := export.NewExporter(e.cfg.OutputDir)
	if err != nil {
		return err
	}
	if err := exporter.WriteEnrichedReviews(reviews); err != nil {
		return err
	}
	if err := exporter.WriteComplaintCounts(counts); err != nil {
		return err
	}
	if err := exporter.WriteAverageRating(averageRating(reviews)); err != nil {
		return err
	}
	if result != nil {
		if err := exporter.WriteTopTerms(result.TopTerms); err != nil {
			return err
		}
		if err := exporter.WriteModelReport(result); err != nil {
			return err
		}
	}
	return exporter.WriteSuggestions(suggestions)
}

// negativeSamples collects up to limit negative-review texts, in corpus order.
func negativeSamples(reviews []model.Review, limit int) []string {
	var out []string
	for _, rv := range reviews {
		if len(out) >= limit {
			break
		}
		if rv.Sentiment != model.SentimentNegative {
			continue
		}
		out = append(out, rv.Text)
	}
	return out
}

func averageRating(reviews []model.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, rv := range reviews {
		sum += rv.Rating
	}
	return float64(sum) / float64(len(reviews))
}

func sentimentClassNames() []string {
	sentiments := model.Sentiments()
	out := make([]string, len(sentiments))
	for i, s := range sentiments {
		out[i] = string(s)
	}
	return out
}

func sentimentIndex(s model.Sentiment) int {
	for i, v := range model.Sentiments() {
		if v == s {
			return i
		}
	}
	return 0
}

func joinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}
