package ml

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"reviewlens/internal/common"
	"reviewlens/internal/features"
)

// scoreTolerance treats candidate scores within this distance as tied, so
// the tie-break (simpler family, then stronger regularization) applies.
const scoreTolerance = 1e-9

// topTermCount is the number of top-weighted terms reported per class.
const topTermCount = 15

// Grid returns the candidate grid in canonical order: the probabilistic
// family before the margin-based one, regularization strength ascending.
// Selection walks this order, so ties resolve to the earlier candidate.
func Grid() []Candidate {
	var grid []Candidate
	for _, c := range []float64{0.1, 0.5, 1.0, 3.0, 10.0} {
		grid = append(grid, Candidate{Family: FamilyLogistic, C: c})
	}
	for _, c := range []float64{0.5, 1.0, 3.0, 10.0} {
		grid = append(grid, Candidate{Family: FamilySVM, C: c})
	}
	return grid
}

// Dataset bundles the pre-split, pre-vectorized corpus.
type Dataset struct {
	TrainVecs   []features.Vector
	TestVecs    []features.Vector
	TrainLabels []int
	TestLabels  []int
}

// Options configures model selection.
type Options struct {
	OnProgress func(done, total int)
	Seed       int64
	MaxFolds   int
	Workers    int
}

// Scored is one evaluated candidate with its mean cross-validated macro-F1.
type Scored struct {
	Candidate Candidate
	MeanF1    float64
}

// WeightedTerm is one interpretability artifact entry.
type WeightedTerm struct {
	Term   string
	Weight float64
}

// Result holds the selected model and all evaluation artifacts.
type Result struct {
	Model     *LinearModel
	TopTerms  map[string][]WeightedTerm
	Grid      []Scored
	Holdout   Report
	Best      Scored
	FoldCount int
}

// cvJob is one independent (candidate, fold) evaluation.
type cvJob struct {
	candidate int
	fold      int
}

// SelectAndTrain runs the full selection protocol: stratified k-fold
// cross-validation of every grid candidate on the training split, selection
// by mean macro-F1, refit on the full training split and a single held-out
// evaluation. Deterministic for a fixed seed regardless of worker count.
func SelectAndTrain(ctx context.Context, ds Dataset, classNames []string, vec *features.Vectorizer, opts Options) (*Result, error) {
	numClasses := len(classNames)
	if NonzeroClasses(ds.TrainLabels, numClasses) < 2 {
		return nil, fmt.Errorf("training split has %d usable classes: %w",
			NonzeroClasses(ds.TrainLabels, numClasses), common.ErrTooFewClasses)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	grid := Grid()
	result := &Result{Grid: make([]Scored, len(grid)), FoldCount: ViableFoldCount(ds.TrainLabels, numClasses, opts.MaxFolds)}
	for i, cand := range grid {
		result.Grid[i] = Scored{Candidate: cand}
	}

	if result.FoldCount >= 2 {
		scores := crossValidate(ctx, ds, numClasses, vec.Width(), grid, result.FoldCount, opts)
		for i := range grid {
			result.Grid[i].MeanF1 = stat.Mean(scores[i], nil)
		}
	} else {
		common.LogWarn("not enough examples per class for cross-validation, using first candidate", common.Fields{
			"max_folds": opts.MaxFolds,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Canonical grid order makes the tie-break implicit: replace only on a
	// strictly better score.
	best := 0
	for i := 1; i < len(result.Grid); i++ {
		if result.Grid[i].MeanF1 > result.Grid[best].MeanF1+scoreTolerance {
			best = i
		}
	}
	result.Best = result.Grid[best]

	// Refit the winner on the full training split, evaluate once held-out.
	rng := rand.New(rand.NewSource(opts.Seed))
	result.Model = Train(result.Best.Candidate, ds.TrainVecs, ds.TrainLabels, numClasses, vec.Width(), rng)
	result.Model.Classes = classNames
	result.Holdout = Evaluate(ds.TestLabels, result.Model.PredictAll(ds.TestVecs), classNames)
	result.TopTerms = topTerms(result.Model, classNames, vec)

	return result, nil
}

// crossValidate evaluates every (candidate, fold) pair on a worker pool.
// Each evaluation is independent; scores are merged by index, so completion
// order cannot affect the outcome.
func crossValidate(ctx context.Context, ds Dataset, numClasses, width int, grid []Candidate, foldCount int, opts Options) [][]float64 {
	foldRng := rand.New(rand.NewSource(opts.Seed))
	foldOf := StratifiedKFold(ds.TrainLabels, numClasses, foldCount, foldRng)

	scores := make([][]float64, len(grid))
	for i := range scores {
		scores[i] = make([]float64, foldCount)
	}

	total := len(grid) * foldCount
	jobs := make(chan cvJob, total)
	for ci := range grid {
		for fi := 0; fi < foldCount; fi++ {
			jobs <- cvJob{candidate: ci, fold: fi}
		}
	}
	close(jobs)

	done := make(chan struct{}, total)

	var wg sync.WaitGroup
	wg.Add(opts.Workers)
	for w := 0; w < opts.Workers; w++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				scores[job.candidate][job.fold] = evaluateFold(ds, foldOf, job, grid[job.candidate], numClasses, width, opts.Seed)
				done <- struct{}{}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	completed := 0
	for range done {
		completed++
		if opts.OnProgress != nil {
			opts.OnProgress(completed, total)
		}
	}
	return scores
}

// evaluateFold trains one candidate on all-but-one fold and scores macro-F1
// on the held-back fold. The RNG seed mixes the base seed with the job
// coordinates so results do not depend on which worker runs the job.
func evaluateFold(ds Dataset, foldOf []int, job cvJob, cand Candidate, numClasses, width int, seed int64) float64 {
	var trainVecs, testVecs []features.Vector
	var trainLabels, testLabels []int
	for i, f := range foldOf {
		if f == job.fold {
			testVecs = append(testVecs, ds.TrainVecs[i])
			testLabels = append(testLabels, ds.TrainLabels[i])
		} else {
			trainVecs = append(trainVecs, ds.TrainVecs[i])
			trainLabels = append(trainLabels, ds.TrainLabels[i])
		}
	}

	rng := rand.New(rand.NewSource(seed + int64(job.candidate)*1009 + int64(job.fold)*9176))
	model := Train(cand, trainVecs, trainLabels, numClasses, width, rng)
	return MacroF1(testLabels, model.PredictAll(testVecs), numClasses)
}

// topTerms extracts the highest-weighted word-level terms per class from the
// linear coefficients.
func topTerms(model *LinearModel, classNames []string, vec *features.Vectorizer) map[string][]WeightedTerm {
	names := vec.FeatureNames()
	out := make(map[string][]WeightedTerm, len(classNames))

	for c, class := range classNames {
		terms := make([]WeightedTerm, 0, topTermCount)
		for idx, w := range model.Weights[c] {
			if w <= 0 || !vec.IsWordFeature(idx) {
				continue
			}
			terms = append(terms, WeightedTerm{Term: names[idx], Weight: w})
		}
		sort.Slice(terms, func(i, j int) bool {
			if terms[i].Weight != terms[j].Weight {
				return terms[i].Weight > terms[j].Weight
			}
			return terms[i].Term < terms[j].Term
		})
		if len(terms) > topTermCount {
			terms = terms[:topTermCount]
		}
		out[class] = terms
	}
	return out
}
