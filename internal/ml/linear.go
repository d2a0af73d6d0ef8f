// Package ml implements linear sentiment classifiers, stratified evaluation
// protocol and model selection by cross-validated macro-F1.
package ml

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"reviewlens/internal/features"
)

// Family identifies a linear classifier family.
type Family string

const (
	// FamilyLogistic is the probabilistic linear classifier.
	FamilyLogistic Family = "logreg"
	// FamilySVM is the margin-based linear classifier.
	FamilySVM Family = "linsvc"
)

// Candidate is one (family, regularization strength) pair in the grid.
type Candidate struct {
	Family Family
	C      float64
}

// trainEpochs is the fixed number of SGD passes per fit. Deterministic for a
// given seed.
const trainEpochs = 50

// baseLearningRate is the initial SGD step size.
const baseLearningRate = 0.5

// LinearModel is a one-vs-rest linear classifier over sparse TF-IDF vectors.
type LinearModel struct {
	Candidate Candidate
	Weights   [][]float64 // one dense weight vector per class
	Bias      []float64
	Classes   []string
}

// Predict returns the class index with the highest decision value.
func (m *LinearModel) Predict(v features.Vector) int {
	best := 0
	bestScore := math.Inf(-1)
	for c := range m.Weights {
		score := v.Dot(m.Weights[c]) + m.Bias[c]
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

// PredictAll classifies every vector.
func (m *LinearModel) PredictAll(vecs []features.Vector) []int {
	out := make([]int, len(vecs))
	for i, v := range vecs {
		out[i] = m.Predict(v)
	}
	return out
}

// Train fits a one-vs-rest linear model with SGD. Class imbalance is
// compensated with balanced class weights (n / (k * count)). The RNG drives
// only the per-epoch sample order, so training is deterministic per seed.
func Train(cand Candidate, vecs []features.Vector, labels []int, numClasses, width int, rng *rand.Rand) *LinearModel {
	n := len(vecs)
	m := &LinearModel{
		Candidate: cand,
		Weights:   make([][]float64, numClasses),
		Bias:      make([]float64, numClasses),
	}
	for c := range m.Weights {
		m.Weights[c] = make([]float64, width)
	}
	if n == 0 {
		return m
	}

	classWeights := balancedClassWeights(labels, numClasses)
	lambda := 1.0 / (cand.C * float64(n))

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	step := 0
	for epoch := 0; epoch < trainEpochs; epoch++ {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		for _, i := range order {
			eta := baseLearningRate / (1 + lambda*baseLearningRate*float64(step))
			step++
			x := vecs[i]
			cw := classWeights[labels[i]]

			for c := 0; c < numClasses; c++ {
				target := -1.0
				if labels[i] == c {
					target = 1.0
				}
				score := x.Dot(m.Weights[c]) + m.Bias[c]

				var grad float64
				switch cand.Family {
				case FamilySVM:
					// Hinge loss: update only inside the margin.
					if target*score < 1 {
						grad = -target
					}
				default:
					// Logistic loss on {-1,+1} targets.
					grad = -target / (1 + math.Exp(target*score))
				}
				if grad == 0 {
					continue
				}
				g := eta * cw * grad
				for k, idx := range x.Indices {
					m.Weights[c][idx] -= g * x.Values[k]
				}
				m.Bias[c] -= g
			}
		}

		// L2 shrinkage applied once per epoch over the dense weights.
		shrink := 1.0 / (1.0 + baseLearningRate*lambda*float64(n))
		for c := range m.Weights {
			floats.Scale(shrink, m.Weights[c])
		}
	}
	return m
}

// balancedClassWeights computes n / (k * count) per class, the automatic
// reweighting that keeps minority sentiment classes from being starved.
func balancedClassWeights(labels []int, numClasses int) []float64 {
	counts := make([]float64, numClasses)
	for _, y := range labels {
		counts[y]++
	}
	weights := make([]float64, numClasses)
	n := float64(len(labels))
	k := float64(numClasses)
	for c := range weights {
		if counts[c] > 0 {
			weights[c] = n / (k * counts[c])
		}
	}
	return weights
}
