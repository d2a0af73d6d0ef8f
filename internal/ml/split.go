package ml

import (
	"math"
	"math/rand"

	"reviewlens/internal/common"
)

// StratifiedSplit partitions sample indices into train and held-out sets,
// preserving the class proportions of labels. Classes with fewer than two
// examples are excluded from stratification and placed in the training set
// with a warning, not a hard failure.
func StratifiedSplit(labels []int, numClasses int, testRatio float64, rng *rand.Rand) (train, test []int) {
	byClass := make([][]int, numClasses)
	for i, y := range labels {
		byClass[y] = append(byClass[y], i)
	}

	for c, idxs := range byClass {
		if len(idxs) == 0 {
			continue
		}
		if len(idxs) < 2 {
			common.LogWarn("class excluded from stratified split", common.Fields{
				"class":    c,
				"examples": len(idxs),
			})
			train = append(train, idxs...)
			continue
		}
		shuffled := make([]int, len(idxs))
		copy(shuffled, idxs)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		nTest := int(math.Round(testRatio * float64(len(shuffled))))
		if nTest < 1 {
			nTest = 1
		}
		if nTest >= len(shuffled) {
			nTest = len(shuffled) - 1
		}
		test = append(test, shuffled[:nTest]...)
		train = append(train, shuffled[nTest:]...)
	}
	return train, test
}

// StratifiedKFold assigns each sample to one of k folds, preserving class
// proportions per fold. The returned slice maps sample position to fold.
func StratifiedKFold(labels []int, numClasses, k int, rng *rand.Rand) []int {
	folds := make([]int, len(labels))

	byClass := make([][]int, numClasses)
	for i, y := range labels {
		byClass[y] = append(byClass[y], i)
	}

	for _, idxs := range byClass {
		shuffled := make([]int, len(idxs))
		copy(shuffled, idxs)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		for pos, idx := range shuffled {
			folds[idx] = pos % k
		}
	}
	return folds
}

// ViableFoldCount reduces the requested fold count to what the smallest class
// can support, never below two. Returns 0 when even two folds are not viable.
func ViableFoldCount(labels []int, numClasses, maxFolds int) int {
	counts := make([]int, numClasses)
	for _, y := range labels {
		counts[y]++
	}
	minCount := math.MaxInt
	for _, c := range counts {
		if c > 0 && c < minCount {
			minCount = c
		}
	}
	if minCount == math.MaxInt {
		return 0
	}

	k := minCount
	if k > maxFolds {
		k = maxFolds
	}
	if k < 2 {
		return 0
	}
	return k
}

// NonzeroClasses counts the classes with at least one example.
func NonzeroClasses(labels []int, numClasses int) int {
	counts := make([]int, numClasses)
	for _, y := range labels {
		counts[y]++
	}
	n := 0
	for _, c := range counts {
		if c > 0 {
			n++
		}
	}
	return n
}
