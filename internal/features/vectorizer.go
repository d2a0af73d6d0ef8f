// Package features turns normalized token sequences into fixed-width TF-IDF
// feature vectors combining word-level and character-level representations.
package features

import (
	"math"
	"sort"
	"strings"
)

// Word-level n-grams span 1-2 consecutive tokens; character-level n-grams
// span 3-5 characters of the joined text.
const (
	wordNGramMin = 1
	wordNGramMax = 2
	charNGramMin = 3
	charNGramMax = 5

	// maxWordFeatures caps the word-level vocabulary, selected by global
	// term frequency. The character vocabulary is uncapped.
	maxWordFeatures = 40000

	// minDocFreq and maxDocShare bound document frequency for both
	// representations: terms in fewer than minDocFreq documents or in more
	// than maxDocShare of all documents are excluded at fit time.
	minDocFreq  = 2
	maxDocShare = 0.9
)

// Vector is a sparse feature vector with indices in ascending order.
type Vector struct {
	Indices []int
	Values  []float64
}

// Dot computes the dot product with a dense weight vector.
func (v Vector) Dot(weights []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		sum += v.Values[i] * weights[idx]
	}
	return sum
}

// Vectorizer holds the fitted vocabulary and IDF weights. Transform never
// mutates this state; unseen terms contribute zero weight.
type Vectorizer struct {
	wordVocab map[string]int
	charVocab map[string]int
	wordIDF   []float64
	charIDF   []float64
	names     []string
	wordCount int
}

// Fit builds the vocabulary and IDF weights over the training corpus only.
func Fit(docs [][]string) *Vectorizer {
	n := len(docs)

	wordDF := make(map[string]int)
	wordTF := make(map[string]int)
	for _, doc := range docs {
		grams := wordNGrams(doc)
		seen := make(map[string]struct{}, len(grams))
		for _, g := range grams {
			wordTF[g]++
			seen[g] = struct{}{}
		}
		for g := range seen {
			wordDF[g]++
		}
	}

	charDF := make(map[string]int)
	for _, doc := range docs {
		grams := charNGrams(joinTokens(doc))
		seen := make(map[string]struct{}, len(grams))
		for _, g := range grams {
			seen[g] = struct{}{}
		}
		for g := range seen {
			charDF[g]++
		}
	}

	wordTerms := selectTerms(wordDF, n)
	// Cap the word vocabulary by global term frequency, ties resolved
	// alphabetically so fitting is deterministic.
	if len(wordTerms) > maxWordFeatures {
		sort.Slice(wordTerms, func(i, j int) bool {
			if wordTF[wordTerms[i]] != wordTF[wordTerms[j]] {
				return wordTF[wordTerms[i]] > wordTF[wordTerms[j]]
			}
			return wordTerms[i] < wordTerms[j]
		})
		wordTerms = wordTerms[:maxWordFeatures]
	}
	sort.Strings(wordTerms)
	charTerms := selectTerms(charDF, n)
	sort.Strings(charTerms)

	v := &Vectorizer{
		wordVocab: make(map[string]int, len(wordTerms)),
		charVocab: make(map[string]int, len(charTerms)),
		wordIDF:   make([]float64, len(wordTerms)),
		charIDF:   make([]float64, len(charTerms)),
		names:     make([]string, 0, len(wordTerms)+len(charTerms)),
		wordCount: len(wordTerms),
	}
	for i, term := range wordTerms {
		v.wordVocab[term] = i
		v.wordIDF[i] = smoothIDF(n, wordDF[term])
		v.names = append(v.names, term)
	}
	for i, term := range charTerms {
		v.charVocab[term] = i
		v.charIDF[i] = smoothIDF(n, charDF[term])
		v.names = append(v.names, term)
	}
	return v
}

// Transform maps a token sequence onto the fitted vocabulary. The word and
// character sub-vectors are each L2-normalized, then concatenated.
func (v *Vectorizer) Transform(tokens []string) Vector {
	wordPart := weigh(countTerms(wordNGrams(tokens), v.wordVocab), v.wordIDF)
	charPart := weigh(countTerms(charNGrams(joinTokens(tokens)), v.charVocab), v.charIDF)

	out := Vector{
		Indices: make([]int, 0, len(wordPart.Indices)+len(charPart.Indices)),
		Values:  make([]float64, 0, len(wordPart.Indices)+len(charPart.Indices)),
	}
	out.Indices = append(out.Indices, wordPart.Indices...)
	out.Values = append(out.Values, wordPart.Values...)
	for i, idx := range charPart.Indices {
		out.Indices = append(out.Indices, idx+v.wordCount)
		out.Values = append(out.Values, charPart.Values[i])
	}
	return out
}

// Width is the fixed feature-vector width, frozen at fit time.
func (v *Vectorizer) Width() int {
	return v.wordCount + len(v.charVocab)
}

// FeatureNames returns the term behind every feature index.
func (v *Vectorizer) FeatureNames() []string {
	return v.names
}

// IsWordFeature reports whether an index belongs to the word-level block.
func (v *Vectorizer) IsWordFeature(idx int) bool {
	return idx < v.wordCount
}

func wordNGrams(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	grams := make([]string, 0, len(tokens)*2)
	for n := wordNGramMin; n <= wordNGramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

func charNGrams(text string) []string {
	runes := []rune(text)
	if len(runes) < charNGramMin {
		return nil
	}
	grams := make([]string, 0, len(runes)*3)
	for n := charNGramMin; n <= charNGramMax; n++ {
		for i := 0; i+n <= len(runes); i++ {
			grams = append(grams, string(runes[i:i+n]))
		}
	}
	return grams
}

func joinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}

// selectTerms applies the document-frequency bounds.
func selectTerms(df map[string]int, nDocs int) []string {
	maxDF := int(math.Floor(maxDocShare * float64(nDocs)))
	if maxDF < minDocFreq {
		maxDF = minDocFreq
	}
	terms := make([]string, 0, len(df))
	for term, freq := range df {
		if freq < minDocFreq || freq > maxDF {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// smoothIDF is ln((1+n)/(1+df)) + 1.
func smoothIDF(nDocs, df int) float64 {
	return math.Log(float64(1+nDocs)/float64(1+df)) + 1
}

func countTerms(grams []string, vocab map[string]int) map[int]int {
	counts := make(map[int]int)
	for _, g := range grams {
		if idx, ok := vocab[g]; ok {
			counts[idx]++
		}
	}
	return counts
}

// weigh turns raw term counts into an L2-normalized TF-IDF sub-vector.
func weigh(counts map[int]int, idf []float64) Vector {
	if len(counts) == 0 {
		return Vector{}
	}
	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var norm float64
	for i, idx := range indices {
		w := float64(counts[idx]) * idf[idx]
		values[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range values {
			values[i] /= norm
		}
	}
	return Vector{Indices: indices, Values: values}
}
