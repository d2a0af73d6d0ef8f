package nlp

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"reviewlens/internal/common"
)

// Reducer reduces a token to its morphological base form. Implementations
// must be pure and safe for concurrent use.
type Reducer interface {
	// Reduce returns the base form of a single lowercase token.
	Reduce(token string) string
	// Name identifies the reduction capability for logging and reports.
	Name() string
}

// SelectReducer probes the optional lemma dictionary once at startup and
// returns the richest available reducer: a dictionary lemmatizer when the
// dictionary loads, otherwise the built-in Dutch stemmer. The stemmer path is
// a degraded mode, logged as such, never an error.
func SelectReducer(lemmaDictPath string) Reducer {
	if lemmaDictPath != "" {
		lem, err := NewDictLemmatizer(lemmaDictPath)
		if err == nil {
			common.LogInfo("using lemma dictionary", common.Fields{
				"path":    lemmaDictPath,
				"entries": lem.Len(),
			})
			return lem
		}
		common.LogWarn("lemma dictionary unavailable, falling back to stemming", common.Fields{
			"path":  lemmaDictPath,
			"error": err.Error(),
		})
	}
	return NewDutchStemmer()
}

// DictLemmatizer reduces tokens through a form→lemma lookup table loaded from
// a tab-separated dictionary file. Unknown forms pass through unchanged.
type DictLemmatizer struct {
	lemmas map[string]string
}

// NewDictLemmatizer loads a lemma dictionary. Each line holds a surface form
// and its lemma separated by a tab; malformed lines are skipped.
func NewDictLemmatizer(path string) (*DictLemmatizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lemma dictionary: %w", err)
	}
	defer func() { _ = f.Close() }()

	lemmas := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		form, lemma, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		form = strings.ToLower(strings.TrimSpace(form))
		lemma = strings.ToLower(strings.TrimSpace(lemma))
		if form == "" || lemma == "" {
			continue
		}
		lemmas[form] = lemma
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lemma dictionary: %w", err)
	}
	if len(lemmas) == 0 {
		return nil, fmt.Errorf("lemma dictionary %s contains no entries", path)
	}

	return &DictLemmatizer{lemmas: lemmas}, nil
}

// Reduce returns the lemma for a known form, or the token unchanged.
func (d *DictLemmatizer) Reduce(token string) string {
	if lemma, ok := d.lemmas[token]; ok {
		return lemma
	}
	return token
}

// Name implements Reducer.
func (d *DictLemmatizer) Name() string { return "lemma" }

// Len reports the number of dictionary entries.
func (d *DictLemmatizer) Len() int { return len(d.lemmas) }
