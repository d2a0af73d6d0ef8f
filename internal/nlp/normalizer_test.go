package nlp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStemNormalizer() *Normalizer {
	return NewNormalizer(NewDutchStemmer())
}

func TestNormalize_NegationCompounding(t *testing.T) {
	n := newStemNormalizer()

	tokens := n.Normalize("het eten was niet lekker")
	assert.Equal(t, []string{"not_lekker"}, tokens)
}

func TestNormalize_NegationGeen(t *testing.T) {
	n := newStemNormalizer()

	tokens := n.Normalize("geen aandacht van het personeel")
	require.NotEmpty(t, tokens)
	assert.Equal(t, "not_aandacht", tokens[0])
	assert.NotContains(t, tokens, "geen")
	assert.NotContains(t, tokens, "aandacht")
}

func TestNormalize_NegationBeforeStopwordConsumesBoth(t *testing.T) {
	n := newStemNormalizer()

	// "niet" followed by a stopword: both are consumed, nothing is emitted.
	tokens := n.Normalize("niet veel bijzonders")
	assert.NotContains(t, tokens, "not_veel")
	for _, tok := range tokens {
		assert.NotEqual(t, "niet", tok)
	}
}

func TestNormalize_StripsURLsAndDigits(t *testing.T) {
	n := newStemNormalizer()

	tokens := n.Normalize("bezoek https://voorbeeld.nl/menu of www.site.nl op 12 januari 2024")
	assert.Contains(t, tokens, "bezoek")
	assert.Contains(t, tokens, "januari")
	for _, tok := range tokens {
		assert.NotContains(t, tok, "http")
		assert.NotContains(t, tok, "www")
		assert.NotContains(t, tok, "12")
	}
}

func TestNormalize_RemovesStopwordsAndShortTokens(t *testing.T) {
	n := newStemNormalizer()

	tokens := n.Normalize("de ik en op zo ok")
	assert.Empty(t, tokens)
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := newStemNormalizer()

	assert.Empty(t, n.Normalize(""))
	assert.Empty(t, n.Normalize("   \t  "))
	assert.Empty(t, n.Normalize("!!! ??? ..."))
}

func TestNormalize_Idempotent(t *testing.T) {
	n := newStemNormalizer()

	inputs := []string{
		"de bediening was niet vriendelijk en het eten was koud",
		"we hebben te lang moeten wachten op onze bestelling",
		"heerlijk gegeten, vriendelijke bediening, zeker een aanrader!",
		"veel te duur voor wat je krijgt",
	}
	for _, raw := range inputs {
		first := n.Normalize(raw)
		second := n.Normalize(strings.Join(first, " "))
		assert.Equal(t, first, second, "input %q", raw)
	}
}

func TestNormalize_PunctuationStripped(t *testing.T) {
	n := newStemNormalizer()

	tokens := n.Normalize("slecht!!! echt, heel slecht...")
	for _, tok := range tokens {
		assert.NotContains(t, tok, "!")
		assert.NotContains(t, tok, ",")
		assert.NotContains(t, tok, ".")
	}
	assert.Contains(t, tokens, "slecht")
}

func TestNormalizeJoined(t *testing.T) {
	n := newStemNormalizer()

	joined := n.NormalizeJoined("het eten was niet lekker")
	assert.Equal(t, "not_lekker", joined)
}
