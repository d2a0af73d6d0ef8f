package model

import "time"

// SuggestionSource identifies which strategy produced a suggestion.
type SuggestionSource string

const (
	// SourceLLM marks suggestions generated by the external inference service.
	SourceLLM SuggestionSource = "llm"
	// SourceRule marks suggestions produced by the deterministic rule engine.
	SourceRule SuggestionSource = "rule"
)

// Suggestion is one actionable improvement recommendation with provenance.
type Suggestion struct {
	GeneratedAt time.Time
	Text        string
	Source      SuggestionSource
	Model       string // Model identifier for LLM suggestions, empty otherwise
}

// NewSuggestion stamps a suggestion with its provenance and generation time.
func NewSuggestion(text string, source SuggestionSource, modelID string) Suggestion {
	return Suggestion{
		Text:        text,
		Source:      source,
		Model:       modelID,
		GeneratedAt: time.Now().UTC(),
	}
}
