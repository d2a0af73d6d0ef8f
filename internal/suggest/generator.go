// Package suggest turns aggregated negative-complaint signal into actionable
// improvement suggestions. Two interchangeable strategies sit behind one
// contract: an external inference service and a deterministic rule engine.
// Callers never branch on which strategy ran; provenance travels on the
// suggestions themselves.
package suggest

import (
	"context"

	"reviewlens/internal/common"
	"reviewlens/internal/model"
)

// Input is the aggregated signal the strategies consume.
type Input struct {
	// ComplaintCounts holds per-category counts over negative reviews.
	ComplaintCounts map[string]int
	// NegativeSamples is a capped sample of negative review texts.
	NegativeSamples []string
}

// Strategy produces an ordered list of suggestions from the aggregated
// signal. A strategy that cannot produce any usable suggestion returns an
// error, never an empty success.
type Strategy interface {
	Generate(ctx context.Context, in Input) ([]model.Suggestion, error)
	Name() string
}

// Generator applies the selection policy: the LLM strategy runs first when
// configured, and any failure falls back to the rule strategy for the whole
// run. One strategy's output is never mixed with the other's.
type Generator struct {
	llm      Strategy // nil when the LLM strategy is disabled
	fallback Strategy
}

// NewGenerator builds a generator. llm may be nil to disable the external
// service entirely.
func NewGenerator(llm, fallback Strategy) *Generator {
	return &Generator{llm: llm, fallback: fallback}
}

// Generate never fails: the rule strategy is deterministic and network-free.
// The LLM strategy gets a single attempt; there is no retry loop.
func (g *Generator) Generate(ctx context.Context, in Input) []model.Suggestion {
	if g.llm != nil {
		suggestions, err := g.llm.Generate(ctx, in)
		if err == nil {
			return suggestions
		}
		common.LogWarn("inference service failed, falling back to rule strategy", common.Fields{
			"strategy": g.llm.Name(),
			"error":    err.Error(),
		})
	}

	suggestions, err := g.fallback.Generate(ctx, in)
	if err != nil {
		// The rule strategy cannot fail in practice; guard anyway so the
		// pipeline always terminates with an artifact.
		common.LogError(err, "rule strategy failed", nil)
		return nil
	}
	return suggestions
}
