package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"reviewlens/internal/common"
	"reviewlens/internal/config"
	"reviewlens/internal/model"
)

// systemInstructions primes the model as an operations analyst for a
// restaurant chain and demands a JSON array of Dutch suggestion strings.
const systemInstructions = "Je bent een operationeel analist voor een restaurantketen. " +
	"Lees de aantallen per klachtcategorie en een steekproef van recente negatieve reviews. " +
	"Formuleer 3-7 beknopte, uitvoerbare verbetersuggesties voor het bedrijf. " +
	"Iedere suggestie is specifiek, haalbaar en gericht op operationele verbeteringen " +
	"(bezetting, processen, kwaliteitscontrole, training, menu, prijsstelling, ambiance). " +
	"Vermijd algemene adviezen. Gebruik bewijs uit de data. " +
	"Geef het antwoord ALLEEN terug als een JSON-lijst met Nederlandstalige strings."

// maxSnippetLen truncates each negative review sample in the prompt.
const maxSnippetLen = 400

// OllamaStrategy generates suggestions through a local Ollama instance.
type OllamaStrategy struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewOllamaStrategy builds the LLM strategy from configuration. The HTTP
// client timeout bounds the single attempt; the caller falls back on any
// failure.
func NewOllamaStrategy(cfg config.LLM) *OllamaStrategy {
	return &OllamaStrategy{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name implements Strategy.
func (s *OllamaStrategy) Name() string { return "ollama" }

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends one completion request and parses the suggestion list.
// Empty, malformed or late responses are errors so the caller can fall back.
func (s *OllamaStrategy) Generate(ctx context.Context, in Input) ([]model.Suggestion, error) {
	prompt := buildPrompt(in)

	body, err := json.Marshal(generateRequest{
		Model:  s.model,
		Prompt: fmt.Sprintf("System Instructions:\n%s\n\nUser:\n%s", systemInstructions, prompt),
		Stream: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrLLMUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", common.ErrLLMUnavailable, resp.StatusCode, string(respBody))
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	texts := parseSuggestionList(gr.Response)
	if len(texts) == 0 {
		return nil, common.ErrEmptyResponse
	}

	modelID := "ollama:" + s.model
	out := make([]model.Suggestion, 0, len(texts))
	for _, t := range texts {
		out = append(out, model.NewSuggestion(t, model.SourceLLM, modelID))
	}
	return out, nil
}

// buildPrompt renders the complaint counts (descending, then alphabetical)
// and a numbered sample of negative reviews.
func buildPrompt(in Input) string {
	type kv struct {
		cat   string
		count int
	}
	sorted := make([]kv, 0, len(in.ComplaintCounts))
	for c, n := range in.ComplaintCounts {
		sorted = append(sorted, kv{cat: c, count: n})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].cat < sorted[j].cat
	})

	var b strings.Builder
	b.WriteString("Aantallen per klachtcategorie:\n")
	for _, e := range sorted {
		fmt.Fprintf(&b, "- %s: %d\n", e.cat, e.count)
	}
	b.WriteString("\nVoorbeeld negatieve reviews (ingekort):\n")
	for i, r := range in.NegativeSamples {
		snippet := strings.TrimSpace(r)
		if runes := []rune(snippet); len(runes) > maxSnippetLen {
			snippet = string(runes[:maxSnippetLen]) + "…"
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, snippet)
	}
	b.WriteString("\nGenereer beknopte, kwalitatieve suggesties. " +
		"Antwoord ALLEEN met een JSON-array van Nederlandstalige strings (geen extra tekst).")
	return b.String()
}

// parseSuggestionList extracts suggestion strings from the model output.
// Preferred form is a JSON array; a line-based heuristic covers models that
// ignore the format instruction. Duplicates are removed preserving order.
func parseSuggestionList(text string) []string {
	text = cleanMarkdownWrapper(strings.TrimSpace(text))

	var parsed []string
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start != -1 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err == nil {
			return dedupe(parsed)
		}
	}

	// Not JSON: keep 3-7 plausible lines.
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.Trim(strings.TrimSpace(ln), "-•* ")
		if len(ln) > 6 {
			lines = append(lines, ln)
		}
		if len(lines) == 7 {
			break
		}
	}
	return dedupe(lines)
}

// cleanMarkdownWrapper strips a ```json ... ``` fence if the model added one.
func cleanMarkdownWrapper(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
