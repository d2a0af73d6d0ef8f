package suggest

import (
	"context"
	"sort"

	"reviewlens/internal/complaints"
	"reviewlens/internal/model"
)

// maxRuleSuggestions caps how many top categories get a template.
const maxRuleSuggestions = 5

// ruleTemplates holds one canned, category-specific suggestion per taxonomy
// category. Wording is implementation-defined policy.
var ruleTemplates = map[complaints.Category]string{
	complaints.CategoryService:       "Train het bedienend personeel op gastvrijheid en plan extra aandacht voor tafels tijdens piekuren.",
	complaints.CategoryWaitTime:      "Verkort de wachttijden: herzie de keukenplanning en zet extra personeel in op drukke momenten.",
	complaints.CategoryFoodQuality:   "Voer een kwaliteitscontrole in op gerechten voordat ze de keuken verlaten en evalueer receptuur van veelgenoemde gerechten.",
	complaints.CategoryPortionTemp:   "Controleer de serveertemperatuur van gerechten en verkort de tijd tussen bereiding en uitserveren.",
	complaints.CategoryPricingValue:  "Herzie de prijs-kwaliteitverhouding van de menukaart en communiceer duidelijker wat gasten voor hun geld krijgen.",
	complaints.CategoryAmbience:      "Verbeter de sfeer in de zaal: beoordeel het geluidsniveau, de muziekkeuze en de klimaatbeheersing.",
	complaints.CategoryOrderAccuracy: "Verminder bestelfouten met een controlemoment bij het doorgeven en uitserveren van bestellingen.",
	complaints.CategoryCleanliness:   "Scherp het schoonmaakschema aan en voer dagelijkse hygiënecontroles uit in zaal en sanitair.",
}

// fallbackSuggestion is emitted when no recurring pain point is found, so
// the run always terminates with a suggestions artifact.
const fallbackSuggestion = "Geen sterke, terugkerende pijnpunten gevonden in negatieve reviews. Blijf monitoren."

// RuleStrategy emits canned suggestions for the categories with the highest
// negative complaint counts. Deterministic and network-free.
type RuleStrategy struct{}

// NewRuleStrategy returns the deterministic fallback strategy.
func NewRuleStrategy() *RuleStrategy { return &RuleStrategy{} }

// Name implements Strategy.
func (*RuleStrategy) Name() string { return "rule" }

// Generate ranks categories by descending negative complaint count, category
// name breaking ties, and emits one template per top category.
func (*RuleStrategy) Generate(_ context.Context, in Input) ([]model.Suggestion, error) {
	type kv struct {
		cat   complaints.Category
		count int
	}
	ranked := make([]kv, 0, len(in.ComplaintCounts))
	for c, n := range in.ComplaintCounts {
		if n > 0 {
			ranked = append(ranked, kv{cat: complaints.Category(c), count: n})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].cat < ranked[j].cat
	})
	if len(ranked) > maxRuleSuggestions {
		ranked = ranked[:maxRuleSuggestions]
	}

	var out []model.Suggestion
	for _, e := range ranked {
		tmpl, ok := ruleTemplates[e.cat]
		if !ok {
			continue
		}
		out = append(out, model.NewSuggestion(tmpl, model.SourceRule, ""))
	}
	if len(out) == 0 {
		out = append(out, model.NewSuggestion(fallbackSuggestion, model.SourceRule, ""))
	}
	return out, nil
}
