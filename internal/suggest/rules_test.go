package suggest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewlens/internal/model"
)

func TestRuleStrategy_RanksByCount(t *testing.T) {
	strategy := NewRuleStrategy()

	got, err := strategy.Generate(context.Background(), Input{
		ComplaintCounts: map[string]int{
			"wait_time":    5,
			"service":      2,
			"food_quality": 9,
		},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, ruleTemplates["food_quality"], got[0].Text)
	assert.Equal(t, ruleTemplates["wait_time"], got[1].Text)
	assert.Equal(t, ruleTemplates["service"], got[2].Text)
	for _, s := range got {
		assert.Equal(t, model.SourceRule, s.Source)
		assert.Empty(t, s.Model)
	}
}

func TestRuleStrategy_TiesBreakAlphabetically(t *testing.T) {
	strategy := NewRuleStrategy()

	got, err := strategy.Generate(context.Background(), Input{
		ComplaintCounts: map[string]int{"wait_time": 3, "ambience": 3},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, ruleTemplates["ambience"], got[0].Text)
	assert.Equal(t, ruleTemplates["wait_time"], got[1].Text)
}

func TestRuleStrategy_CapsSuggestionCount(t *testing.T) {
	strategy := NewRuleStrategy()

	counts := make(map[string]int)
	for i, cat := range []string{"service", "wait_time", "food_quality", "portion_temp", "pricing_value", "ambience", "order_accuracy"} {
		counts[cat] = i + 1
	}
	got, err := strategy.Generate(context.Background(), Input{ComplaintCounts: counts})
	require.NoError(t, err)

	assert.Len(t, got, maxRuleSuggestions)
}

func TestRuleStrategy_EmptySignalYieldsFallback(t *testing.T) {
	strategy := NewRuleStrategy()

	got, err := strategy.Generate(context.Background(), Input{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, fallbackSuggestion, got[0].Text)
	assert.Equal(t, model.SourceRule, got[0].Source)
}

func TestRuleStrategy_IgnoresZeroCountsAndUnknownCategories(t *testing.T) {
	strategy := NewRuleStrategy()

	got, err := strategy.Generate(context.Background(), Input{
		ComplaintCounts: map[string]int{"service": 0, "onbekend": 4},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, fallbackSuggestion, got[0].Text)
}
