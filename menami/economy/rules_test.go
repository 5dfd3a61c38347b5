package economy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionByRarity(t *testing.T) {
	want := []string{"damaged", "poor", "good", "excellent", "mint"}
	for r := MinRarity; r <= MaxRarity; r++ {
		assert.Equal(t, want[r], r.Condition())
	}
	assert.Equal(t, "damaged", Rarity(9).Condition())
}

func TestUpgradeRulesCoverAllButMax(t *testing.T) {
	for r := MinRarity; r < MaxRarity; r++ {
		rule, ok := UpgradeRules[r]
		assert.True(t, ok, "rarity %d", r)
		assert.Equal(t, r+1, rule.To)
	}
	_, ok := UpgradeRules[MaxRarity]
	assert.False(t, ok)
	assert.Equal(t, "excellent", UpgradeRules[2].DustCondition())
}

func TestRarityWeights(t *testing.T) {
	tests := []struct {
		name     string
		in       []float64
		want     []float64
		degraded bool
	}{
		{"valid", []float64{40, 30, 18, 9, 3}, []float64{40, 30, 18, 9, 3}, false},
		{"short", []float64{1, 2}, []float64{1, 1, 1, 1, 1}, true},
		{"zero", []float64{1, 0, 1, 1, 1}, []float64{1, 1, 1, 1, 1}, true},
		{"negative", []float64{1, 1, 1, -2, 1}, []float64{1, 1, 1, 1, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RarityWeights(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.degraded, errors.Is(err, ErrConfigDegraded))
		})
	}
}

func TestErrorTaxonomy(t *testing.T) {
	assert.True(t, errors.Is(ErrNotOwner, ErrConflict))

	var err error = &InsufficientResourcesError{Shortfalls: []Shortfall{{Resource: "coins", Need: 50, Have: 10}}}
	assert.True(t, errors.Is(err, ErrInsufficientResources))
	assert.Contains(t, err.Error(), "coins: need 50, have 10")
}
