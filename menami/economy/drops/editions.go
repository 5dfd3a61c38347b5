package drops

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MetaEditionsMax    = "editions_max"
	MetaEditionWeights = "edition_weights"

	defaultEditions = 5
	editionRatio    = 1.6
)

type MetaStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// EditionsConfig lists the weight of each edition; edition i+1 has Weights[i].
type EditionsConfig struct {
	Count   int
	Weights []int
}

// AutogenWeights grows geometrically: round(1.6^i), at least 1.
func AutogenWeights(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = max(1, int(math.Round(math.Pow(editionRatio, float64(i)))))
	}
	return out
}

// NormalizeEditions turns the raw meta values into a usable config. Missing or
// malformed values fall back to defaults. A short weight list is extended
// geometrically from its last entry and a long one is truncated.
func NormalizeEditions(rawCount string, hasCount bool, rawWeights string, hasWeights bool) EditionsConfig {
	n := defaultEditions
	if hasCount {
		if v, err := strconv.Atoi(strings.TrimSpace(rawCount)); err == nil && v > 0 {
			n = v
		}
	}

	weights := AutogenWeights(defaultEditions)
	if hasWeights && rawWeights != "" {
		var parsed []float64
		if err := json.Unmarshal([]byte(rawWeights), &parsed); err == nil {
			weights = make([]int, len(parsed))
			for i, w := range parsed {
				weights[i] = max(1, int(math.Round(w)))
			}
		}
	}

	switch {
	case len(weights) == 0:
		weights = AutogenWeights(n)
	case len(weights) < n:
		base := float64(max(1, weights[len(weights)-1]))
		for i := 0; len(weights) < n; i++ {
			weights = append(weights, max(1, int(math.Round(base*math.Pow(editionRatio, float64(i+1))))))
		}
	case len(weights) > n:
		weights = weights[:n]
	}
	return EditionsConfig{Count: n, Weights: weights}
}

func LoadEditions(ctx context.Context, meta MetaStore) (EditionsConfig, error) {
	rawN, hasN, err := meta.Get(ctx, MetaEditionsMax)
	if err != nil {
		return EditionsConfig{}, fmt.Errorf("read %s: %w", MetaEditionsMax, err)
	}
	rawW, hasW, err := meta.Get(ctx, MetaEditionWeights)
	if err != nil {
		return EditionsConfig{}, fmt.Errorf("read %s: %w", MetaEditionWeights, err)
	}
	return NormalizeEditions(rawN, hasN, rawW, hasW), nil
}

// SaveEditions stores n editions. Nil weights are autogenerated.
func SaveEditions(ctx context.Context, meta MetaStore, n int, weights []int) error {
	if n < 1 {
		return fmt.Errorf("editions count must be positive, got %d", n)
	}
	if weights == nil {
		weights = AutogenWeights(n)
	}
	clamped := make([]int, len(weights))
	for i, w := range weights {
		clamped[i] = max(1, w)
	}
	raw, err := json.Marshal(clamped)
	if err != nil {
		return err
	}
	if err := meta.Set(ctx, MetaEditionsMax, strconv.Itoa(n)); err != nil {
		return err
	}
	return meta.Set(ctx, MetaEditionWeights, string(raw))
}
