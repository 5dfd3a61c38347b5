package drops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
	"github.com/KristianLengyel/menami-bot/menami/economy"
)

const (
	UnknownSeries    = "Unknown Series"
	UnknownCharacter = "Unknown Character"
)

type CatalogSource interface {
	Random(ctx context.Context) (*models.CatalogCharacter, error)
}

// Descriptor is the random part of a card, before it gets a uid and serial.
type Descriptor struct {
	Series    string
	Character string
	Edition   int
	Rarity    economy.Rarity
	Condition string
}

type Generator struct {
	catalog CatalogSource
	meta    MetaStore
	weights []float64
	// float64 returns a value in [0, 1).
	float64 func() float64
}

// NewGenerator validates the rarity weights once. Invalid weights are
// replaced by the uniform distribution and logged.
func NewGenerator(catalog CatalogSource, meta MetaStore, rarityWeights []float64) *Generator {
	return NewGeneratorWithRand(catalog, meta, rarityWeights, rand.Float64)
}

func NewGeneratorWithRand(catalog CatalogSource, meta MetaStore, rarityWeights []float64, f func() float64) *Generator {
	weights, err := economy.RarityWeights(rarityWeights)
	if err != nil {
		slog.Warn("Using uniform rarity weights",
			slog.String("type", "economy"),
			slog.Any("error", err))
	}
	return &Generator{catalog: catalog, meta: meta, weights: weights, float64: f}
}

func (g *Generator) Generate(ctx context.Context) (Descriptor, error) {
	editions, err := LoadEditions(ctx, g.meta)
	if err != nil {
		return Descriptor{}, err
	}

	series, character := UnknownSeries, UnknownCharacter
	picked, err := g.catalog.Random(ctx)
	switch {
	case err == nil:
		series, character = picked.Series, picked.Name
	case repositories.IsNotFound(err):
		slog.Warn("Catalog is empty, dropping placeholder character", slog.String("type", "economy"))
	default:
		return Descriptor{}, fmt.Errorf("pick character: %w", err)
	}

	edition := 1 + g.pick(intWeights(editions.Weights))
	rarity := g.Rarity()
	return Descriptor{
		Series:    series,
		Character: character,
		Edition:   edition,
		Rarity:    rarity,
		Condition: rarity.Condition(),
	}, nil
}

// Rarity draws one rarity from the configured weights.
func (g *Generator) Rarity() economy.Rarity {
	return economy.Rarity(g.pick(g.weights))
}

func (g *Generator) pick(weights []float64) int {
	idx, err := pickWeighted(weights, g.float64())
	if err != nil {
		return 0
	}
	return idx
}

var errNoWeights = errors.New("no weights")

// pickWeighted maps r in [0, 1) onto an index with probability proportional
// to its weight.
func pickWeighted(weights []float64, r float64) (int, error) {
	var total float64
	for _, w := range weights {
		total += w
	}
	if len(weights) == 0 || total <= 0 {
		return 0, errNoWeights
	}
	target := r * total
	var acc float64
	for i, w := range weights {
		acc += w
		if target < acc {
			return i, nil
		}
	}
	return len(weights) - 1, nil
}

func intWeights(in []int) []float64 {
	out := make([]float64, len(in))
	for i, w := range in {
		out[i] = float64(w)
	}
	return out
}
