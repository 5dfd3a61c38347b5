package services

import (
	"context"
	"fmt"

	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/database/models"
)

// CardDescriptor is everything a renderer needs to draw a card.
type CardDescriptor struct {
	UID       string
	Series    string
	Character string
	Edition   int
	Serial    int
	Rarity    int
	Condition string
}

func DescriptorFor(card *models.Card) CardDescriptor {
	return CardDescriptor{
		UID:       card.UID,
		Series:    card.Series,
		Character: card.CharacterName,
		Edition:   card.Edition,
		Serial:    card.SerialNumber,
		Rarity:    card.Rarity,
		Condition: card.Condition,
	}
}

// Overlay carries per-card cosmetics.
type Overlay struct {
	DyeHex       string
	DyeName      string
	DyeThickness int
}

func OverlayFor(dye *models.CardDye) *Overlay {
	if dye == nil {
		return nil
	}
	return &Overlay{DyeHex: dye.Hex, DyeName: dye.Name, DyeThickness: dye.Thickness}
}

type Renderer interface {
	Render(ctx context.Context, card CardDescriptor, overlay *Overlay) ([]byte, error)
}

type ArtworkSource interface {
	GetArtwork(ctx context.Context, key string) ([]byte, error)
}

// ArtworkRenderer serves the stored edition artwork as is. Frames, dyes and
// text are composited elsewhere.
type ArtworkRenderer struct {
	source ArtworkSource
	root   string
}

func NewArtworkRenderer(source ArtworkSource, root string) *ArtworkRenderer {
	return &ArtworkRenderer{source: source, root: root}
}

func (r *ArtworkRenderer) Render(ctx context.Context, card CardDescriptor, _ *Overlay) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, config.ArtworkFetchTimeout)
	defer cancel()

	data, err := r.source.GetArtwork(ctx, ArtworkKey(r.root, card.Series, card.Character, card.Edition))
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", card.UID, err)
	}
	return data, nil
}
