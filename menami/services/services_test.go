package services

import (
	"context"
	"errors"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/economy/claim"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Frieren", "frieren"},
		{"Sousou no Frieren", "sousou-no-frieren"},
		{"  Re:Zero -- Starting Life  ", "re-zero-starting-life"},
		{"K-On!", "k-on"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}
}

func TestArtworkKey(t *testing.T) {
	assert.Equal(t, "cards/characters/sousou-no-frieren/fern/2.png",
		ArtworkKey("cards", "Sousou no Frieren", "Fern", 2))
	assert.Equal(t, "characters/k-on/mio-akiyama/1.png",
		ArtworkKey("", "K-On!", "Mio Akiyama", 1))
}

type fakeArtwork struct {
	keys []string
	err  error
}

func (f *fakeArtwork) GetArtwork(_ context.Context, key string) ([]byte, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png"), nil
}

func TestArtworkRenderer(t *testing.T) {
	src := &fakeArtwork{}
	r := NewArtworkRenderer(src, "cards")

	data, err := r.Render(context.Background(), CardDescriptor{UID: "abc1234", Series: "Bocchi the Rock", Character: "Hitori Gotoh", Edition: 3}, &Overlay{DyeHex: "#ff00ff"})
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
	assert.Equal(t, []string{"cards/characters/bocchi-the-rock/hitori-gotoh/3.png"}, src.keys)

	src.err = ErrArtworkNotFound
	_, err = r.Render(context.Background(), CardDescriptor{UID: "abc1234"}, nil)
	assert.True(t, errors.Is(err, ErrArtworkNotFound))
}

func TestOverlayFor(t *testing.T) {
	assert.Nil(t, OverlayFor(nil))
	assert.Equal(t,
		&Overlay{DyeHex: "#ff00ff", DyeName: "Neon", DyeThickness: 12},
		OverlayFor(&models.CardDye{CardUID: "abc1234", Hex: "#ff00ff", Name: "Neon", Thickness: 12}))
}

type recordingUpdater struct {
	channel, message snowflake.ID
	update           discord.MessageUpdate
}

func (r *recordingUpdater) UpdateMessage(channelID snowflake.ID, messageID snowflake.ID, update discord.MessageUpdate, _ ...rest.RequestOpt) (*discord.Message, error) {
	r.channel, r.message, r.update = channelID, messageID, update
	return &discord.Message{}, nil
}

func TestDropAnnouncerClosesMessage(t *testing.T) {
	up := &recordingUpdater{}
	a := NewDropAnnouncer(up)

	grabber := "42"
	delay := 1.25
	card := &models.Card{UID: "abc1234", CharacterName: "Fern", Series: "Frieren", SerialNumber: 7, Edition: 1, GrabbedBy: &grabber, GrabDelay: &delay}

	require.NoError(t, a.CloseDrop(context.Background(), "100", "200", claim.CloseClaimed, card))
	assert.Equal(t, snowflake.ID(100), up.channel)
	assert.Equal(t, snowflake.ID(200), up.message)
	require.NotNil(t, up.update.Components)
	assert.Empty(t, *up.update.Components)
	assert.Contains(t, *up.update.Content, "<@42> grabbed **Fern**")
	assert.Contains(t, *up.update.Content, "1.25s")

	assert.Error(t, a.CloseDrop(context.Background(), "nope", "200", claim.CloseExpired, nil))
}

func TestCloseMessage(t *testing.T) {
	assert.Equal(t, "This drop has expired.", CloseMessage(claim.CloseExpired, nil))
	assert.Equal(t, "This drop could not be claimed.", CloseMessage(claim.CloseFailed, nil))
	assert.Equal(t, "This drop has been claimed.", CloseMessage(claim.CloseClaimed, nil))
}
