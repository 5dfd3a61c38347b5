package services

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/economy/claim"
)

// MessageUpdater is the slice of the REST client the announcer needs.
type MessageUpdater interface {
	UpdateMessage(channelID snowflake.ID, messageID snowflake.ID, messageUpdate discord.MessageUpdate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// DropAnnouncer edits a drop message once its session closes and strips the
// grab buttons.
type DropAnnouncer struct {
	rest MessageUpdater
}

func NewDropAnnouncer(r MessageUpdater) *DropAnnouncer {
	return &DropAnnouncer{rest: r}
}

var _ claim.Announcer = (*DropAnnouncer)(nil)

func (a *DropAnnouncer) CloseDrop(ctx context.Context, channelID, messageID string, reason claim.CloseReason, card *models.Card) error {
	ch, err := snowflake.Parse(channelID)
	if err != nil {
		return fmt.Errorf("invalid channel id %q: %w", channelID, err)
	}
	msg, err := snowflake.Parse(messageID)
	if err != nil {
		return fmt.Errorf("invalid message id %q: %w", messageID, err)
	}

	content := CloseMessage(reason, card)
	_, err = a.rest.UpdateMessage(ch, msg, discord.MessageUpdate{
		Content:    &content,
		Components: &[]discord.ContainerComponent{},
	}, rest.WithCtx(ctx))
	return err
}

// CloseMessage is the text a closed drop is edited to.
func CloseMessage(reason claim.CloseReason, card *models.Card) string {
	switch reason {
	case claim.CloseClaimed:
		if card == nil || card.GrabbedBy == nil {
			return "This drop has been claimed."
		}
		msg := fmt.Sprintf("<@%s> grabbed **%s** from *%s* `%s` #%d ◈%d",
			*card.GrabbedBy, card.CharacterName, card.Series, card.UID, card.SerialNumber, card.Edition)
		if card.GrabDelay != nil {
			msg += fmt.Sprintf(" in %.2fs", *card.GrabDelay)
		}
		return msg
	case claim.CloseExpired:
		return "This drop has expired."
	default:
		return "This drop could not be claimed."
	}
}
