package commands

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/KristianLengyel/menami-bot/menami"
	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/economy/claim"
	"github.com/KristianLengyel/menami-bot/menami/economy/drops"
	"github.com/KristianLengyel/menami-bot/menami/services"
	"github.com/KristianLengyel/menami-bot/menami/utils"
)

const grabPrefix = "/grab/"

func DropHandler(b *menami.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := e.DeferCreateMessage(false); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()

		req := drops.Request{
			ChannelID: e.ChannelID().String(),
			UserID:    e.User().ID.String(),
		}
		if g := e.GuildID(); g != nil {
			req.GuildID = g.String()
		}

		cards, err := b.DropService.Drop(ctx, req)
		if err != nil {
			return utils.EH.UpdateError(e, err)
		}

		content := dropContent(req.UserID, cards)
		components := grabButtons(len(cards))
		msg, err := e.UpdateInteractionResponse(discord.MessageUpdate{
			Content:    &content,
			Components: &components,
			Files:      renderDrop(ctx, b, cards),
		})
		if err != nil {
			return fmt.Errorf("failed to announce drop: %w", err)
		}

		uids := make([]string, len(cards))
		for i, c := range cards {
			uids[i] = c.UID
		}
		if _, err := b.Sessions.Open(msg.ID.String(), req.ChannelID, uids); err != nil {
			slog.Error("Failed to open drop session",
				slog.String("type", "economy"),
				slog.String("message_id", msg.ID.String()),
				slog.Any("error", err))
			closed := services.CloseMessage(claim.CloseFailed, nil)
			_, _ = e.UpdateInteractionResponse(discord.MessageUpdate{
				Content:    &closed,
				Components: &[]discord.ContainerComponent{},
			})
		}
		return nil
	}
}

func dropContent(userID string, cards []*models.Card) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<@%s> is dropping %d cards!\n", userID, len(cards))
	for i, c := range cards {
		fmt.Fprintf(&sb, "`%d.` %s\n", i+1, utils.FormatCardLine(c))
	}
	return sb.String()
}

func grabButtons(n int) []discord.ContainerComponent {
	buttons := make([]discord.InteractiveComponent, n)
	for i := range buttons {
		buttons[i] = discord.NewSecondaryButton(strconv.Itoa(i+1), grabPrefix+strconv.Itoa(i))
	}
	return []discord.ContainerComponent{discord.NewActionRow(buttons...)}
}

// renderDrop attaches each card's artwork. Cards without artwork are skipped.
func renderDrop(ctx context.Context, b *menami.Bot, cards []*models.Card) []*discord.File {
	if b.Renderer == nil {
		return nil
	}
	var files []*discord.File
	for i, c := range cards {
		data, err := b.Renderer.Render(ctx, services.DescriptorFor(c), nil)
		if err != nil {
			slog.Warn("Card artwork unavailable",
				slog.String("type", "sys"),
				slog.String("uid", c.UID),
				slog.Any("error", err))
			continue
		}
		files = append(files, discord.NewFile(fmt.Sprintf("card_%d.png", i+1), "", bytes.NewReader(data)))
	}
	return files
}

// GrabHandler turns a button press on a drop into a claim signal.
func GrabHandler(b *menami.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		ordinal, err := strconv.Atoi(strings.TrimPrefix(e.Data.CustomID(), grabPrefix))
		if err != nil {
			return utils.EH.CreateUserError(e, "That button is not a card.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()

		userID := e.User().ID.String()
		outcome, err := b.Sessions.HandleClaim(ctx, claim.Signal{
			MessageID:  e.Message.ID.String(),
			Ordinal:    ordinal,
			ClaimantID: userID,
			Latency:    gatewayLatency(b),
		})
		if err != nil {
			return utils.EH.HandleError(e, err)
		}

		switch outcome.Status {
		case claim.StatusClaimed:
			text := fmt.Sprintf("<@%s> grabbed the card in **%.2fs**!", userID, outcome.Delay)
			if outcome.Card != nil {
				text = fmt.Sprintf("<@%s> grabbed %s in **%.2fs**!", userID, utils.FormatCardLine(outcome.Card), outcome.Delay)
			}
			return e.CreateMessage(discord.MessageCreate{Content: text})
		case claim.StatusOnCooldown:
			return utils.EH.CreateEphemeralInfo(e, fmt.Sprintf("You can grab again in **%s**.", utils.FormatDuration(outcome.Remaining)))
		case claim.StatusExpired, claim.StatusUnknown:
			return utils.EH.CreateEphemeralInfo(e, "This drop has expired.")
		case claim.StatusAlreadyClaimed, claim.StatusLost:
			return utils.EH.CreateEphemeralInfo(e, "Someone else grabbed this drop first.")
		default:
			return utils.EH.CreateEphemeralInfo(e, "That card is not part of this drop.")
		}
	}
}

func gatewayLatency(b *menami.Bot) time.Duration {
	if b.Client == nil || b.Client.Gateway() == nil {
		return 0
	}
	return b.Client.Gateway().Latency()
}
