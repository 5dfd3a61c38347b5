package commands

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/KristianLengyel/menami-bot/menami"
	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
	"github.com/KristianLengyel/menami-bot/menami/economy"
	"github.com/KristianLengyel/menami-bot/menami/economy/upgrade"
	"github.com/KristianLengyel/menami-bot/menami/economy/utils"
	"github.com/KristianLengyel/menami-bot/menami/services"
	ui "github.com/KristianLengyel/menami-bot/menami/utils"
)

// resolveCard finds the card named by arg. An empty arg or "latest" means the
// caller's most recently dropped owned card.
func resolveCard(ctx context.Context, cards repositories.CardRepository, userID, arg string) (*models.Card, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg == "" || arg == "latest" {
		card, err := cards.GetLatestOwned(ctx, userID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return nil, fmt.Errorf("%w: you have no cards", economy.ErrNotFound)
			}
			return nil, err
		}
		return card, nil
	}
	card, err := cards.GetByUID(ctx, arg)
	if err != nil {
		return nil, utils.CardError(arg, err)
	}
	return card, nil
}

// resolveOwnedCard is resolveCard that also requires the caller to own it.
func resolveOwnedCard(ctx context.Context, cards repositories.CardRepository, userID, arg string) (*models.Card, error) {
	card, err := resolveCard(ctx, cards, userID, arg)
	if err != nil {
		return nil, err
	}
	if !card.IsOwnedBy(userID) {
		return nil, fmt.Errorf("%w: %s", economy.ErrNotOwner, card.UID)
	}
	return card, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
}

func BurnHandler(b *menami.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		userID := e.User().ID.String()
		card, err := resolveOwnedCard(ctx, b.CardRepository, userID, e.SlashCommandInteractionData().String("card"))
		if err != nil {
			return ui.EH.HandleError(e, err)
		}

		result, err := b.BurnManager.Burn(ctx, userID, card.UID)
		if err != nil {
			return ui.EH.HandleError(e, err)
		}
		return ui.EH.CreateSuccessEmbed(e, fmt.Sprintf("🔥 Burned %s\nYou received **%d** coins and **1** %s dust.",
			ui.FormatCardLine(result.Card), result.Reward, result.Dust))
	}
}

func UpgradeHandler(b *menami.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		userID := e.User().ID.String()
		card, err := resolveOwnedCard(ctx, b.CardRepository, userID, e.SlashCommandInteractionData().String("card"))
		if err != nil {
			return ui.EH.HandleError(e, err)
		}

		result, err := b.UpgradeManager.Upgrade(ctx, userID, card.UID)
		if err != nil {
			return ui.EH.HandleError(e, err)
		}
		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{upgradeEmbed(result)}})
	}
}

func upgradeEmbed(r *upgrade.Result) discord.Embed {
	cost := fmt.Sprintf("Spent **%d** coins and **%d** %s dust.", r.Cost.Gold, r.Cost.Dust, r.Cost.DustCondition)
	switch r.Outcome {
	case upgrade.OutcomeSuccess:
		return discord.Embed{
			Title:       "Upgrade succeeded",
			Description: fmt.Sprintf("%s\n`%s` → `%s`\n%s", ui.FormatCardLine(r.Card), r.From.Stars(), r.To.Stars(), cost),
			Color:       config.SuccessColor,
		}
	case upgrade.OutcomeFailStay:
		return discord.Embed{
			Title:       "Upgrade failed",
			Description: fmt.Sprintf("%s\nThe card kept its quality.\n%s", ui.FormatCardLine(r.Card), cost),
			Color:       config.WarningColor,
		}
	case upgrade.OutcomeFailDamaged:
		return discord.Embed{
			Title:       "Upgrade failed",
			Description: fmt.Sprintf("%s\nThe card was damaged.\n%s", ui.FormatCardLine(r.Card), cost),
			Color:       config.ErrorColor,
		}
	default:
		return discord.Embed{
			Description: fmt.Sprintf("%s\nThis card is already at the highest quality.", ui.FormatCardLine(r.Card)),
			Color:       config.InfoColor,
		}
	}
}

func GiveHandler(b *menami.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		target := data.User("user")
		userID := e.User().ID.String()
		if target.Bot {
			return ui.EH.CreateUserError(e, "Bots cannot own cards.")
		}
		if target.ID == e.User().ID {
			return ui.EH.CreateUserError(e, "You cannot give a card to yourself.")
		}

		card, err := resolveOwnedCard(ctx, b.CardRepository, userID, data.String("card"))
		if err != nil {
			return ui.EH.HandleError(e, err)
		}
		if err := b.CardRepository.Transfer(ctx, card.UID, userID, target.ID.String()); err != nil {
			return ui.EH.HandleError(e, utils.CardError(card.UID, err))
		}
		return ui.EH.CreateSuccessEmbed(e, fmt.Sprintf("<@%s> gave %s to <@%s>.", userID, ui.FormatCardLine(card), target.ID))
	}
}

func ViewHandler(b *menami.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := e.DeferCreateMessage(false); err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		card, err := resolveCard(ctx, b.CardRepository, e.User().ID.String(), e.SlashCommandInteractionData().String("card"))
		if err != nil {
			return ui.EH.UpdateError(e, err)
		}

		embed := discord.Embed{
			Title:       "Card Details",
			Description: ui.FormatCardDetails(card),
			Color:       config.EmbedDefaultColor,
		}

		dye, err := b.CosmeticsRepository.GetDye(ctx, card.UID)
		if err != nil {
			return ui.EH.UpdateError(e, err)
		}
		if dye != nil {
			embed.Color = dyeColor(dye.Hex, embed.Color)
			embed.Fields = append(embed.Fields, discord.EmbedField{Name: "Dye", Value: dyeLabel(dye)})
		}
		if card.OwnedBy != nil {
			tags, err := b.CosmeticsRepository.TagsOf(ctx, *card.OwnedBy, card.UID)
			if err != nil {
				return ui.EH.UpdateError(e, err)
			}
			if len(tags) > 0 {
				embed.Fields = append(embed.Fields, discord.EmbedField{Name: "Tags", Value: strings.Join(tags, ", ")})
			}
		}

		update := discord.MessageUpdate{Embeds: &[]discord.Embed{embed}}
		if b.Renderer != nil {
			data, err := b.Renderer.Render(ctx, services.DescriptorFor(card), services.OverlayFor(dye))
			if err == nil {
				update.Files = []*discord.File{discord.NewFile(card.UID+".png", "", bytes.NewReader(data))}
				(*update.Embeds)[0].Image = &discord.EmbedResource{URL: "attachment://" + card.UID + ".png"}
			}
		}
		_, err = e.UpdateInteractionResponse(update)
		return err
	}
}

var hexPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)

// normalizeHex returns "#rrggbb" or false when s is not a six digit colour.
func normalizeHex(s string) (string, bool) {
	m := hexPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return "#" + strings.ToLower(m[1]), true
}

func dyeColor(hex string, fallback int) int {
	var c int
	if _, err := fmt.Sscanf(strings.TrimPrefix(hex, "#"), "%06x", &c); err != nil {
		return fallback
	}
	return c
}

func dyeLabel(dye *models.CardDye) string {
	label := "`" + dye.Hex + "`"
	if dye.Name != "" {
		label = fmt.Sprintf("%s (`%s`)", dye.Name, dye.Hex)
	}
	return fmt.Sprintf("%s, %dpx", label, dye.Thickness)
}

func dyeThickness(v int, ok bool) int {
	if !ok {
		return config.DefaultDyeThickness
	}
	return min(max(v, config.MinDyeThickness), config.MaxDyeThickness)
}

func TagHandler(b *menami.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		userID := e.User().ID.String()
		card, err := resolveOwnedCard(ctx, b.CardRepository, userID, data.String("card"))
		if err != nil {
			return ui.EH.HandleError(e, err)
		}
		name := strings.ToLower(strings.TrimSpace(data.String("name")))
		if name == "" {
			return ui.EH.CreateUserError(e, "Tag name must not be empty.")
		}
		if err := b.CosmeticsRepository.TagCard(ctx, userID, name, card.UID); err != nil {
			return ui.EH.HandleError(e, err)
		}
		return ui.EH.CreateSuccessEmbed(e, fmt.Sprintf("Tagged %s as **%s**.", ui.FormatCardLine(card), name))
	}
}

func DyeHandler(b *menami.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		hex, ok := normalizeHex(data.String("hex"))
		if !ok {
			return ui.EH.CreateUserError(e, "Colour must be six hex digits, like `#ff88aa`.")
		}
		userID := e.User().ID.String()
		card, err := resolveOwnedCard(ctx, b.CardRepository, userID, data.String("card"))
		if err != nil {
			return ui.EH.HandleError(e, err)
		}
		dye := &models.CardDye{
			CardUID:   card.UID,
			Hex:       hex,
			Name:      strings.TrimSpace(data.String("name")),
			Thickness: dyeThickness(data.OptInt("thickness")),
		}
		if err := b.CosmeticsRepository.SetDye(ctx, dye); err != nil {
			return ui.EH.HandleError(e, err)
		}
		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{{
			Description: fmt.Sprintf("Dyed %s with %s.", ui.FormatCardLine(card), dyeLabel(dye)),
			Color:       dyeColor(hex, config.SuccessColor),
		}}})
	}
}
