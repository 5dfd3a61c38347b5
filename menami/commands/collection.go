package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/KristianLengyel/menami-bot/menami"
	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/utils"
)

func CollectionHandler(b *menami.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		owner := e.User()
		if u, ok := e.SlashCommandInteractionData().OptUser("user"); ok {
			owner = u
		}
		ownerID := owner.ID.String()

		first, total, err := b.CardRepository.ListOwned(ctx, ownerID, 0, config.CardsPerPage)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		if total == 0 {
			return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("<@%s> has no cards yet.", ownerID))
		}

		totalPages := (total + config.CardsPerPage - 1) / config.CardsPerPage

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				cards := first
				if page > 0 {
					cards = loadPage(b, ownerID, page)
				}

				var description strings.Builder
				for _, card := range cards {
					description.WriteString(utils.FormatCardLine(card))
					description.WriteString("\n")
				}
				if len(cards) == 0 {
					description.WriteString("Could not load this page.")
				}

				embed.
					SetTitle(owner.Username+"'s Collection").
					SetDescription(description.String()).
					SetColor(config.EmbedDefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d • %d cards", page+1, totalPages, total), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

func loadPage(b *menami.Bot, ownerID string, page int) []*models.Card {
	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
	defer cancel()

	cards, _, err := b.CardRepository.ListOwned(ctx, ownerID, page*config.CardsPerPage, config.CardsPerPage)
	if err != nil {
		slog.Error("Failed to load collection page",
			slog.String("type", "db"),
			slog.String("user_id", ownerID),
			slog.Int("page", page),
			slog.Any("error", err))
		return nil
	}
	return cards
}
