package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/KristianLengyel/menami-bot/menami"
	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
	"github.com/KristianLengyel/menami-bot/menami/economy"
	"github.com/KristianLengyel/menami-bot/menami/utils"
)

const lookupCandidates = 5

func LookupHandler(b *menami.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		query := strings.TrimSpace(data.String("query"))
		matches, err := b.CatalogRepository.Search(ctx, query, lookupCandidates)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		if len(matches) == 0 {
			return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("No character matches `%s`.", query))
		}

		var edition *int
		if ed, ok := data.OptInt("edition"); ok {
			edition = &ed
		}

		best := matches[0]
		stats, err := b.CardRepository.CharacterStats(ctx, best.Series, best.Name, edition)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}

		embed := discord.Embed{
			Title:       best.Name,
			Description: lookupDescription(stats),
			Color:       config.EmbedDefaultColor,
		}
		if others := otherMatches(matches[1:]); others != "" {
			embed.Fields = []discord.EmbedField{{Name: "Did you mean", Value: others}}
		}
		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed}})
	}
}

func lookupDescription(s *repositories.CharacterStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*\n", s.Series)
	if s.Edition != nil {
		fmt.Fprintf(&sb, "Edition `◈%d`\n", *s.Edition)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Total generated: **%d**\n", s.Generated)
	fmt.Fprintf(&sb, "Total claimed: **%d** (%.1f%%)\n", s.Claimed, s.ClaimRate)
	fmt.Fprintf(&sb, "Total burned: **%d**\n", s.Burned)
	fmt.Fprintf(&sb, "In circulation: **%d**\n", s.InCirculation)
	if s.AvgClaimTime != nil {
		fmt.Fprintf(&sb, "Average claim time: **%.2fs**\n", *s.AvgClaimTime)
	}

	if len(s.CirculationByRarity) > 0 {
		rarities := make([]int, 0, len(s.CirculationByRarity))
		for r := range s.CirculationByRarity {
			rarities = append(rarities, r)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(rarities)))
		sb.WriteString("\n")
		for _, r := range rarities {
			fmt.Fprintf(&sb, "`%s` %d\n", economy.Rarity(r).Stars(), s.CirculationByRarity[r])
		}
	}
	return sb.String()
}

func otherMatches(chars []*models.CatalogCharacter) string {
	lines := make([]string, 0, len(chars))
	for _, c := range chars {
		lines = append(lines, fmt.Sprintf("%s · *%s*", c.Name, c.Series))
	}
	return strings.Join(lines, "\n")
}
