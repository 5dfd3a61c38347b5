package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/KristianLengyel/menami-bot/menami"
	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/utils"
)

func CooldownsHandler(b *menami.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		eco := b.Cfg.Economy
		snapshot, err := b.Gate.Snapshot(ctx, e.User().ID.String(), map[string]time.Duration{
			config.TimerDrop:  eco.UserDropCooldown(),
			config.TimerGrab:  eco.GrabCooldown(),
			config.TimerDaily: eco.DailyCooldown(),
		})
		if err != nil {
			return utils.EH.HandleError(e, err)
		}

		guildID := ""
		if g := e.GuildID(); g != nil {
			guildID = g.String()
		}
		channel := b.ChannelCooldowns.Remaining(e.ChannelID().String(), b.DropService.ChannelCooldown(ctx, guildID))

		var sb strings.Builder
		sb.WriteString(cooldownLine("Drop", snapshot[config.TimerDrop]))
		sb.WriteString(cooldownLine("Grab", snapshot[config.TimerGrab]))
		sb.WriteString(cooldownLine("Daily", snapshot[config.TimerDaily]))
		sb.WriteString(cooldownLine("This channel", channel))

		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{{
			Title:       "Cooldowns",
			Description: sb.String(),
			Color:       config.EmbedDefaultColor,
		}}})
	}
}

func cooldownLine(name string, remaining time.Duration) string {
	if remaining <= 0 {
		return fmt.Sprintf("**%s**: ready\n", name)
	}
	return fmt.Sprintf("**%s**: %s\n", name, utils.FormatDuration(remaining))
}

func DailyHandler(b *menami.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		reward, err := b.DailyService.Claim(ctx, e.User().ID.String())
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("You received **%d** coins and **%d** gems. Come back tomorrow!", reward.Coins, reward.Gems))
	}
}
