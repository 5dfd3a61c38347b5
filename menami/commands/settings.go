package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/KristianLengyel/menami-bot/menami"
	"github.com/KristianLengyel/menami-bot/menami/utils"
)

func SettingsHandler(b *menami.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateUserError(e, "Settings can only be changed in a server.")
		}
		if member := e.Member(); member == nil || !member.Permissions.Has(discord.PermissionManageGuild) {
			return utils.EH.CreateUserError(e, "You need the Manage Server permission.")
		}

		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		sub := ""
		if data.SubCommandName != nil {
			sub = *data.SubCommandName
		}

		switch sub {
		case "dropchannel":
			if ch, ok := data.OptChannel("channel"); ok {
				id := ch.ID.String()
				if err := b.GuildSettingsRepository.SetDropChannel(ctx, guildID.String(), &id); err != nil {
					return utils.EH.HandleError(e, err)
				}
				return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Drops are now restricted to <#%s>.", id))
			}
			if err := b.GuildSettingsRepository.SetDropChannel(ctx, guildID.String(), nil); err != nil {
				return utils.EH.HandleError(e, err)
			}
			return utils.EH.CreateSuccessEmbed(e, "Drops are allowed in every channel.")

		case "dropcooldown":
			if seconds, ok := data.OptInt("seconds"); ok {
				if err := b.GuildSettingsRepository.SetDropCooldown(ctx, guildID.String(), &seconds); err != nil {
					return utils.EH.HandleError(e, err)
				}
				return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Channel drop cooldown set to **%ds**.", seconds))
			}
			if err := b.GuildSettingsRepository.SetDropCooldown(ctx, guildID.String(), nil); err != nil {
				return utils.EH.HandleError(e, err)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Channel drop cooldown reset to **%ds**.", b.Cfg.Economy.DropCooldownS))
		}
		return utils.EH.CreateUserError(e, "Unknown setting.")
	}
}
