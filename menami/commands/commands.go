package commands

import (
	"github.com/disgoorg/disgo/discord"

	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/utils"
)

func cardOption(required bool) discord.ApplicationCommandOptionString {
	return discord.ApplicationCommandOptionString{
		Name:        "card",
		Description: "Card code, or \"latest\" for your most recent card",
		Required:    required,
		MinLength:   utils.Ptr(1),
		MaxLength:   utils.Ptr(16),
	}
}

var Drop = discord.SlashCommandCreate{
	Name:        "drop",
	Description: "Drop cards in this channel for anyone to grab",
}

var Burn = discord.SlashCommandCreate{
	Name:        "burn",
	Description: "Destroy one of your cards for coins and dust",
	Options:     []discord.ApplicationCommandOption{cardOption(false)},
}

var Upgrade = discord.SlashCommandCreate{
	Name:        "upgrade",
	Description: "Spend coins and dust to try to raise a card's quality",
	Options:     []discord.ApplicationCommandOption{cardOption(false)},
}

var Give = discord.SlashCommandCreate{
	Name:        "give",
	Description: "Give one of your cards to another player",
	Options: []discord.ApplicationCommandOption{
		cardOption(true),
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Who receives the card",
			Required:    true,
		},
	},
}

var View = discord.SlashCommandCreate{
	Name:        "view",
	Description: "Show a card",
	Options:     []discord.ApplicationCommandOption{cardOption(false)},
}

var Collection = discord.SlashCommandCreate{
	Name:        "collection",
	Description: "List the cards a player owns, newest first",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Whose collection to show",
		},
	},
}

var Cooldowns = discord.SlashCommandCreate{
	Name:        "cooldowns",
	Description: "Show your remaining cooldowns",
}

var Daily = discord.SlashCommandCreate{
	Name:        "daily",
	Description: "Claim your daily coins and gems",
}

var Settings = discord.SlashCommandCreate{
	Name:        "settings",
	Description: "Server drop settings",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "dropchannel",
			Description: "Restrict drops to one channel, or clear the restriction",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionChannel{
					Name:         "channel",
					Description:  "Leave empty to allow drops everywhere",
					ChannelTypes: []discord.ChannelType{discord.ChannelTypeGuildText},
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "dropcooldown",
			Description: "Override the per-channel drop cooldown, or reset it",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "seconds",
					Description: "Leave empty to use the default",
					MinValue:    utils.Ptr(0),
					MaxValue:    utils.Ptr(86400),
				},
			},
		},
	},
}

var Lookup = discord.SlashCommandCreate{
	Name:        "lookup",
	Description: "Look up a character and its print statistics",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "query",
			Description: "Character or series name",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "edition",
			Description: "Limit statistics to one edition",
			MinValue:    utils.Ptr(1),
		},
	},
}

var Tag = discord.SlashCommandCreate{
	Name:        "tag",
	Description: "Tag one of your cards",
	Options: []discord.ApplicationCommandOption{
		cardOption(true),
		discord.ApplicationCommandOptionString{
			Name:        "name",
			Description: "Tag name",
			Required:    true,
			MinLength:   utils.Ptr(1),
			MaxLength:   utils.Ptr(32),
		},
	},
}

var Dye = discord.SlashCommandCreate{
	Name:        "dye",
	Description: "Set the dye colour of one of your cards",
	Options: []discord.ApplicationCommandOption{
		cardOption(true),
		discord.ApplicationCommandOptionString{
			Name:        "hex",
			Description: "Colour such as #ff88aa",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "name",
			Description: "Optional dye name",
			MaxLength:   utils.Ptr(32),
		},
		discord.ApplicationCommandOptionInt{
			Name:        "thickness",
			Description: "Border width in pixels (default 8)",
			MinValue:    utils.Ptr(config.MinDyeThickness),
			MaxValue:    utils.Ptr(config.MaxDyeThickness),
		},
	},
}

var Commands = []discord.ApplicationCommandCreate{
	Drop,
	Burn,
	Upgrade,
	Give,
	View,
	Collection,
	Cooldowns,
	Daily,
	Settings,
	Lookup,
	Tag,
	Dye,
}
