package models

import "github.com/uptrace/bun"

type GuildSettings struct {
	bun.BaseModel `bun:"table:guild_settings,alias:gs"`

	GuildID       string  `bun:"guild_id,pk"`
	DropChannelID *string `bun:"drop_channel_id"`
	DropCooldownS *int    `bun:"drop_cooldown_s"`
}

type Meta struct {
	bun.BaseModel `bun:"table:meta,alias:m"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}
