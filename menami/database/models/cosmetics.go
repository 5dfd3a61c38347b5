package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Tag is a user-defined label. Cards reference tags through CardTag.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    string    `bun:"user_id,notnull,unique:tags_user_name"`
	Name      string    `bun:"name,notnull,unique:tags_user_name"`
	Emoji     string    `bun:"emoji"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type CardTag struct {
	bun.BaseModel `bun:"table:card_tags,alias:ct"`

	UserID  string `bun:"user_id,pk"`
	CardUID string `bun:"card_uid,pk"`
	TagID   int64  `bun:"tag_id,notnull"`
}

// CardDye is the colour overlay applied to a card when it is rendered.
type CardDye struct {
	bun.BaseModel `bun:"table:card_dyes,alias:cd"`

	CardUID string `bun:"card_uid,pk"`
	Hex     string `bun:"hex,notnull"`
	Name    string `bun:"name"`

	// Thickness is the border width in pixels.
	Thickness int `bun:"thickness,notnull,default:8"`
}
