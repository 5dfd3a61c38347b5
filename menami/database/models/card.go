package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Card is one minted card instance. GrabbedBy is written exactly once, by the
// claim that wins the drop. OwnedBy follows transfers.
type Card struct {
	bun.BaseModel `bun:"table:cards,alias:c"`

	UID           string    `bun:"uid,pk"`
	SerialNumber  int       `bun:"serial_number,notnull"`
	Rarity        int       `bun:"rarity,notnull"`
	Edition       int       `bun:"edition,notnull"`
	Series        string    `bun:"series,notnull"`
	CharacterName string    `bun:"character_name,notnull"`
	Condition     string    `bun:"card_condition,notnull"`
	DroppedAt     time.Time `bun:"dropped_at,notnull"`
	DroppedIn     string    `bun:"dropped_in,notnull"`
	DroppedBy     string    `bun:"dropped_by,notnull"`
	GrabbedBy     *string   `bun:"grabbed_by"`
	OwnedBy       *string   `bun:"owned_by"`
	GrabDelay     *float64  `bun:"grab_delay"`
}

func (c *Card) Claimed() bool {
	return c.GrabbedBy != nil
}

func (c *Card) IsOwnedBy(userID string) bool {
	return c.OwnedBy != nil && *c.OwnedBy == userID
}
