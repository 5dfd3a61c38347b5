package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Burn archives a destroyed card. Rows are never updated or removed.
type Burn struct {
	bun.BaseModel `bun:"table:burns,alias:b"`

	UID           string    `bun:"uid,pk"`
	SerialNumber  int       `bun:"serial_number,notnull"`
	Rarity        int       `bun:"rarity,notnull"`
	Edition       int       `bun:"edition,notnull"`
	Series        string    `bun:"series,notnull"`
	CharacterName string    `bun:"character_name,notnull"`
	Condition     string    `bun:"card_condition,notnull"`
	DroppedAt     time.Time `bun:"dropped_at,notnull"`
	GrabbedBy     *string   `bun:"grabbed_by"`
	GrabDelay     *float64  `bun:"grab_delay"`
	BurnedBy      string    `bun:"burned_by,notnull"`
	BurnedAt      time.Time `bun:"burned_at,notnull"`
	Reward        int64     `bun:"reward,notnull"`
}

func NewBurn(card *Card, burnedBy string, reward int64, at time.Time) *Burn {
	return &Burn{
		UID:           card.UID,
		SerialNumber:  card.SerialNumber,
		Rarity:        card.Rarity,
		Edition:       card.Edition,
		Series:        card.Series,
		CharacterName: card.CharacterName,
		Condition:     card.Condition,
		DroppedAt:     card.DroppedAt,
		GrabbedBy:     card.GrabbedBy,
		GrabDelay:     card.GrabDelay,
		BurnedBy:      burnedBy,
		BurnedAt:      at,
		Reward:        reward,
	}
}
