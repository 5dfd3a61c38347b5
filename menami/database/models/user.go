package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	UserID    string    `bun:"user_id,pk"`
	Coins     int64     `bun:"coins,notnull,default:0"`
	Gems      int64     `bun:"gems,notnull,default:0"`
	Tickets   int64     `bun:"tickets,notnull,default:0"`
	CreatedAt time.Time `bun:"created_at,notnull"`

	// Dust balances, one per card condition.
	DustDamaged   int64 `bun:"dust_damaged,notnull,default:0"`
	DustPoor      int64 `bun:"dust_poor,notnull,default:0"`
	DustGood      int64 `bun:"dust_good,notnull,default:0"`
	DustExcellent int64 `bun:"dust_excellent,notnull,default:0"`
	DustMint      int64 `bun:"dust_mint,notnull,default:0"`
}

// Dust returns the balance for a condition name such as "good".
func (u *User) Dust(condition string) int64 {
	switch condition {
	case "damaged":
		return u.DustDamaged
	case "poor":
		return u.DustPoor
	case "good":
		return u.DustGood
	case "excellent":
		return u.DustExcellent
	case "mint":
		return u.DustMint
	}
	return 0
}

// UserTimer records the last time a user performed a gated action.
type UserTimer struct {
	bun.BaseModel `bun:"table:user_timers,alias:ut"`

	UserID string    `bun:"user_id,pk"`
	Key    string    `bun:"key,pk"`
	TS     time.Time `bun:"ts,notnull"`
}
