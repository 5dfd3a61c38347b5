package claim

import (
	"context"

	"github.com/KristianLengyel/menami-bot/menami/database/models"
)

type CloseReason int

const (
	CloseClaimed CloseReason = iota
	CloseExpired
	// CloseFailed means the claim could not be recorded.
	CloseFailed
)

func (r CloseReason) String() string {
	switch r {
	case CloseClaimed:
		return "claimed"
	case CloseExpired:
		return "expired"
	default:
		return "failed"
	}
}

//go:generate mockgen -source=announcer.go -destination=mock/announcer.go -package=mock

// Announcer visually closes a drop message. Card is set only for CloseClaimed.
type Announcer interface {
	CloseDrop(ctx context.Context, channelID, messageID string, reason CloseReason, card *models.Card) error
}
