package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/economy"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{-time.Second, "0s"},
		{45 * time.Second, "45s"},
		{1500 * time.Millisecond, "2s"},
		{4*time.Minute + 12*time.Second, "4m 12s"},
		{10 * time.Minute, "10m"},
		{time.Hour + 5*time.Second, "1h 0m 5s"},
		{23*time.Hour + 59*time.Minute, "23h 59m"},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		contains string
	}{
		{"channel cooldown", &economy.CooldownError{Scope: "channel", Remaining: 12 * time.Second}, BusinessLogicError, "12s"},
		{"user cooldown", fmt.Errorf("drop: %w", &economy.CooldownError{Scope: "user", Remaining: 5 * time.Minute}), BusinessLogicError, "drop again in **5m**"},
		{"daily", &economy.CooldownError{Scope: "daily", Remaining: time.Hour}, BusinessLogicError, "daily reward"},
		{"wrong channel", &economy.WrongChannelError{Allowed: "99"}, UserError, "<#99>"},
		{"shortfall", &economy.InsufficientResourcesError{Shortfalls: []economy.Shortfall{{Resource: "coins", Need: 150, Have: 20}}}, BusinessLogicError, "**150** coins"},
		{"not owner", fmt.Errorf("%w: abc", economy.ErrNotOwner), PermissionError, "don't own"},
		{"conflict", economy.ErrConflict, BusinessLogicError, "changed hands"},
		{"not found", fmt.Errorf("%w: card x", economy.ErrNotFound), NotFoundError, "not found"},
		{"capacity", economy.ErrCapacity, BusinessLogicError, "print"},
		{"unknown", errors.New("db down"), SystemError, "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, msg := DescribeError(tt.err)
			assert.Equal(t, tt.wantType, gotType)
			assert.Contains(t, msg, tt.contains)
		})
	}
}

func TestFormatCardLine(t *testing.T) {
	card := &models.Card{UID: "abc1234", Rarity: 2, SerialNumber: 12, Edition: 1, Series: "Frieren", CharacterName: "Fern"}
	assert.Equal(t, "`abc1234` · `★★☆☆` · `#12` · `◈1` · Frieren · **Fern**", FormatCardLine(card))
}
