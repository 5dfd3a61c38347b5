package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/economy"
)

func Ptr[T any](v T) *T {
	return &v
}

// FormatCardLine renders a card on one line: uid, stars, serial, edition, series, character.
func FormatCardLine(card *models.Card) string {
	return fmt.Sprintf("`%s` · `%s` · `#%d` · `◈%d` · %s · **%s**",
		card.UID,
		economy.Rarity(card.Rarity).Stars(),
		card.SerialNumber,
		card.Edition,
		card.Series,
		card.CharacterName,
	)
}

// FormatCardDetails is the multi-line body of a card view.
func FormatCardDetails(card *models.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n*%s*\n\n", card.CharacterName, card.Series)
	fmt.Fprintf(&b, "Code: `%s`\n", card.UID)
	fmt.Fprintf(&b, "Print: `#%d` · Edition `◈%d`\n", card.SerialNumber, card.Edition)
	fmt.Fprintf(&b, "Quality: `%s` (%s)\n", economy.Rarity(card.Rarity).Stars(), card.Condition)
	if card.OwnedBy != nil {
		fmt.Fprintf(&b, "Owner: <@%s>\n", *card.OwnedBy)
	}
	if card.GrabbedBy != nil {
		fmt.Fprintf(&b, "Grabbed by: <@%s>", *card.GrabbedBy)
		if card.GrabDelay != nil {
			fmt.Fprintf(&b, " in %.2fs", *card.GrabDelay)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Dropped: <t:%d:R>", card.DroppedAt.Unix())
	return b.String()
}

// FormatDuration prints d as "1h 2m 3s", dropping leading zero units.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 || (h > 0 && s > 0) {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}
