package burn

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
	"github.com/KristianLengyel/menami-bot/menami/economy"
	"github.com/KristianLengyel/menami-bot/menami/economy/utils"
)

type Result struct {
	Card   *models.Card
	Reward int64
	// Dust is the condition whose dust balance grew by one.
	Dust string
}

// Manager destroys cards for coins and dust.
type Manager struct {
	txm   *utils.EconomicTransactionManager
	cards repositories.CardRepository
	users repositories.UserRepository
	now   func() time.Time

	// step runs between the stages of a burn; tests use it to inject faults.
	step func(stage string) error
}

func NewManager(txm *utils.EconomicTransactionManager, cards repositories.CardRepository, users repositories.UserRepository) *Manager {
	return &Manager{txm: txm, cards: cards, users: users, now: time.Now, step: func(string) error { return nil }}
}

// Burn archives the card, deletes it, and pays the owner. Either all of it
// happens or none of it does.
func (m *Manager) Burn(ctx context.Context, userID, uid string) (*Result, error) {
	var result *Result
	err := m.txm.WithTransaction(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		card, err := m.cards.LockOwned(ctx, tx, uid, userID)
		if err != nil {
			return utils.CardError(uid, err)
		}

		rarity := economy.Rarity(card.Rarity)
		reward := economy.BurnRewardByRarity[rarity]
		dust := rarity.Condition()

		if _, err := tx.NewInsert().Model(models.NewBurn(card, userID, reward, m.now().UTC())).Exec(ctx); err != nil {
			return fmt.Errorf("archive burn: %w", err)
		}
		if err := m.step("archived"); err != nil {
			return err
		}
		if err := m.cards.Delete(ctx, tx, uid); err != nil {
			return fmt.Errorf("delete card: %w", err)
		}
		if err := m.step("deleted"); err != nil {
			return err
		}
		if err := m.users.Ensure(ctx, tx, userID); err != nil {
			return err
		}
		if err := m.users.Credit(ctx, tx, userID, repositories.Credit{
			Coins: reward,
			Dust:  map[string]int64{dust: 1},
		}); err != nil {
			return fmt.Errorf("credit reward: %w", err)
		}

		result = &Result{Card: card, Reward: reward, Dust: dust}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Card burned",
		slog.String("type", "economy"),
		slog.String("uid", uid),
		slog.String("user_id", userID),
		slog.Int64("reward", result.Reward))
	return result, nil
}
