package upgrade

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/uptrace/bun"

	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
	"github.com/KristianLengyel/menami-bot/menami/economy"
	"github.com/KristianLengyel/menami-bot/menami/economy/utils"
)

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailStay
	OutcomeFailDamaged
	// OutcomeAlreadyMax: nothing was charged or changed.
	OutcomeAlreadyMax
)

func (o Outcome) String() string {
	return [...]string{"success", "fail_stay", "fail_damaged", "already_max"}[o]
}

type Cost struct {
	Gold          int64
	Dust          int64
	DustCondition string
}

type Result struct {
	Outcome Outcome
	// Card reflects the state after the upgrade.
	Card *models.Card
	From economy.Rarity
	To   economy.Rarity
	Cost Cost
	// Chance of the attempted step, for display.
	Chance float64
}

type Manager struct {
	txm   *utils.EconomicTransactionManager
	cards repositories.CardRepository
	users repositories.UserRepository
	// roll returns a value in [0, 1); the upgrade succeeds below the chance.
	roll func() float64
	step func(stage string) error
}

func NewManager(txm *utils.EconomicTransactionManager, cards repositories.CardRepository, users repositories.UserRepository) *Manager {
	return &Manager{txm: txm, cards: cards, users: users, roll: rand.Float64, step: func(string) error { return nil }}
}

// Preview returns the rule for the card's next step without changing anything.
func Preview(card *models.Card) (economy.UpgradeRule, bool) {
	rule, ok := economy.UpgradeRules[economy.Rarity(card.Rarity)]
	return rule, ok
}

// Upgrade charges the step cost and rolls once. The charge stands whether
// the roll succeeds or fails. Insufficient balances charge nothing.
func (m *Manager) Upgrade(ctx context.Context, userID, uid string) (*Result, error) {
	var result *Result
	err := m.txm.WithTransaction(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		card, err := m.cards.LockOwned(ctx, tx, uid, userID)
		if err != nil {
			return utils.CardError(uid, err)
		}

		from := economy.Rarity(card.Rarity)
		rule, ok := economy.UpgradeRules[from]
		if !ok {
			result = &Result{Outcome: OutcomeAlreadyMax, Card: card, From: from, To: from}
			return nil
		}

		cost := Cost{Gold: rule.Gold, Dust: rule.Dust, DustCondition: rule.DustCondition()}
		if err := m.users.Ensure(ctx, tx, userID); err != nil {
			return err
		}
		if err := m.txm.DebitOrShortfall(ctx, tx, userID, cost.Gold, cost.DustCondition, cost.Dust); err != nil {
			return err
		}
		if err := m.step("charged"); err != nil {
			return err
		}

		outcome := OutcomeSuccess
		to := rule.To
		if m.roll() >= rule.Chance {
			if rule.Fail == economy.FailDamaged {
				outcome, to = OutcomeFailDamaged, economy.MinRarity
			} else {
				outcome, to = OutcomeFailStay, from
			}
		}

		if to != from {
			if err := m.cards.UpdateGrade(ctx, tx, uid, int(to), to.Condition()); err != nil {
				return fmt.Errorf("update grade: %w", err)
			}
			card.Rarity = int(to)
			card.Condition = to.Condition()
		}

		result = &Result{Outcome: outcome, Card: card, From: from, To: to, Cost: cost, Chance: rule.Chance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Upgrade attempted",
		slog.String("type", "economy"),
		slog.String("uid", uid),
		slog.String("user_id", userID),
		slog.String("outcome", result.Outcome.String()))
	return result, nil
}
