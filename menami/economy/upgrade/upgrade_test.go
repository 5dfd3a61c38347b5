package upgrade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KristianLengyel/menami-bot/menami/database/dbtest"
	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
	"github.com/KristianLengyel/menami-bot/menami/economy"
	"github.com/KristianLengyel/menami-bot/menami/economy/utils"
)

type fixture struct {
	manager *Manager
	cards   repositories.CardRepository
	users   repositories.UserRepository
}

func newFixture(t *testing.T, rarity int, coins int64, dust map[string]int64) *fixture {
	t.Helper()
	db := dbtest.New(t)
	ctx := context.Background()
	cards := repositories.NewCardRepository(db.BunDB())
	users := repositories.NewUserRepository(db.BunDB())
	txm := utils.NewEconomicTransactionManager(db.BunDB(), users)

	require.NoError(t, cards.Insert(ctx, &models.Card{
		UID: "card001", SerialNumber: 1, Rarity: rarity, Edition: 1, Series: "Frieren", CharacterName: "Fern",
		Condition: economy.Rarity(rarity).Condition(), DroppedAt: time.Now().UTC(), DroppedIn: "chan", DroppedBy: "alice",
	}))
	_, err := cards.Claim(ctx, "card001", "alice", 0)
	require.NoError(t, err)
	require.NoError(t, users.Ensure(ctx, nil, "alice"))
	require.NoError(t, users.Credit(ctx, nil, "alice", repositories.Credit{Coins: coins, Dust: dust}))

	return &fixture{manager: NewManager(txm, cards, users), cards: cards, users: users}
}

func (f *fixture) balances(t *testing.T) *models.User {
	user, err := f.users.Get(context.Background(), "alice")
	require.NoError(t, err)
	return user
}

func (f *fixture) card(t *testing.T) *models.Card {
	card, err := f.cards.GetByUID(context.Background(), "card001")
	require.NoError(t, err)
	return card
}

func TestUpgradeOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		rarity     int
		roll       float64
		dust       string
		want       Outcome
		wantRarity int
		wantCoins  int64
		wantDust   int64
	}{
		{"0 to 1 success", 0, 0.10, "poor", OutcomeSuccess, 1, 1000 - 50, 10 - 1},
		{"0 to 1 fail stays", 0, 0.95, "poor", OutcomeFailStay, 0, 1000 - 50, 10 - 1},
		{"1 to 2 fail stays", 1, 0.60, "good", OutcomeFailStay, 1, 1000 - 150, 10 - 2},
		{"2 to 3 success", 2, 0.39, "excellent", OutcomeSuccess, 3, 1000 - 400, 10 - 3},
		{"2 to 3 fail damages", 2, 0.40, "excellent", OutcomeFailDamaged, 0, 1000 - 400, 10 - 3},
		{"3 to 4 fail damages", 3, 0.50, "mint", OutcomeFailDamaged, 0, 0, 10 - 5},
		{"3 to 4 success", 3, 0.05, "mint", OutcomeSuccess, 4, 0, 10 - 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.rarity, 1000, map[string]int64{tt.dust: 10})
			f.manager.roll = func() float64 { return tt.roll }

			res, err := f.manager.Upgrade(context.Background(), "alice", "card001")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Outcome)
			assert.Equal(t, economy.Rarity(tt.wantRarity), res.To)
			assert.Equal(t, tt.dust, res.Cost.DustCondition)

			card := f.card(t)
			assert.Equal(t, tt.wantRarity, card.Rarity)
			assert.Equal(t, economy.Rarity(tt.wantRarity).Condition(), card.Condition)

			user := f.balances(t)
			assert.Equal(t, tt.wantCoins, user.Coins)
			assert.Equal(t, tt.wantDust, user.Dust(tt.dust))
		})
	}
}

func TestUpgradeInsufficientChargesNothing(t *testing.T) {
	tests := []struct {
		name      string
		coins     int64
		dust      int64
		shortages []string
	}{
		{"coins", 49, 5, []string{"coins"}},
		{"dust", 500, 0, []string{"poor dust"}},
		{"both", 0, 0, []string{"coins", "poor dust"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 0, tt.coins, map[string]int64{"poor": tt.dust})
			f.manager.roll = func() float64 { return 0 }

			_, err := f.manager.Upgrade(context.Background(), "alice", "card001")
			require.ErrorIs(t, err, economy.ErrInsufficientResources)

			var insufficient *economy.InsufficientResourcesError
			require.True(t, errors.As(err, &insufficient))
			var got []string
			for _, s := range insufficient.Shortfalls {
				got = append(got, s.Resource)
			}
			assert.Equal(t, tt.shortages, got)

			user := f.balances(t)
			assert.Equal(t, tt.coins, user.Coins)
			assert.Equal(t, tt.dust, user.DustPoor)
			assert.Equal(t, 0, f.card(t).Rarity)
		})
	}
}

func TestUpgradeMaxRarityIsNoop(t *testing.T) {
	f := newFixture(t, 4, 5000, map[string]int64{"mint": 10})
	f.manager.roll = func() float64 {
		t.Fatal("max rarity must not roll")
		return 0
	}

	res, err := f.manager.Upgrade(context.Background(), "alice", "card001")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyMax, res.Outcome)
	assert.Equal(t, economy.MaxRarity, res.From)

	user := f.balances(t)
	assert.Equal(t, int64(5000), user.Coins)
	assert.Equal(t, int64(10), user.DustMint)
	assert.Equal(t, 4, f.card(t).Rarity)
}

func TestUpgradeFaultRollsBackCharge(t *testing.T) {
	f := newFixture(t, 1, 1000, map[string]int64{"good": 10})
	fault := errors.New("injected fault")
	f.manager.step = func(string) error { return fault }

	_, err := f.manager.Upgrade(context.Background(), "alice", "card001")
	require.ErrorIs(t, err, fault)

	user := f.balances(t)
	assert.Equal(t, int64(1000), user.Coins)
	assert.Equal(t, int64(10), user.DustGood)
}

func TestUpgradeRequiresOwnership(t *testing.T) {
	f := newFixture(t, 1, 1000, map[string]int64{"good": 10})

	_, err := f.manager.Upgrade(context.Background(), "bob", "card001")
	assert.ErrorIs(t, err, economy.ErrNotOwner)

	_, err = f.manager.Upgrade(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, economy.ErrNotFound)
}
