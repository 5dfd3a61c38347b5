package daily

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/KristianLengyel/menami-bot/menami/database/dbtest"
	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
	"github.com/KristianLengyel/menami-bot/menami/economy"
	"github.com/KristianLengyel/menami-bot/menami/economy/cooldown"
	"github.com/KristianLengyel/menami-bot/menami/economy/utils"
)

func TestDailyClaim(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	now := time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	users := repositories.NewUserRepository(db.BunDB())
	svc := NewService(
		Config{Cooldown: 24 * time.Hour, CoinsMin: 100, CoinsMax: 250, GemsMin: 1, GemsMax: 5},
		utils.NewEconomicTransactionManager(db.BunDB(), users),
		users,
		cooldown.NewGateWithClock(repositories.NewTimerRepository(db.BunDB()), clock),
	)
	svc.between = func(lo, hi int64) int64 { return hi }

	reward, err := svc.Claim(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Reward{Coins: 250, Gems: 5}, reward)

	_, err = svc.Claim(ctx, "alice")
	var cd *economy.CooldownError
	require.True(t, errors.As(err, &cd))
	assert.Equal(t, 24*time.Hour, cd.Remaining)

	now = now.Add(24 * time.Hour)
	_, err = svc.Claim(ctx, "alice")
	require.NoError(t, err)

	user, err := users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(500), user.Coins)
	assert.Equal(t, int64(10), user.Gems)
}

func TestRandBetweenBounds(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := randBetween(100, 250)
		assert.GreaterOrEqual(t, v, int64(100))
		assert.LessOrEqual(t, v, int64(250))
	}
	assert.Equal(t, int64(7), randBetween(7, 7))
}

type failingTimers struct {
	repositories.TimerRepository
}

func (failingTimers) Set(context.Context, bun.IDB, string, string, time.Time) error {
	return errors.New("timer write failed")
}

func TestDailyTimerFailurePaysNothing(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	cfg := Config{Cooldown: 24 * time.Hour, CoinsMin: 100, CoinsMax: 100, GemsMin: 1, GemsMax: 1}
	users := repositories.NewUserRepository(db.BunDB())
	txm := utils.NewEconomicTransactionManager(db.BunDB(), users)
	timers := repositories.NewTimerRepository(db.BunDB())

	broken := NewService(cfg, txm, users, cooldown.NewGate(failingTimers{timers}))
	_, err := broken.Claim(ctx, "alice")
	require.Error(t, err)

	_, err = users.Get(ctx, "alice")
	assert.True(t, repositories.IsNotFound(err), "credit must roll back with the timer write")

	svc := NewService(cfg, txm, users, cooldown.NewGate(timers))
	reward, err := svc.Claim(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Reward{Coins: 100, Gems: 1}, reward)

	_, err = svc.Claim(ctx, "alice")
	var cd *economy.CooldownError
	require.True(t, errors.As(err, &cd))
}
