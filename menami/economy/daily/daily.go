package daily

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/uptrace/bun"

	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
	"github.com/KristianLengyel/menami-bot/menami/economy"
	"github.com/KristianLengyel/menami-bot/menami/economy/cooldown"
	"github.com/KristianLengyel/menami-bot/menami/economy/utils"
)

type Config struct {
	Cooldown time.Duration
	CoinsMin int64
	CoinsMax int64
	GemsMin  int64
	GemsMax  int64
}

type Reward struct {
	Coins int64
	Gems  int64
}

type Service struct {
	cfg   Config
	txm   *utils.EconomicTransactionManager
	users repositories.UserRepository
	gate  *cooldown.Gate
	// between returns a value in [lo, hi].
	between func(lo, hi int64) int64
}

func NewService(cfg Config, txm *utils.EconomicTransactionManager, users repositories.UserRepository, gate *cooldown.Gate) *Service {
	return &Service{cfg: cfg, txm: txm, users: users, gate: gate, between: randBetween}
}

func randBetween(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + rand.Int64N(hi-lo+1)
}

// Claim pays the daily reward once per cooldown window. A refused claim
// returns *economy.CooldownError.
func (s *Service) Claim(ctx context.Context, userID string) (Reward, error) {
	rem, err := s.gate.Remaining(ctx, userID, config.TimerDaily, s.cfg.Cooldown)
	if err != nil {
		return Reward{}, err
	}
	if rem > 0 {
		return Reward{}, &economy.CooldownError{Scope: "daily", Remaining: rem}
	}

	reward := Reward{
		Coins: s.between(s.cfg.CoinsMin, s.cfg.CoinsMax),
		Gems:  s.between(s.cfg.GemsMin, s.cfg.GemsMax),
	}
	err = s.txm.WithTransaction(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.users.Ensure(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.users.Credit(ctx, tx, userID, repositories.Credit{Coins: reward.Coins, Gems: reward.Gems}); err != nil {
			return err
		}
		return s.gate.MarkTx(ctx, tx, userID, config.TimerDaily)
	})
	if err != nil {
		return Reward{}, err
	}

	slog.Info("Daily reward paid",
		slog.String("type", "economy"),
		slog.String("user_id", userID),
		slog.Int64("coins", reward.Coins),
		slog.Int64("gems", reward.Gems))
	return reward, nil
}
