package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/KristianLengyel/menami-bot/menami/database/models"
)

type TimerRepository interface {
	// Get returns the last mark, with ok false when the key was never set.
	Get(ctx context.Context, userID, key string) (ts time.Time, ok bool, err error)
	// Set upserts the mark. A nil idb runs against the pool.
	Set(ctx context.Context, idb bun.IDB, userID, key string, ts time.Time) error
	All(ctx context.Context, userID string) (map[string]time.Time, error)
}

type timerRepository struct {
	*BaseRepository
}

func NewTimerRepository(db *bun.DB) TimerRepository {
	return &timerRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *timerRepository) Get(ctx context.Context, userID, key string) (time.Time, bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	timer := new(models.UserTimer)
	err := r.db.NewSelect().
		Model(timer).
		Where("user_id = ?", userID).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		err = r.HandleErrorWithID("get", "user_timer", key, err)
		if IsNotFound(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return timer.TS, true, nil
}

func (r *timerRepository) Set(ctx context.Context, idb bun.IDB, userID, key string, ts time.Time) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	_, err := r.idb(idb).NewInsert().
		Model(&models.UserTimer{UserID: userID, Key: key, TS: ts.UTC()}).
		On("CONFLICT (user_id, key) DO UPDATE").
		Set("ts = EXCLUDED.ts").
		Exec(ctx)
	return r.HandleErrorWithID("set", "user_timer", key, err)
}

func (r *timerRepository) All(ctx context.Context, userID string) (map[string]time.Time, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var timers []models.UserTimer
	if err := r.db.NewSelect().Model(&timers).Where("user_id = ?", userID).Scan(ctx); err != nil {
		err = r.HandleError("all", "user_timer", err)
		if !IsNotFound(err) {
			return nil, err
		}
	}
	out := make(map[string]time.Time, len(timers))
	for _, t := range timers {
		out[t.Key] = t.TS
	}
	return out, nil
}
