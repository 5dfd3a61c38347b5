package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type TimerStore interface {
	Get(ctx context.Context, userID, key string) (time.Time, bool, error)
	Set(ctx context.Context, idb bun.IDB, userID, key string, ts time.Time) error
}

// Gate enforces per-user cooldowns backed by durable timers.
type Gate struct {
	timers TimerStore
	now    func() time.Time
}

func NewGate(timers TimerStore) *Gate {
	return &Gate{timers: timers, now: time.Now}
}

func NewGateWithClock(timers TimerStore, now func() time.Time) *Gate {
	return &Gate{timers: timers, now: now}
}

func (g *Gate) Now() time.Time {
	return g.now().UTC()
}

// Remaining is how long the subject must still wait before key is allowed
// again. Zero means allowed. A timer in the future counts as just marked.
func (g *Gate) Remaining(ctx context.Context, subject, key string, window time.Duration) (time.Duration, error) {
	last, ok, err := g.timers.Get(ctx, subject, key)
	if err != nil {
		return 0, fmt.Errorf("read %s timer: %w", key, err)
	}
	if !ok {
		return 0, nil
	}
	return remaining(g.Now(), last, window), nil
}

func (g *Gate) Mark(ctx context.Context, subject, key string) error {
	return g.MarkTx(ctx, nil, subject, key)
}

// MarkTx writes the mark through idb, so it commits or rolls back with the
// operation it gates.
func (g *Gate) MarkTx(ctx context.Context, idb bun.IDB, subject, key string) error {
	if err := g.timers.Set(ctx, idb, subject, key, g.Now()); err != nil {
		return fmt.Errorf("mark %s timer: %w", key, err)
	}
	return nil
}

// Snapshot reports the remaining wait of several keys at once.
func (g *Gate) Snapshot(ctx context.Context, subject string, windows map[string]time.Duration) (map[string]time.Duration, error) {
	out := make(map[string]time.Duration, len(windows))
	for key, window := range windows {
		rem, err := g.Remaining(ctx, subject, key, window)
		if err != nil {
			return nil, err
		}
		out[key] = rem
	}
	return out, nil
}

func remaining(now, last time.Time, window time.Duration) time.Duration {
	elapsed := now.Sub(last)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= window {
		return 0
	}
	return window - elapsed
}
