package claim

import (
	"context"
	"fmt"
	"math"
	"time"
)

type Store interface {
	Claim(ctx context.Context, uid, claimant string, delay float64) (bool, error)
}

// Resolver performs the single conditional write that decides a card's first
// owner. Concurrent callers for one uid see exactly one true.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

func (r *Resolver) TryClaim(ctx context.Context, uid, claimant string, delaySeconds float64) (bool, error) {
	won, err := r.store.Claim(ctx, uid, claimant, delaySeconds)
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", uid, err)
	}
	return won, nil
}

// ClaimDelay is the reaction time shown in stats: seconds since the drop,
// less the observed latency, never negative, to two decimals.
func ClaimDelay(elapsed, latency time.Duration) float64 {
	d := (elapsed - latency).Seconds()
	if d < 0 {
		d = 0
	}
	return math.Round(d*100) / 100
}
