package serial

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/KristianLengyel/menami-bot/menami/economy"
)

const (
	MinSerial      = 1
	MaxSerial      = 9999
	MaxRandomTries = 50
)

// Key identifies one print run.
type Key struct {
	Series    string
	Character string
	Edition   int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s#%d", k.Series, k.Character, k.Edition)
}

// Lookup is the store access the allocator needs.
type Lookup interface {
	SerialTaken(ctx context.Context, series, character string, edition, serial int) (bool, error)
	UsedSerials(ctx context.Context, series, character string, edition int) ([]int, error)
}

type Allocator struct {
	lookup Lookup
	// intn returns a value in [0, n).
	intn func(n int) int
}

func NewAllocator(lookup Lookup) *Allocator {
	return &Allocator{lookup: lookup, intn: rand.IntN}
}

func NewAllocatorWithRand(lookup Lookup, intn func(int) int) *Allocator {
	return &Allocator{lookup: lookup, intn: intn}
}

// Allocate picks an unused serial for the print run. Random picks spread
// serials across the range; once they keep colliding, the lowest free serial
// is returned. The result is only a candidate: the unique index on cards is
// the final arbiter.
func (a *Allocator) Allocate(ctx context.Context, key Key) (int, error) {
	span := MaxSerial - MinSerial + 1
	for i := 0; i < MaxRandomTries; i++ {
		candidate := MinSerial + a.intn(span)
		taken, err := a.lookup.SerialTaken(ctx, key.Series, key.Character, key.Edition, candidate)
		if err != nil {
			return 0, fmt.Errorf("check serial %d for %s: %w", candidate, key, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	used, err := a.lookup.UsedSerials(ctx, key.Series, key.Character, key.Edition)
	if err != nil {
		return 0, fmt.Errorf("list serials for %s: %w", key, err)
	}
	taken := make(map[int]bool, len(used))
	for _, s := range used {
		taken[s] = true
	}
	for s := MinSerial; s <= MaxSerial; s++ {
		if !taken[s] {
			return s, nil
		}
	}

	slog.Error("Serial space exhausted",
		slog.String("type", "economy"),
		slog.String("print_run", key.String()))
	return 0, fmt.Errorf("%w for %s", economy.ErrCapacity, key)
}
