package serial

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KristianLengyel/menami-bot/menami/economy"
)

type memLookup struct {
	used        map[int]bool
	takenCalls  int
	listedCalls int
	err         error
}

func (m *memLookup) SerialTaken(_ context.Context, _, _ string, _, serial int) (bool, error) {
	m.takenCalls++
	return m.used[serial], m.err
}

func (m *memLookup) UsedSerials(context.Context, string, string, int) ([]int, error) {
	m.listedCalls++
	out := make([]int, 0, len(m.used))
	for s := range m.used {
		out = append(out, s)
	}
	return out, m.err
}

func fullRange() map[int]bool {
	used := make(map[int]bool, MaxSerial)
	for s := MinSerial; s <= MaxSerial; s++ {
		used[s] = true
	}
	return used
}

var key = Key{Series: "Frieren", Character: "Fern", Edition: 1}

func TestAllocateRandomHit(t *testing.T) {
	lookup := &memLookup{used: map[int]bool{}}
	alloc := NewAllocatorWithRand(lookup, func(int) int { return 41 })

	got, err := alloc.Allocate(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, lookup.takenCalls)
	assert.Equal(t, 0, lookup.listedCalls)
}

func TestAllocateFallsBackToLowestFree(t *testing.T) {
	used := fullRange()
	delete(used, 17)
	delete(used, 5000)
	lookup := &memLookup{used: used}
	// always pick the first serial, which is taken
	alloc := NewAllocatorWithRand(lookup, func(int) int { return 0 })

	got, err := alloc.Allocate(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 17, got)
	assert.Equal(t, MaxRandomTries, lookup.takenCalls)
	assert.Equal(t, 1, lookup.listedCalls)
}

func TestAllocateCapacityExhausted(t *testing.T) {
	lookup := &memLookup{used: fullRange()}
	alloc := NewAllocatorWithRand(lookup, func(n int) int { return n - 1 })

	_, err := alloc.Allocate(context.Background(), key)
	assert.True(t, errors.Is(err, economy.ErrCapacity))
}

func TestAllocateRangeBounds(t *testing.T) {
	tests := []struct {
		name string
		pick int
		want int
	}{
		{"lowest", 0, MinSerial},
		{"highest", MaxSerial - MinSerial, MaxSerial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := NewAllocatorWithRand(&memLookup{used: map[int]bool{}}, func(int) int { return tt.pick })
			got, err := alloc.Allocate(context.Background(), key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllocatePropagatesStoreErrors(t *testing.T) {
	boom := errors.New("boom")
	alloc := NewAllocatorWithRand(&memLookup{used: map[int]bool{}, err: boom}, func(int) int { return 0 })

	_, err := alloc.Allocate(context.Background(), key)
	assert.ErrorIs(t, err, boom)
}
