package cooldown

import (
	"sync"
	"time"
)

// ChannelStore holds the per-channel drop lock in memory only. It is empty
// after a restart.
type ChannelStore struct {
	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

func NewChannelStore() *ChannelStore {
	return NewChannelStoreWithClock(time.Now)
}

func NewChannelStoreWithClock(now func() time.Time) *ChannelStore {
	return &ChannelStore{last: make(map[string]time.Time), now: now}
}

func (s *ChannelStore) Remaining(channelID string, window time.Duration) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.last[channelID]
	if !ok {
		return 0
	}
	return remaining(s.now(), last, window)
}

func (s *ChannelStore) Mark(channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[channelID] = s.now()
}

// TryAcquire marks the channel only when it is not cooling down. It returns
// the remaining wait when it refuses.
func (s *ChannelStore) TryAcquire(channelID string, window time.Duration) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if last, ok := s.last[channelID]; ok {
		if rem := remaining(now, last, window); rem > 0 {
			return rem, false
		}
	}
	s.last[channelID] = now
	return 0, true
}

// Release undoes a TryAcquire whose drop did not go out.
func (s *ChannelStore) Release(channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.last, channelID)
}

// Prune forgets channels idle for longer than maxAge.
func (s *ChannelStore) Prune(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, last := range s.last {
		if now.Sub(last) > maxAge {
			delete(s.last, id)
			removed++
		}
	}
	return removed
}
