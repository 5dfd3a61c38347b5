package claim

import (
	"sync"
	"sync/atomic"
	"time"
)

// Session is one open drop. Claimed flips once, either by a winning claim or
// by expiry, and whichever flips it owns closing the drop.
type Session struct {
	MessageID string
	ChannelID string
	UIDs      []string
	OpenedAt  time.Time

	claimed atomic.Bool
	stop    func() bool
}

func (s *Session) Claimed() bool {
	return s.claimed.Load()
}

// take reports whether the caller won the right to close the session.
func (s *Session) take() bool {
	return s.claimed.CompareAndSwap(false, true)
}

// SessionStore holds the open sessions keyed by announcement message id.
type SessionStore struct {
	sessions sync.Map
	count    atomic.Int64
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Get(messageID string) (*Session, bool) {
	v, ok := s.sessions.Load(messageID)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// Put refuses to replace an existing session.
func (s *SessionStore) Put(session *Session) bool {
	if _, loaded := s.sessions.LoadOrStore(session.MessageID, session); loaded {
		return false
	}
	s.count.Add(1)
	return true
}

func (s *SessionStore) Delete(messageID string) {
	if _, loaded := s.sessions.LoadAndDelete(messageID); loaded {
		s.count.Add(-1)
	}
}

func (s *SessionStore) Len() int {
	return int(s.count.Load())
}

func (s *SessionStore) Range(fn func(*Session) bool) {
	s.sessions.Range(func(_, v any) bool {
		return fn(v.(*Session))
	})
}
