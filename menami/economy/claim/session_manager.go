package claim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/economy/cooldown"
)

type Status int

const (
	// StatusUnknown: no open session for the message.
	StatusUnknown Status = iota
	// StatusIgnored: the ordinal does not select an offered card.
	StatusIgnored
	StatusOnCooldown
	StatusExpired
	// StatusAlreadyClaimed: another claim or the expiry closed the session first.
	StatusAlreadyClaimed
	StatusClaimed
	// StatusLost: the card row was already grabbed in the store.
	StatusLost
)

func (s Status) String() string {
	return [...]string{"unknown", "ignored", "on_cooldown", "expired", "already_claimed", "claimed", "lost"}[s]
}

// Signal is one claim attempt coming from the chat platform.
type Signal struct {
	MessageID  string
	Ordinal    int // zero-based
	ClaimantID string
	Latency    time.Duration
}

type Outcome struct {
	Status    Status
	Card      *models.Card
	Delay     float64
	Remaining time.Duration
}

type CardReader interface {
	GetByUID(ctx context.Context, uid string) (*models.Card, error)
}

type Config struct {
	Window       time.Duration
	GrabCooldown time.Duration
}

// AfterFunc schedules f after d and returns a stop function.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func stdAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type SessionManager struct {
	cfg       Config
	store     *SessionStore
	resolver  *Resolver
	cards     CardReader
	gate      *cooldown.Gate
	announcer Announcer
	now       func() time.Time
	afterFunc AfterFunc

	mu     sync.Mutex
	closed bool
}

func NewSessionManager(
	cfg Config,
	store *SessionStore,
	resolver *Resolver,
	cards CardReader,
	gate *cooldown.Gate,
	announcer Announcer,
) *SessionManager {
	return &SessionManager{
		cfg:       cfg,
		store:     store,
		resolver:  resolver,
		cards:     cards,
		gate:      gate,
		announcer: announcer,
		now:       time.Now,
		afterFunc: stdAfterFunc,
	}
}

// WithClock swaps the clock and timer source, for tests.
func (m *SessionManager) WithClock(now func() time.Time, after AfterFunc) *SessionManager {
	m.now = now
	m.afterFunc = after
	return m
}

var ErrSessionExists = errors.New("session already open for message")

// Open starts the claim window for an announced drop.
func (m *SessionManager) Open(messageID, channelID string, uids []string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("session manager is shut down")
	}

	session := &Session{
		MessageID: messageID,
		ChannelID: channelID,
		UIDs:      append([]string(nil), uids...),
		OpenedAt:  m.now(),
	}
	if _, exists := m.store.Get(messageID); exists {
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, messageID)
	}
	// stop is set before the session is published so claimers never race on it.
	session.stop = m.afterFunc(m.cfg.Window, func() { m.expire(session) })
	if !m.store.Put(session) {
		session.stop()
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, messageID)
	}
	if session.Claimed() {
		// expired before it was stored
		m.store.Delete(messageID)
	}

	slog.Debug("Drop session opened",
		slog.String("type", "economy"),
		slog.String("message_id", messageID),
		slog.Int("cards", len(uids)))
	return session, nil
}

func (m *SessionManager) expire(session *Session) {
	if !session.take() {
		return
	}
	m.store.Delete(session.MessageID)

	ctx, cancel := context.WithTimeout(context.Background(), config.AnnounceTimeout)
	defer cancel()
	m.announce(ctx, session, CloseExpired, nil)
}

// HandleClaim applies one claim signal. Only the first claim of a session
// reaches the store; every later one is a no-op.
func (m *SessionManager) HandleClaim(ctx context.Context, sig Signal) (Outcome, error) {
	session, ok := m.store.Get(sig.MessageID)
	if !ok {
		return Outcome{Status: StatusUnknown}, nil
	}
	if sig.Ordinal < 0 || sig.Ordinal >= len(session.UIDs) {
		return Outcome{Status: StatusIgnored}, nil
	}

	rem, err := m.gate.Remaining(ctx, sig.ClaimantID, config.TimerGrab, m.cfg.GrabCooldown)
	if err != nil {
		return Outcome{}, err
	}
	if rem > 0 {
		return Outcome{Status: StatusOnCooldown, Remaining: rem}, nil
	}

	elapsed := m.now().Sub(session.OpenedAt)
	if elapsed > m.cfg.Window {
		if session.take() {
			m.finish(ctx, session, CloseExpired, nil)
		}
		return Outcome{Status: StatusExpired}, nil
	}

	if !session.take() {
		return Outcome{Status: StatusAlreadyClaimed}, nil
	}
	if session.stop != nil {
		session.stop()
	}

	uid := session.UIDs[sig.Ordinal]
	delay := ClaimDelay(elapsed, sig.Latency)
	won, err := m.resolver.TryClaim(ctx, uid, sig.ClaimantID, delay)
	if err != nil {
		m.finish(ctx, session, CloseFailed, nil)
		return Outcome{}, err
	}
	if !won {
		m.finish(ctx, session, CloseExpired, nil)
		return Outcome{Status: StatusLost}, nil
	}

	if err := m.gate.Mark(ctx, sig.ClaimantID, config.TimerGrab); err != nil {
		slog.Error("Failed to mark grab cooldown",
			slog.String("type", "economy"),
			slog.String("user_id", sig.ClaimantID),
			slog.Any("error", err))
	}

	card, err := m.cards.GetByUID(ctx, uid)
	if err != nil {
		slog.Warn("Claimed card could not be reloaded",
			slog.String("type", "economy"),
			slog.String("uid", uid),
			slog.Any("error", err))
	}
	m.finish(ctx, session, CloseClaimed, card)

	slog.Info("Card claimed",
		slog.String("type", "economy"),
		slog.String("uid", uid),
		slog.String("user_id", sig.ClaimantID),
		slog.Float64("delay", delay))
	return Outcome{Status: StatusClaimed, Card: card, Delay: delay}, nil
}

func (m *SessionManager) finish(ctx context.Context, session *Session, reason CloseReason, card *models.Card) {
	if session.stop != nil {
		session.stop()
	}
	m.store.Delete(session.MessageID)
	m.announce(ctx, session, reason, card)
}

func (m *SessionManager) announce(ctx context.Context, session *Session, reason CloseReason, card *models.Card) {
	if m.announcer == nil {
		return
	}
	if err := m.announcer.CloseDrop(ctx, session.ChannelID, session.MessageID, reason, card); err != nil {
		slog.Error("Failed to close drop message",
			slog.String("type", "economy"),
			slog.String("message_id", session.MessageID),
			slog.String("reason", reason.String()),
			slog.Any("error", err))
	}
}

func (m *SessionManager) Len() int {
	return m.store.Len()
}

// Close stops every pending expiry timer and forgets open sessions. Drops
// open at shutdown are left as they are on the platform.
func (m *SessionManager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.store.Range(func(s *Session) bool {
		if s.take() && s.stop != nil {
			s.stop()
		}
		m.store.Delete(s.MessageID)
		return true
	})
}
