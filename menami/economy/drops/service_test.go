package drops

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KristianLengyel/menami-bot/menami/database"
	"github.com/KristianLengyel/menami-bot/menami/database/dbtest"
	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
	"github.com/KristianLengyel/menami-bot/menami/economy"
	"github.com/KristianLengyel/menami-bot/menami/economy/cooldown"
	"github.com/KristianLengyel/menami-bot/menami/economy/serial"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	db       *database.DB
	service  *Service
	clock    *testClock
	settings repositories.GuildSettingsRepository
	cards    repositories.CardRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	ctx := context.Background()

	catalog := repositories.NewCatalogRepository(db.BunDB())
	_, err := catalog.Add(ctx, "Frieren", "Fern")
	require.NoError(t, err)

	clk := &testClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cards := repositories.NewCardRepository(db.BunDB())
	settings := repositories.NewGuildSettingsRepository(db.BunDB())
	meta := repositories.NewMetaRepository(db.BunDB())

	svc := NewService(
		Config{DropSize: 3, ChannelCooldown: 30 * time.Second, UserCooldown: 10 * time.Minute},
		cards,
		repositories.NewUserRepository(db.BunDB()),
		settings,
		cooldown.NewGateWithClock(repositories.NewTimerRepository(db.BunDB()), clk.Now),
		cooldown.NewChannelStoreWithClock(clk.Now),
		serial.NewAllocator(cards),
		NewGenerator(catalog, meta, nil),
	)
	return &fixture{db: db, service: svc, clock: clk, settings: settings, cards: cards}
}

func TestDropMintsUnclaimedCards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cards, err := f.service.Drop(ctx, Request{GuildID: "g", ChannelID: "c", UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, cards, 3)

	serials := map[string]bool{}
	for _, card := range cards {
		assert.Len(t, card.UID, UIDLength)
		assert.Nil(t, card.GrabbedBy)
		assert.Nil(t, card.OwnedBy)
		assert.Equal(t, "c", card.DroppedIn)
		assert.Equal(t, "alice", card.DroppedBy)
		assert.Equal(t, economy.Rarity(card.Rarity).Condition(), card.Condition)

		stored, err := f.cards.GetByUID(ctx, card.UID)
		require.NoError(t, err)
		serials[fmt.Sprintf("%d/%d", stored.Edition, stored.SerialNumber)] = true
	}
	assert.Len(t, serials, 3)
}

func TestDropCooldowns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Drop(ctx, Request{ChannelID: "c1", UserID: "alice"})
	require.NoError(t, err)

	_, err = f.service.Drop(ctx, Request{ChannelID: "c1", UserID: "bob"})
	var cd *economy.CooldownError
	require.True(t, errors.As(err, &cd))
	assert.Equal(t, "channel", cd.Scope)

	_, err = f.service.Drop(ctx, Request{ChannelID: "c2", UserID: "alice"})
	require.True(t, errors.As(err, &cd))
	assert.Equal(t, "user", cd.Scope)

	// the refused user drop must not have locked c2
	_, err = f.service.Drop(ctx, Request{ChannelID: "c2", UserID: "bob"})
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	_, err = f.service.Drop(ctx, Request{ChannelID: "c1", UserID: "alice"})
	require.NoError(t, err)
}

func TestDropChannelRestrictionAndOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	allowed := "drops"
	require.NoError(t, f.settings.SetDropChannel(ctx, "g", &allowed))
	zero := 0
	require.NoError(t, f.settings.SetDropCooldown(ctx, "g", &zero))

	_, err := f.service.Drop(ctx, Request{GuildID: "g", ChannelID: "general", UserID: "alice"})
	var wrong *economy.WrongChannelError
	require.True(t, errors.As(err, &wrong))
	assert.Equal(t, "drops", wrong.Allowed)

	_, err = f.service.Drop(ctx, Request{GuildID: "g", ChannelID: "drops", UserID: "alice"})
	require.NoError(t, err)
	_, err = f.service.Drop(ctx, Request{GuildID: "g", ChannelID: "drops", UserID: "bob"})
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), f.service.ChannelCooldown(ctx, "g"))
	assert.Equal(t, 30*time.Second, f.service.ChannelCooldown(ctx, "other"))
}

func TestMintRetriesUIDCollisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Drop(ctx, Request{ChannelID: "c", UserID: "alice"})
	require.NoError(t, err)

	taken := first[0].UID
	calls := 0
	f.service.newUID = func() (string, error) {
		calls++
		if calls == 1 {
			return taken, nil
		}
		return NewUID()
	}
	f.service.cfg.DropSize = 1
	f.clock.Advance(time.Hour)

	cards, err := f.service.Drop(ctx, Request{ChannelID: "c", UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.NotEqual(t, taken, cards[0].UID)
	assert.GreaterOrEqual(t, calls, 2)
}

// failingInserts fails the insert with the given 1-based call number.
type failingInserts struct {
	repositories.CardRepository
	failOn int32
	calls  atomic.Int32
}

func (f *failingInserts) Insert(ctx context.Context, card *models.Card) error {
	if f.calls.Add(1) == f.failOn {
		return errors.New("disk full")
	}
	return f.CardRepository.Insert(ctx, card)
}

func TestFailedDropLeavesNoCards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.service.cards = &failingInserts{CardRepository: f.cards, failOn: 3}

	_, err := f.service.Drop(ctx, Request{ChannelID: "c", UserID: "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	count, err := f.db.BunDB().NewSelect().Model((*models.Card)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// neither the channel nor the user cooldown was consumed
	f.service.cards = f.cards
	cards, err := f.service.Drop(ctx, Request{ChannelID: "c", UserID: "alice"})
	require.NoError(t, err)
	assert.Len(t, cards, 3)
}
