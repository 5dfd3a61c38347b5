package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KristianLengyel/menami-bot/menami/database/dbtest"
	"github.com/KristianLengyel/menami-bot/menami/database/models"
	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
)

func newCard(uid string, serial, rarity int, droppedAt time.Time) *models.Card {
	return &models.Card{
		UID:           uid,
		SerialNumber:  serial,
		Rarity:        rarity,
		Edition:       1,
		Series:        "Frieren",
		CharacterName: "Fern",
		Condition:     "good",
		DroppedAt:     droppedAt,
		DroppedIn:     "chan",
		DroppedBy:     "dropper",
	}
}

func TestCardClaimIsSingleShot(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	cards := repositories.NewCardRepository(db.BunDB())

	require.NoError(t, cards.Insert(ctx, newCard("abc1234", 1, 0, time.Now().UTC())))

	won, err := cards.Claim(ctx, "abc1234", "alice", 1.25)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = cards.Claim(ctx, "abc1234", "bob", 0.5)
	require.NoError(t, err)
	assert.False(t, won)

	card, err := cards.GetByUID(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "alice", *card.GrabbedBy)
	assert.Equal(t, "alice", *card.OwnedBy)
	assert.InDelta(t, 1.25, *card.GrabDelay, 1e-9)
}

func TestCardTransferGuards(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	cards := repositories.NewCardRepository(db.BunDB())

	require.NoError(t, cards.Insert(ctx, newCard("abc1234", 1, 0, time.Now().UTC())))
	_, err := cards.Claim(ctx, "abc1234", "alice", 0)
	require.NoError(t, err)

	err = cards.Transfer(ctx, "abc1234", "bob", "carol")
	assert.True(t, repositories.IsConflict(err))

	err = cards.Transfer(ctx, "missing", "alice", "carol")
	assert.True(t, repositories.IsNotFound(err))

	require.NoError(t, cards.Transfer(ctx, "abc1234", "alice", "carol"))
	card, err := cards.GetByUID(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "carol", *card.OwnedBy)
	assert.Equal(t, "alice", *card.GrabbedBy)
}

func TestCardSerialLookups(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	cards := repositories.NewCardRepository(db.BunDB())

	for i, serial := range []int{3, 1, 2} {
		require.NoError(t, cards.Insert(ctx, newCard(string(rune('a'+i))+"000000", serial, 0, time.Now().UTC())))
	}

	taken, err := cards.SerialTaken(ctx, "Frieren", "Fern", 1, 2)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = cards.SerialTaken(ctx, "Frieren", "Fern", 2, 2)
	require.NoError(t, err)
	assert.False(t, taken)

	used, err := cards.UsedSerials(ctx, "Frieren", "Fern", 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, used)
}

func TestLatestOwnedAndListing(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	cards := repositories.NewCardRepository(db.BunDB())

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, uid := range []string{"old0000", "mid0000", "new0000"} {
		require.NoError(t, cards.Insert(ctx, newCard(uid, i+1, 0, base.Add(time.Duration(i)*time.Minute))))
		_, err := cards.Claim(ctx, uid, "alice", 0)
		require.NoError(t, err)
	}

	latest, err := cards.GetLatestOwned(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "new0000", latest.UID)

	_, err = cards.GetLatestOwned(ctx, "nobody")
	assert.True(t, repositories.IsNotFound(err))

	page, total, err := cards.ListOwned(ctx, "alice", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "mid0000", page[0].UID)
}

func TestUserDebitIsGuarded(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	users := repositories.NewUserRepository(db.BunDB())

	require.NoError(t, users.Ensure(ctx, nil, "alice"))
	require.NoError(t, users.Ensure(ctx, nil, "alice"))
	require.NoError(t, users.Credit(ctx, nil, "alice", repositories.Credit{
		Coins: 100,
		Dust:  map[string]int64{"good": 2},
	}))

	ok, err := users.Debit(ctx, nil, "alice", 150, "good", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = users.Debit(ctx, nil, "alice", 50, "good", 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = users.Debit(ctx, nil, "alice", 60, "good", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	user, err := users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(40), user.Coins)
	assert.Equal(t, int64(0), user.DustGood)
}

func TestUserCreditRejectsUnknownDust(t *testing.T) {
	db := dbtest.New(t)
	users := repositories.NewUserRepository(db.BunDB())
	ctx := context.Background()

	require.NoError(t, users.Ensure(ctx, nil, "alice"))
	err := users.Credit(ctx, nil, "alice", repositories.Credit{Dust: map[string]int64{"shiny": 1}})
	assert.Error(t, err)
}

func TestTimerUpsert(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	timers := repositories.NewTimerRepository(db.BunDB())

	_, ok, err := timers.Get(ctx, "alice", "drop")
	require.NoError(t, err)
	assert.False(t, ok)

	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	require.NoError(t, timers.Set(ctx, nil, "alice", "drop", first))
	require.NoError(t, timers.Set(ctx, nil, "alice", "drop", second))
	require.NoError(t, timers.Set(ctx, nil, "alice", "grab", first))

	ts, ok, err := timers.Get(ctx, "alice", "drop")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, second.Equal(ts))

	all, err := timers.All(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGuildSettingsCacheInvalidation(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	settings := repositories.NewGuildSettingsRepository(db.BunDB())

	s, err := settings.Get(ctx, "guild")
	require.NoError(t, err)
	assert.Nil(t, s.DropChannelID)

	channel := "123"
	require.NoError(t, settings.SetDropChannel(ctx, "guild", &channel))
	cooldown := 45
	require.NoError(t, settings.SetDropCooldown(ctx, "guild", &cooldown))

	s, err = settings.Get(ctx, "guild")
	require.NoError(t, err)
	require.NotNil(t, s.DropChannelID)
	assert.Equal(t, "123", *s.DropChannelID)
	require.NotNil(t, s.DropCooldownS)
	assert.Equal(t, 45, *s.DropCooldownS)

	require.NoError(t, settings.SetDropChannel(ctx, "guild", nil))
	s, err = settings.Get(ctx, "guild")
	require.NoError(t, err)
	assert.Nil(t, s.DropChannelID)
	assert.Equal(t, 45, *s.DropCooldownS)
}

func TestCatalogSearch(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	catalog := repositories.NewCatalogRepository(db.BunDB())

	_, err := catalog.Random(ctx)
	assert.True(t, repositories.IsNotFound(err))

	for _, c := range [][2]string{{"Frieren", "Fern"}, {"Frieren", "Stark"}, {"Spy x Family", "Anya Forger"}} {
		added, err := catalog.Add(ctx, c[0], c[1])
		require.NoError(t, err)
		assert.True(t, added)
	}
	added, err := catalog.Add(ctx, "Frieren", "Fern")
	require.NoError(t, err)
	assert.False(t, added)

	results, err := catalog.Search(ctx, "anya", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Anya Forger", results[0].Name)

	results, err = catalog.Search(ctx, "fern", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Fern", results[0].Name)

	random, err := catalog.Random(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, random.Name)
}

func TestCharacterStats(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	cards := repositories.NewCardRepository(db.BunDB())

	now := time.Now().UTC()
	require.NoError(t, cards.Insert(ctx, newCard("c000001", 1, 2, now)))
	require.NoError(t, cards.Insert(ctx, newCard("c000002", 2, 4, now)))
	require.NoError(t, cards.Insert(ctx, newCard("c000003", 3, 0, now)))
	_, err := cards.Claim(ctx, "c000001", "alice", 2)
	require.NoError(t, err)
	_, err = cards.Claim(ctx, "c000002", "bob", 4)
	require.NoError(t, err)

	alice := "alice"
	delay := 6.0
	burned := &models.Burn{
		UID: "b000001", SerialNumber: 9, Rarity: 1, Edition: 1, Series: "Frieren", CharacterName: "Fern",
		Condition: "poor", DroppedAt: now, GrabbedBy: &alice, GrabDelay: &delay, BurnedBy: alice, BurnedAt: now,
	}
	_, err = db.BunDB().NewInsert().Model(burned).Exec(ctx)
	require.NoError(t, err)

	stats, err := cards.CharacterStats(ctx, "Frieren", "Fern", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Generated)
	assert.Equal(t, 3, stats.Claimed)
	assert.Equal(t, 1, stats.Burned)
	assert.Equal(t, 2, stats.InCirculation)
	assert.InDelta(t, 75.0, stats.ClaimRate, 1e-9)
	require.NotNil(t, stats.AvgClaimTime)
	assert.InDelta(t, 4.0, *stats.AvgClaimTime, 1e-9)
	assert.Equal(t, map[int]int{2: 1, 4: 1}, stats.CirculationByRarity)
}

func TestCosmetics(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	cosmetics := repositories.NewCosmeticsRepository(db.BunDB())

	dye, err := cosmetics.GetDye(ctx, "abc1234")
	require.NoError(t, err)
	assert.Nil(t, dye)

	require.NoError(t, cosmetics.SetDye(ctx, &models.CardDye{CardUID: "abc1234", Hex: "#ff00aa", Name: "Sakura"}))
	dye, err = cosmetics.GetDye(ctx, "abc1234")
	require.NoError(t, err)
	require.NotNil(t, dye)
	assert.Equal(t, "#ff00aa", dye.Hex)
	assert.Equal(t, 8, dye.Thickness)

	require.NoError(t, cosmetics.SetDye(ctx, &models.CardDye{CardUID: "abc1234", Hex: "#00ff00", Thickness: 14}))
	dye, err = cosmetics.GetDye(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", dye.Hex)
	assert.Equal(t, "", dye.Name)
	assert.Equal(t, 14, dye.Thickness)

	require.NoError(t, cosmetics.TagCard(ctx, "alice", "Favs", "abc1234"))
	tags, err := cosmetics.TagsOf(ctx, "alice", "abc1234")
	require.NoError(t, err)
	assert.Equal(t, []string{"favs"}, tags)
}
