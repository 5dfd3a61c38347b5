package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KristianLengyel/menami-bot/menami/database"
	"github.com/KristianLengyel/menami-bot/menami/database/dbtest"
	"github.com/KristianLengyel/menami-bot/menami/database/models"
)

func TestInitializeSchemaIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	require.NoError(t, db.InitializeSchema(context.Background()))

	var meta models.Meta
	err := db.BunDB().NewSelect().Model(&meta).Where("key = ?", "schema_version").Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", meta.Value)
}

func TestUniquePrintIndex(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	card := func(uid string) *models.Card {
		return &models.Card{
			UID: uid, SerialNumber: 7, Edition: 1, Series: "S", CharacterName: "C",
			Condition: "good", DroppedAt: time.Now().UTC(), DroppedIn: "ch", DroppedBy: "u",
		}
	}

	_, err := db.BunDB().NewInsert().Model(card("aaaaaaa")).Exec(ctx)
	require.NoError(t, err)

	_, err = db.BunDB().NewInsert().Model(card("bbbbbbb")).Exec(ctx)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	_, err = db.BunDB().NewInsert().Model(card("aaaaaaa")).Exec(ctx)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestIsUniqueViolationIgnoresOtherErrors(t *testing.T) {
	assert.False(t, database.IsUniqueViolation(nil))
	assert.False(t, database.IsUniqueViolation(context.Canceled))
}
