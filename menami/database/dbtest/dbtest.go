// Package dbtest provides a throwaway in-memory store with the production schema.
package dbtest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/KristianLengyel/menami-bot/menami/database"
)

var seq atomic.Int64

func New(t testing.TB) *database.DB {
	t.Helper()

	name := fmt.Sprintf("menami_test_%d", seq.Add(1))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000&_txlock=immediate", name)

	ctx := context.Background()
	db, err := database.NewSQLiteDSN(ctx, dsn, 1)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.InitializeSchema(ctx); err != nil {
		t.Fatalf("initialize schema: %v", err)
	}
	return db
}
