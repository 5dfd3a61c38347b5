package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/KristianLengyel/menami-bot/menami/database/models"
)

type CardRepository interface {
	Insert(ctx context.Context, card *models.Card) error
	GetByUID(ctx context.Context, uid string) (*models.Card, error)
	GetLatestOwned(ctx context.Context, userID string) (*models.Card, error)
	ListOwned(ctx context.Context, userID string, offset, limit int) ([]*models.Card, int, error)
	UIDExists(ctx context.Context, uid string) (bool, error)

	// Serial lookups for one (series, character, edition) print run.
	SerialTaken(ctx context.Context, series, character string, edition, serial int) (bool, error)
	UsedSerials(ctx context.Context, series, character string, edition int) ([]int, error)

	// Claim sets grabbed_by and owned_by only while grabbed_by is still NULL.
	Claim(ctx context.Context, uid, claimant string, delay float64) (bool, error)
	Transfer(ctx context.Context, uid, from, to string) error

	// Transaction-scoped helpers. A nil idb runs against the pool.
	LockOwned(ctx context.Context, idb bun.IDB, uid, owner string) (*models.Card, error)
	UpdateGrade(ctx context.Context, idb bun.IDB, uid string, rarity int, condition string) error
	Delete(ctx context.Context, idb bun.IDB, uid string) error

	CharacterStats(ctx context.Context, series, character string, edition *int) (*CharacterStats, error)
}

type cardRepository struct {
	*BaseRepository
}

func NewCardRepository(db *bun.DB) CardRepository {
	return &cardRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *cardRepository) Insert(ctx context.Context, card *models.Card) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	// Unwrapped so callers can detect unique violations and retry.
	_, err := r.db.NewInsert().Model(card).Exec(ctx)
	return err
}

func (r *cardRepository) GetByUID(ctx context.Context, uid string) (*models.Card, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	card := new(models.Card)
	err := r.db.NewSelect().Model(card).Where("uid = ?", uid).Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "card", uid, err)
	}
	return card, nil
}

func (r *cardRepository) GetLatestOwned(ctx context.Context, userID string) (*models.Card, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	card := new(models.Card)
	err := r.db.NewSelect().
		Model(card).
		Where("owned_by = ?", userID).
		OrderExpr("dropped_at DESC, uid DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get_latest", "card", "latest of "+userID, err)
	}
	return card, nil
}

func (r *cardRepository) ListOwned(ctx context.Context, userID string, offset, limit int) ([]*models.Card, int, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var cards []*models.Card
	total, err := r.db.NewSelect().
		Model(&cards).
		Where("owned_by = ?", userID).
		OrderExpr("dropped_at DESC, uid DESC").
		Offset(offset).
		Limit(limit).
		ScanAndCount(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, 0, r.HandleError("list_owned", "card", err)
	}
	return cards, total, nil
}

// UIDExists checks live and burned cards, since a burned uid is never reissued.
func (r *cardRepository) UIDExists(ctx context.Context, uid string) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	exists, err := r.db.NewSelect().Model((*models.Card)(nil)).Where("uid = ?", uid).Exists(ctx)
	if err != nil {
		return false, r.HandleError("uid_exists", "card", err)
	}
	if exists {
		return true, nil
	}
	exists, err = r.db.NewSelect().Model((*models.Burn)(nil)).Where("uid = ?", uid).Exists(ctx)
	if err != nil {
		return false, r.HandleError("uid_exists", "burn", err)
	}
	return exists, nil
}

func (r *cardRepository) SerialTaken(ctx context.Context, series, character string, edition, serial int) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	exists, err := r.db.NewSelect().
		Model((*models.Card)(nil)).
		Where("series = ?", series).
		Where("character_name = ?", character).
		Where("edition = ?", edition).
		Where("serial_number = ?", serial).
		Exists(ctx)
	if err != nil {
		return false, r.HandleError("serial_taken", "card", err)
	}
	return exists, nil
}

func (r *cardRepository) UsedSerials(ctx context.Context, series, character string, edition int) ([]int, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var serials []int
	err := r.db.NewSelect().
		Model((*models.Card)(nil)).
		Column("serial_number").
		Where("series = ?", series).
		Where("character_name = ?", character).
		Where("edition = ?", edition).
		OrderExpr("serial_number ASC").
		Scan(ctx, &serials)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, r.HandleError("used_serials", "card", err)
	}
	return serials, nil
}

func (r *cardRepository) Claim(ctx context.Context, uid, claimant string, delay float64) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	res, err := r.db.NewUpdate().
		Model((*models.Card)(nil)).
		Set("grabbed_by = ?", claimant).
		Set("owned_by = ?", claimant).
		Set("grab_delay = ?", delay).
		Where("uid = ?", uid).
		Where("grabbed_by IS NULL").
		Exec(ctx)
	if err != nil {
		return false, r.HandleErrorWithID("claim", "card", uid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, r.HandleErrorWithID("claim", "card", uid, err)
	}

	slog.Debug("Claim attempted",
		slog.String("type", "db"),
		slog.String("uid", uid),
		slog.String("claimant", claimant),
		slog.Bool("won", n == 1))
	return n == 1, nil
}

func (r *cardRepository) Transfer(ctx context.Context, uid, from, to string) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	res, err := r.db.NewUpdate().
		Model((*models.Card)(nil)).
		Set("owned_by = ?", to).
		Where("uid = ?", uid).
		Where("owned_by = ?", from).
		Exec(ctx)
	if err != nil {
		return r.HandleErrorWithID("transfer", "card", uid, err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	return r.missingOrConflict(ctx, r.db, uid)
}

// LockOwned claims the card row for the enclosing transaction with a no-op
// guarded update, then reads it back. Postgres takes the row lock and SQLite
// the write lock, so the ownership check holds until commit.
func (r *cardRepository) LockOwned(ctx context.Context, idb bun.IDB, uid, owner string) (*models.Card, error) {
	db := r.idb(idb)

	res, err := db.NewUpdate().
		Model((*models.Card)(nil)).
		Set("owned_by = owned_by").
		Where("uid = ?", uid).
		Where("owned_by = ?", owner).
		Exec(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("lock", "card", uid, err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return nil, r.missingOrConflict(ctx, db, uid)
	}

	card := new(models.Card)
	if err := db.NewSelect().Model(card).Where("uid = ?", uid).Scan(ctx); err != nil {
		return nil, r.HandleErrorWithID("lock", "card", uid, err)
	}
	return card, nil
}

func (r *cardRepository) missingOrConflict(ctx context.Context, db bun.IDB, uid string) error {
	exists, err := db.NewSelect().Model((*models.Card)(nil)).Where("uid = ?", uid).Exists(ctx)
	if err != nil {
		return r.HandleErrorWithID("lookup", "card", uid, err)
	}
	if !exists {
		return &NotFoundError{Entity: "card", ID: uid}
	}
	return &ConflictError{Entity: "card", Field: "owned_by", Value: uid}
}

func (r *cardRepository) UpdateGrade(ctx context.Context, idb bun.IDB, uid string, rarity int, condition string) error {
	_, err := r.idb(idb).NewUpdate().
		Model((*models.Card)(nil)).
		Set("rarity = ?", rarity).
		Set("card_condition = ?", condition).
		Where("uid = ?", uid).
		Exec(ctx)
	return r.HandleErrorWithID("update_grade", "card", uid, err)
}

// Delete removes the card and its cosmetic rows.
func (r *cardRepository) Delete(ctx context.Context, idb bun.IDB, uid string) error {
	db := r.idb(idb)

	if _, err := db.NewDelete().Model((*models.CardTag)(nil)).Where("card_uid = ?", uid).Exec(ctx); err != nil {
		return r.HandleErrorWithID("delete", "card_tag", uid, err)
	}
	if _, err := db.NewDelete().Model((*models.CardDye)(nil)).Where("card_uid = ?", uid).Exec(ctx); err != nil {
		return r.HandleErrorWithID("delete", "card_dye", uid, err)
	}
	res, err := db.NewDelete().Model((*models.Card)(nil)).Where("uid = ?", uid).Exec(ctx)
	if err != nil {
		return r.HandleErrorWithID("delete", "card", uid, err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return &NotFoundError{Entity: "card", ID: uid}
	}
	return nil
}
