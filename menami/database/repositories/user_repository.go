package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/KristianLengyel/menami-bot/menami/database/models"
)

// dustColumns maps a card condition to its balance column.
var dustColumns = map[string]string{
	"damaged":   "dust_damaged",
	"poor":      "dust_poor",
	"good":      "dust_good",
	"excellent": "dust_excellent",
	"mint":      "dust_mint",
}

func DustColumn(condition string) (string, bool) {
	col, ok := dustColumns[condition]
	return col, ok
}

// Credit is a set of balance increments applied in one statement.
type Credit struct {
	Coins int64
	Gems  int64
	Dust  map[string]int64 // condition -> amount
}

type UserRepository interface {
	Ensure(ctx context.Context, idb bun.IDB, userID string) error
	Get(ctx context.Context, userID string) (*models.User, error)
	GetTx(ctx context.Context, idb bun.IDB, userID string) (*models.User, error)
	Credit(ctx context.Context, idb bun.IDB, userID string, c Credit) error
	// Debit subtracts coins and dust of one condition only when both balances
	// cover it. It reports false and changes nothing otherwise.
	Debit(ctx context.Context, idb bun.IDB, userID string, coins int64, dustCondition string, dust int64) (bool, error)
}

type userRepository struct {
	*BaseRepository
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *userRepository) Ensure(ctx context.Context, idb bun.IDB, userID string) error {
	_, err := r.idb(idb).NewInsert().
		Model(&models.User{UserID: userID, CreatedAt: time.Now().UTC()}).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	return r.HandleErrorWithID("ensure", "user", userID, err)
}

func (r *userRepository) Get(ctx context.Context, userID string) (*models.User, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()
	return r.GetTx(ctx, nil, userID)
}

func (r *userRepository) GetTx(ctx context.Context, idb bun.IDB, userID string) (*models.User, error) {
	user := new(models.User)
	err := r.idb(idb).NewSelect().Model(user).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "user", userID, err)
	}
	return user, nil
}

func (r *userRepository) Credit(ctx context.Context, idb bun.IDB, userID string, c Credit) error {
	q := r.idb(idb).NewUpdate().
		Model((*models.User)(nil)).
		Set("coins = coins + ?", c.Coins).
		Set("gems = gems + ?", c.Gems).
		Where("user_id = ?", userID)
	for condition, amount := range c.Dust {
		col, ok := dustColumns[condition]
		if !ok {
			return fmt.Errorf("unknown dust condition %q", condition)
		}
		q = q.Set("? = ? + ?", bun.Ident(col), bun.Ident(col), amount)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return r.HandleErrorWithID("credit", "user", userID, err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return &NotFoundError{Entity: "user", ID: userID}
	}
	return nil
}

func (r *userRepository) Debit(ctx context.Context, idb bun.IDB, userID string, coins int64, dustCondition string, dust int64) (bool, error) {
	col, ok := dustColumns[dustCondition]
	if !ok {
		return false, fmt.Errorf("unknown dust condition %q", dustCondition)
	}

	res, err := r.idb(idb).NewUpdate().
		Model((*models.User)(nil)).
		Set("coins = coins - ?", coins).
		Set("? = ? - ?", bun.Ident(col), bun.Ident(col), dust).
		Where("user_id = ?", userID).
		Where("coins >= ?", coins).
		Where("? >= ?", bun.Ident(col), dust).
		Exec(ctx)
	if err != nil {
		return false, r.HandleErrorWithID("debit", "user", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, r.HandleErrorWithID("debit", "user", userID, err)
	}
	return n == 1, nil
}
