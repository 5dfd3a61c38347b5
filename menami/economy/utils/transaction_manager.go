package utils

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/KristianLengyel/menami-bot/menami/config"
	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
	"github.com/KristianLengyel/menami-bot/menami/economy"
)

type TransactionOptions struct {
	IsolationLevel sql.IsolationLevel
	Timeout        time.Duration
}

// EconomicTransactionManager runs the multi-statement economy operations.
type EconomicTransactionManager struct {
	db    *bun.DB
	users repositories.UserRepository
}

func NewEconomicTransactionManager(db *bun.DB, users repositories.UserRepository) *EconomicTransactionManager {
	return &EconomicTransactionManager{db: db, users: users}
}

// StandardTransactionOptions relies on guarded updates rather than isolation,
// so the driver default is enough on both backends.
func StandardTransactionOptions() *TransactionOptions {
	return &TransactionOptions{
		IsolationLevel: sql.LevelDefault,
		Timeout:        config.TransactionTimeout,
	}
}

// WithTransaction commits only when fn returns nil. Any error, or a panic in
// fn, rolls every statement back.
func (etm *EconomicTransactionManager) WithTransaction(ctx context.Context, opts *TransactionOptions, fn func(context.Context, bun.Tx) error) error {
	if opts == nil {
		opts = StandardTransactionOptions()
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	tx, err := etm.db.BeginTx(timeoutCtx, &sql.TxOptions{Isolation: opts.IsolationLevel})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(timeoutCtx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DebitOrShortfall takes coins and dust in one guarded statement. When the
// balances do not cover it, the returned error lists what is missing.
func (etm *EconomicTransactionManager) DebitOrShortfall(ctx context.Context, tx bun.IDB, userID string, coins int64, dustCondition string, dust int64) error {
	ok, err := etm.users.Debit(ctx, tx, userID, coins, dustCondition, dust)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	user, err := etm.users.GetTx(ctx, tx, userID)
	if err != nil {
		return err
	}
	var shortfalls []economy.Shortfall
	if user.Coins < coins {
		shortfalls = append(shortfalls, economy.Shortfall{Resource: "coins", Need: coins, Have: user.Coins})
	}
	if have := user.Dust(dustCondition); have < dust {
		shortfalls = append(shortfalls, economy.Shortfall{Resource: dustCondition + " dust", Need: dust, Have: have})
	}
	return &economy.InsufficientResourcesError{Shortfalls: shortfalls}
}

// Users exposes the repository used inside transactions.
func (etm *EconomicTransactionManager) Users() repositories.UserRepository {
	return etm.users
}

// CardError maps a card lock failure to the economy taxonomy.
func CardError(uid string, err error) error {
	switch {
	case repositories.IsNotFound(err):
		return fmt.Errorf("%w: card %s", economy.ErrNotFound, uid)
	case repositories.IsConflict(err):
		return fmt.Errorf("%w: %s", economy.ErrNotOwner, uid)
	default:
		return err
	}
}
