package tx

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dErrors "malpot/pkg/domain-errors"
	"malpot/pkg/platform/sentinel"
)

// SQL runs transactions on a database/sql pool.
type SQL struct {
	db      *sql.DB
	timeout time.Duration
}

type SQLOption func(*SQL)

// WithTimeout overrides the default transaction deadline.
func WithTimeout(d time.Duration) SQLOption {
	return func(s *SQL) {
		s.timeout = d
	}
}

func NewSQL(db *sql.DB, opts ...SQLOption) *SQL {
	s := &SQL{db: db, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SQL) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}

	ctx, cancel := withDefaultDeadline(ctx, s.timeout)
	defer cancel()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// View runs fn in a read-only REPEATABLE READ transaction so multi-row reads
// see one snapshot.
func (s *SQL) View(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "read aborted: context cancelled")
	}
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}

	ctx, cancel := withDefaultDeadline(ctx, s.timeout)
	defer cancel()

	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin read transaction: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit read transaction: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// Within runs fn on the transaction carried by ctx, or opens one on db for the
// duration of fn. Stores use it for read-modify-write operations that must be
// atomic even when the caller did not start a transaction.
func Within(ctx context.Context, db *sql.DB, fn func(ctx context.Context, q DBTX) error) error {
	if tx, ok := From(ctx); ok {
		return fn(ctx, tx)
	}
	return NewSQL(db).RunInTx(ctx, func(ctx context.Context) error {
		tx, _ := From(ctx)
		return fn(ctx, tx)
	})
}
