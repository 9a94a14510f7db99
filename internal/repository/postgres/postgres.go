// Package postgres implements the repository interfaces on PostgreSQL
// through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"

	"github.com/go-faster/errors"
	"github.com/lib/pq"

	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

//go:embed schema.sql
var schema string

// Migrate creates the tables when they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "apply schema")
	}
	return nil
}

// New returns repositories backed by db.
func New(db *sql.DB) *repository.Repositories {
	return &repository.Repositories{
		Products:   &ProductRepo{db: db},
		Categories: &CategoryRepo{db: db},
		Drops:      &DropRepo{db: db},
		Coupons:    &CouponRepo{db: db},
		Orders:     &OrderRepo{db: db},
		Spins:      &SpinRepo{db: db},
		Profiles:   &ProfileRepo{db: db},
		Carts:      &CartRepo{db: db},
	}
}

const uniqueViolation = "23505"

// mapErr translates driver errors into repository errors.
func mapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return repository.ErrConflict
	}
	return errors.Wrap(err, op)
}

// expectOne returns ErrNotFound when res touched no row.
func expectOne(res sql.Result, err error, op string) error {
	if err != nil {
		return mapErr(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, op)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// inTx runs fn in a transaction, committing when fn returns nil.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}
