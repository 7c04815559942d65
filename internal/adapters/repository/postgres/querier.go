package postgres

import (
	"context"
	"database/sql"

	"fileflow/internal/core/domain"

	"github.com/lib/pq"
)

// SQLQuerier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// so every repository works inside and outside a transaction.
type SQLQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// translateUnique maps a postgres unique violation to domain.ErrAlreadyExists.
// The violation is a first-class signal here, not a failure: idempotency
// checks lean on the constraint instead of a racy pre-read.
func translateUnique(err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return domain.ErrAlreadyExists
	}
	return err
}
