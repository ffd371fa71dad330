package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// withSession runs fn inside a transaction on a pooled connection. The
// transaction commits when fn returns nil and rolls back otherwise; the
// connection goes back to the pool on every path.
func withSession(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, pool, fn)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
