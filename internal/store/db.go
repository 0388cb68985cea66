package store

import (
	"context"
	"database/sql"
)

// Stores accept these narrow interfaces instead of *sqlx.DB so the same
// query methods run inside a decide() transaction (*sqlx.Tx) or against
// the pool directly.

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Execer
	Getter
	Selecter
}

// Tx is the surface ledger appends and request decisions need inside a
// transaction: row locks via Get, writes via Exec.
type Tx interface {
	Execer
	Getter
}
