package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blackvant/internal/models"

	"github.com/lib/pq"
)

// ErrDuplicateReference fires when an entry already exists for the same
// (reference_type, reference_id) pair. This is what makes approval
// idempotent under retried admin actions and double-clicks, across
// concurrent service instances.
var ErrDuplicateReference = errors.New("ledger entry already exists for reference")

type LedgerStore struct {
	db DB
}

func NewLedgerStore(db DB) *LedgerStore {
	return &LedgerStore{db: db}
}

type LedgerEntryInput struct {
	ID            string
	UserID        string
	AmountMinor   int64
	Direction     string
	ReferenceType string
	ReferenceID   string
	Pool          string
}

// Append inserts one immutable entry. The running balance snapshot is
// computed inside the caller's transaction so it always matches the fold
// over prior entries.
func (s *LedgerStore) Append(ctx context.Context, tx Tx, input LedgerEntryInput) error {
	var current int64
	err := tx.GetContext(ctx, &current, `
		SELECT COALESCE(SUM(CASE WHEN direction = 'CREDIT' THEN amount_minor ELSE -amount_minor END), 0)
		FROM ledger_entries
		WHERE user_id = $1
	`, input.UserID)
	if err != nil {
		return err
	}
	running := current + input.AmountMinor
	if input.Direction == models.DirectionDebit {
		running = current - input.AmountMinor
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, user_id, amount_minor, direction, reference_type, reference_id, pool, running_balance_minor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, input.ID, input.UserID, input.AmountMinor, input.Direction, input.ReferenceType, input.ReferenceID, input.Pool, running)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

// EntriesForUser returns entries ascending by created_at with a stable id
// tie-break. Zero time bounds mean unbounded.
func (s *LedgerStore) EntriesForUser(ctx context.Context, userID string, from, to time.Time) ([]models.LedgerEntry, error) {
	query := `
		SELECT id, user_id, amount_minor, direction, reference_type, reference_id, pool, running_balance_minor, created_at
		FROM ledger_entries
		WHERE user_id = $1
	`
	args := []any{userID}
	param := 2
	if !from.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", param)
		args = append(args, from)
		param++
	}
	if !to.IsZero() {
		query += fmt.Sprintf(" AND created_at < $%d", param)
		args = append(args, to)
	}
	query += " ORDER BY created_at ASC, id ASC"
	var rows []models.LedgerEntry
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// HasEntryForReference reports whether a reference has already been posted.
func (s *LedgerStore) HasEntryForReference(ctx context.Context, referenceType, referenceID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1)
		FROM ledger_entries
		WHERE reference_type = $1 AND reference_id = $2
	`, referenceType, referenceID)
	return count > 0, err
}

// LatestDepositCredit returns the created_at of the user's most recent
// approved deposit entry; callers use it for capital-lock evaluation.
func (s *LedgerStore) LatestDepositCredit(ctx context.Context, userID string) (time.Time, error) {
	var at time.Time
	err := s.db.GetContext(ctx, &at, `
		SELECT created_at
		FROM ledger_entries
		WHERE user_id = $1 AND reference_type = 'DEPOSIT' AND direction = 'CREDIT'
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userID)
	return at, err
}
