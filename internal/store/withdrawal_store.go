package store

import (
	"context"
	"fmt"

	"blackvant/internal/models"
)

type WithdrawalStore struct {
	db DB
}

func NewWithdrawalStore(db DB) *WithdrawalStore {
	return &WithdrawalStore{db: db}
}

type WithdrawalInput struct {
	ID            string
	UserID        string
	AmountMinor   int64
	FeeMinor      int64
	Source        string
	TargetAddress string
	Method        string
}

func (s *WithdrawalStore) Create(ctx context.Context, tx Execer, input WithdrawalInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO withdrawal_requests (id, user_id, amount_minor, fee_minor, source, target_address, method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'PENDING')
	`, input.ID, input.UserID, input.AmountMinor, input.FeeMinor, input.Source, input.TargetAddress, input.Method)
	return err
}

func (s *WithdrawalStore) GetByID(ctx context.Context, id string) (models.WithdrawalRequest, error) {
	var row models.WithdrawalRequest
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, amount_minor, fee_minor, source, target_address, method, status, status_reason, created_at, decided_at, decided_by
		FROM withdrawal_requests
		WHERE id = $1
	`, id)
	return row, err
}

func (s *WithdrawalStore) GetForUpdate(ctx context.Context, tx Getter, id string) (models.WithdrawalRequest, error) {
	var row models.WithdrawalRequest
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, amount_minor, fee_minor, source, target_address, method, status, status_reason, created_at, decided_at, decided_by
		FROM withdrawal_requests
		WHERE id = $1
		FOR UPDATE
	`, id)
	return row, err
}

func (s *WithdrawalStore) MarkDecided(ctx context.Context, tx Execer, id, status string, reason *string, decidedBy string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE withdrawal_requests
		SET status = $1, status_reason = $2, decided_by = $3, decided_at = NOW()
		WHERE id = $4 AND status = 'PENDING'
	`, status, reason, decidedBy, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountRecentNonRejected counts withdrawals inside the frequency window,
// excluding REJECTED ones and, when excludeID is set, the request being
// decided (a request must not block its own approval).
func (s *WithdrawalStore) CountRecentNonRejected(ctx context.Context, userID string, windowDays int, excludeID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1)
		FROM withdrawal_requests
		WHERE user_id = $1
		  AND status != 'REJECTED'
		  AND created_at > NOW() - ($2 || ' days')::interval
		  AND id != $3
	`, userID, windowDays, excludeID)
	return count, err
}

func (s *WithdrawalStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.WithdrawalRequest, error) {
	var rows []models.WithdrawalRequest
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, amount_minor, fee_minor, source, target_address, method, status, status_reason, created_at, decided_at, decided_by
		FROM withdrawal_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return rows, err
}

func (s *WithdrawalStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.WithdrawalRequest, error) {
	query := `
		SELECT id, user_id, amount_minor, fee_minor, source, target_address, method, status, status_reason, created_at, decided_at, decided_by
		FROM withdrawal_requests
	`
	args := []any{}
	param := 1
	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", param)
		args = append(args, status)
		param++
	}
	query += fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d OFFSET $%d", param, param+1)
	args = append(args, limit, offset)
	var rows []models.WithdrawalRequest
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}
