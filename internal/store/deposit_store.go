package store

import (
	"context"
	"fmt"

	"blackvant/internal/models"
)

type DepositStore struct {
	db DB
}

func NewDepositStore(db DB) *DepositStore {
	return &DepositStore{db: db}
}

type DepositInput struct {
	ID          string
	UserID      string
	AmountMinor int64
	Method      string
	ProofKey    *string
}

func (s *DepositStore) Create(ctx context.Context, tx Execer, input DepositInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO deposit_requests (id, user_id, amount_minor, method, proof_key, status)
		VALUES ($1, $2, $3, $4, $5, 'PENDING')
	`, input.ID, input.UserID, input.AmountMinor, input.Method, input.ProofKey)
	return err
}

func (s *DepositStore) GetByID(ctx context.Context, id string) (models.DepositRequest, error) {
	var row models.DepositRequest
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, amount_minor, method, proof_key, status, status_reason, created_at, decided_at, decided_by
		FROM deposit_requests
		WHERE id = $1
	`, id)
	return row, err
}

// GetForUpdate locks the request row for the duration of the deciding
// transaction so two admins cannot race the same decision.
func (s *DepositStore) GetForUpdate(ctx context.Context, tx Getter, id string) (models.DepositRequest, error) {
	var row models.DepositRequest
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, amount_minor, method, proof_key, status, status_reason, created_at, decided_at, decided_by
		FROM deposit_requests
		WHERE id = $1
		FOR UPDATE
	`, id)
	return row, err
}

func (s *DepositStore) MarkDecided(ctx context.Context, tx Execer, id, status string, reason *string, decidedBy string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE deposit_requests
		SET status = $1, status_reason = $2, decided_by = $3, decided_at = NOW()
		WHERE id = $4 AND status = 'PENDING'
	`, status, reason, decidedBy, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *DepositStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.DepositRequest, error) {
	var rows []models.DepositRequest
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, amount_minor, method, proof_key, status, status_reason, created_at, decided_at, decided_by
		FROM deposit_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return rows, err
}

func (s *DepositStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.DepositRequest, error) {
	query := `
		SELECT id, user_id, amount_minor, method, proof_key, status, status_reason, created_at, decided_at, decided_by
		FROM deposit_requests
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
	var rows []models.DepositRequest
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}
