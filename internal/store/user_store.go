package store

import (
	"context"

	"blackvant/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByExternalAuthID(ctx context.Context, externalAuthID string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, external_auth_id, email, full_name, role, disabled, created_at
		FROM users
		WHERE external_auth_id = $1
	`, externalAuthID)
	return row, err
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, external_auth_id, email, full_name, role, disabled, created_at
		FROM users
		WHERE id = $1
	`, userID)
	return row, err
}

// Create provisions the internal record on first authenticated contact.
// ON CONFLICT keeps concurrent first requests from the same identity safe.
func (s *UserStore) Create(ctx context.Context, id, externalAuthID, email, fullName, role string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, external_auth_id, email, full_name, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_auth_id) DO NOTHING
	`, id, externalAuthID, email, fullName, role)
	return err
}

func (s *UserStore) SetRole(ctx context.Context, tx Execer, userID, role string) error {
	_, err := tx.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, userID)
	return err
}

// SetDisabled soft-disables an account; user rows are never deleted.
func (s *UserStore) SetDisabled(ctx context.Context, tx Execer, userID string, disabled bool) error {
	_, err := tx.ExecContext(ctx, `UPDATE users SET disabled = $1 WHERE id = $2`, disabled, userID)
	return err
}
