package store

import (
	"context"

	"blackvant/internal/models"
)

type TicketStore struct {
	db DB
}

func NewTicketStore(db DB) *TicketStore {
	return &TicketStore{db: db}
}

func (s *TicketStore) Create(ctx context.Context, id, userID, subject, description string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO support_tickets (id, user_id, subject, description, status)
		VALUES ($1, $2, $3, $4, 'OPEN')
	`, id, userID, subject, description)
	return err
}

func (s *TicketStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.SupportTicket, error) {
	var rows []models.SupportTicket
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, subject, description, status, created_at
		FROM support_tickets
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return rows, err
}
