package store

import (
	"context"

	"blackvant/internal/models"
)

type AttachmentStore struct {
	db DB
}

func NewAttachmentStore(db DB) *AttachmentStore {
	return &AttachmentStore{db: db}
}

type AttachmentInput struct {
	ID           string
	UserID       string
	StorageKey   string
	Purpose      string
	MimeType     string
	SizeBytes    int64
	OriginalName string
}

func (s *AttachmentStore) Create(ctx context.Context, input AttachmentInput) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attachments (id, user_id, storage_key, purpose, mime_type, size_bytes, original_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'PENDING')
	`, input.ID, input.UserID, input.StorageKey, input.Purpose, input.MimeType, input.SizeBytes, input.OriginalName)
	return err
}

func (s *AttachmentStore) GetByStorageKey(ctx context.Context, storageKey string) (models.Attachment, error) {
	var row models.Attachment
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, storage_key, purpose, mime_type, size_bytes, original_name, status, owner_type, owner_id, created_at, confirmed_at
		FROM attachments
		WHERE storage_key = $1
	`, storageKey)
	return row, err
}

// Confirm flips a pending upload to CONFIRMED. Returns rows affected so
// callers can distinguish "already confirmed" from "unknown key".
func (s *AttachmentStore) Confirm(ctx context.Context, userID, storageKey string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE attachments
		SET status = 'CONFIRMED', confirmed_at = NOW()
		WHERE storage_key = $1 AND user_id = $2 AND status = 'PENDING'
	`, storageKey, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *AttachmentStore) LinkOwner(ctx context.Context, tx Execer, storageKey, ownerType, ownerID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE attachments
		SET owner_type = $1, owner_id = $2
		WHERE storage_key = $3 AND status = 'CONFIRMED'
	`, ownerType, ownerID, storageKey)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
