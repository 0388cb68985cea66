package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"blackvant/internal/models"
	"blackvant/internal/store"
	"blackvant/internal/validator"

	"github.com/google/uuid"
)

// ErrNotConfirmed fires when a storage key is linked before the upload
// handshake confirmed it, or when the key belongs to someone else.
var ErrNotConfirmed = errors.New("upload not confirmed")

type AttachmentReadWriter interface {
	Create(ctx context.Context, input store.AttachmentInput) error
	GetByStorageKey(ctx context.Context, storageKey string) (models.Attachment, error)
	Confirm(ctx context.Context, userID, storageKey string) (int64, error)
	LinkOwner(ctx context.Context, tx store.Execer, storageKey, ownerType, ownerID string) (int64, error)
}

// AttachmentService owns the signed-upload handshake and the linking of
// confirmed files to deposits, withdrawals and tickets. It never touches
// file bytes; the client PUTs directly against the presigned URL.
type AttachmentService struct {
	attachments   AttachmentReadWriter
	baseURL       string
	signingSecret string
	urlTTL        time.Duration
}

func NewAttachmentService(attachments AttachmentReadWriter, baseURL, signingSecret string) *AttachmentService {
	return &AttachmentService{
		attachments:   attachments,
		baseURL:       baseURL,
		signingSecret: signingSecret,
		urlTTL:        15 * time.Minute,
	}
}

type UploadGrant struct {
	UploadURL  string
	StorageKey string
}

func (s *AttachmentService) RequestUpload(ctx context.Context, userID, purpose, mimeType string, sizeBytes int64, originalName string) (UploadGrant, error) {
	if err := validator.ValidateUpload(mimeType, sizeBytes); err != nil {
		return UploadGrant{}, err
	}
	storageKey := fmt.Sprintf("uploads/%s/%s", userID, uuid.NewString())
	if err := s.attachments.Create(ctx, store.AttachmentInput{
		ID:           uuid.NewString(),
		UserID:       userID,
		StorageKey:   storageKey,
		Purpose:      purpose,
		MimeType:     mimeType,
		SizeBytes:    sizeBytes,
		OriginalName: originalName,
	}); err != nil {
		return UploadGrant{}, err
	}
	return UploadGrant{
		UploadURL:  s.presign(storageKey),
		StorageKey: storageKey,
	}, nil
}

func (s *AttachmentService) ConfirmUpload(ctx context.Context, userID, storageKey string) (string, error) {
	affected, err := s.attachments.Confirm(ctx, userID, storageKey)
	if err != nil {
		return "", err
	}
	attachment, err := s.attachments.GetByStorageKey(ctx, storageKey)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotConfirmed
		}
		return "", err
	}
	if affected == 0 {
		// confirm is idempotent for the owner; anything else is rejected
		if attachment.UserID != userID || attachment.Status != models.AttachmentConfirmed {
			return "", ErrNotConfirmed
		}
	}
	return attachment.ID, nil
}

// Link records that a confirmed upload belongs to an owning record. Runs
// inside the caller's transaction so a failed deposit create never leaves
// a dangling association.
func (s *AttachmentService) Link(ctx context.Context, tx store.Execer, userID, ownerType, ownerID, storageKey string) error {
	attachment, err := s.attachments.GetByStorageKey(ctx, storageKey)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotConfirmed
		}
		return err
	}
	if attachment.UserID != userID || attachment.Status != models.AttachmentConfirmed {
		return ErrNotConfirmed
	}
	affected, err := s.attachments.LinkOwner(ctx, tx, storageKey, ownerType, ownerID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotConfirmed
	}
	return nil
}

func (s *AttachmentService) presign(storageKey string) string {
	expires := time.Now().Add(s.urlTTL).Unix()
	mac := hmac.New(sha256.New, []byte(s.signingSecret))
	fmt.Fprintf(mac, "PUT\n%s\n%d", storageKey, expires)
	signature := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("%s/%s?expires=%d&signature=%s", s.baseURL, storageKey, expires, signature)
}
