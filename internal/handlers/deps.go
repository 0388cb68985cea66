package handlers

import (
	"context"
	"time"

	"blackvant/internal/models"
	"blackvant/internal/projector"
	"blackvant/internal/services"
	"blackvant/internal/store"
)

type UserStore interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetByExternalAuthID(ctx context.Context, externalAuthID string) (models.User, error)
	Create(ctx context.Context, id, externalAuthID, email, fullName, role string) error
}

type LedgerStore interface {
	EntriesForUser(ctx context.Context, userID string, from, to time.Time) ([]models.LedgerEntry, error)
}

type DepositStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.DepositRequest, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.DepositRequest, error)
}

type WithdrawalStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.WithdrawalRequest, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.WithdrawalRequest, error)
}

type TicketStore interface {
	Create(ctx context.Context, id, userID, subject, description string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.SupportTicket, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type RequestService interface {
	CreateDeposit(ctx context.Context, req services.CreateDepositRequest) (string, error)
	CreateWithdrawal(ctx context.Context, req services.CreateWithdrawalRequest) (string, error)
	DecideDeposit(ctx context.Context, adminID, requestID string, approve bool, reason *string) error
	DecideWithdrawal(ctx context.Context, adminID, requestID string, approve bool, reason *string) error
}

type AccrualService interface {
	PostProfit(ctx context.Context, userID string, amountMinor int64, accrualDate string) (bool, error)
	PostAdjustment(ctx context.Context, req services.AdjustmentRequest) (string, error)
}

type AttachmentService interface {
	RequestUpload(ctx context.Context, userID, purpose, mimeType string, sizeBytes int64, originalName string) (services.UploadGrant, error)
	ConfirmUpload(ctx context.Context, userID, storageKey string) (string, error)
}

type SettingsResolver interface {
	Resolve(ctx context.Context) (models.SystemSettings, error)
	Update(ctx context.Context, tx store.Execer, key, value string) error
}

type BalanceProjector interface {
	Summary(ctx context.Context, userID string, now time.Time) (projector.Summary, error)
	EquityHistory(ctx context.Context, userID string, days int, now time.Time) ([]projector.EquityPoint, error)
}

type CapitalLockRule interface {
	Evaluate(ctx context.Context, userID string, settings models.SystemSettings, now time.Time) (bool, *time.Time, error)
}
