package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blackvant/internal/auth"
	"blackvant/internal/config"
	"blackvant/internal/middleware"
	"blackvant/internal/models"
	"blackvant/internal/projector"
	"blackvant/internal/services"
	"blackvant/internal/store"
	"blackvant/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	users map[string]models.User
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	for _, user := range s.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return models.User{}, sql.ErrNoRows
}

func (s stubUserStore) GetByExternalAuthID(ctx context.Context, externalAuthID string) (models.User, error) {
	user, ok := s.users[externalAuthID]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (s stubUserStore) Create(ctx context.Context, id, externalAuthID, email, fullName, role string) error {
	s.users[externalAuthID] = models.User{ID: id, ExternalAuthID: externalAuthID, Email: email, FullName: fullName, Role: role}
	return nil
}

type stubLedgerStore struct {
	entriesFn func(ctx context.Context, userID string, from, to time.Time) ([]models.LedgerEntry, error)
}

func (s stubLedgerStore) EntriesForUser(ctx context.Context, userID string, from, to time.Time) ([]models.LedgerEntry, error) {
	if s.entriesFn == nil {
		return nil, nil
	}
	return s.entriesFn(ctx, userID, from, to)
}

type stubDepositStore struct {
	listByUserFn   func(ctx context.Context, userID string, limit, offset int) ([]models.DepositRequest, error)
	listByStatusFn func(ctx context.Context, status string, limit, offset int) ([]models.DepositRequest, error)
}

func (s stubDepositStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.DepositRequest, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

func (s stubDepositStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.DepositRequest, error) {
	if s.listByStatusFn == nil {
		return nil, nil
	}
	return s.listByStatusFn(ctx, status, limit, offset)
}

type stubWithdrawalStore struct {
	listByUserFn   func(ctx context.Context, userID string, limit, offset int) ([]models.WithdrawalRequest, error)
	listByStatusFn func(ctx context.Context, status string, limit, offset int) ([]models.WithdrawalRequest, error)
}

func (s stubWithdrawalStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.WithdrawalRequest, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

func (s stubWithdrawalStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.WithdrawalRequest, error) {
	if s.listByStatusFn == nil {
		return nil, nil
	}
	return s.listByStatusFn(ctx, status, limit, offset)
}

type stubTicketStore struct {
	createFn     func(ctx context.Context, id, userID, subject, description string) error
	listByUserFn func(ctx context.Context, userID string, limit, offset int) ([]models.SupportTicket, error)
}

func (s stubTicketStore) Create(ctx context.Context, id, userID, subject, description string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, id, userID, subject, description)
}

func (s stubTicketStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.SupportTicket, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listFn func(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubRequestService struct {
	createDepositFn    func(ctx context.Context, req services.CreateDepositRequest) (string, error)
	createWithdrawalFn func(ctx context.Context, req services.CreateWithdrawalRequest) (string, error)
	decideDepositFn    func(ctx context.Context, adminID, requestID string, approve bool, reason *string) error
	decideWithdrawalFn func(ctx context.Context, adminID, requestID string, approve bool, reason *string) error
}

func (s stubRequestService) CreateDeposit(ctx context.Context, req services.CreateDepositRequest) (string, error) {
	if s.createDepositFn == nil {
		return "d1", nil
	}
	return s.createDepositFn(ctx, req)
}

func (s stubRequestService) CreateWithdrawal(ctx context.Context, req services.CreateWithdrawalRequest) (string, error) {
	if s.createWithdrawalFn == nil {
		return "w1", nil
	}
	return s.createWithdrawalFn(ctx, req)
}

func (s stubRequestService) DecideDeposit(ctx context.Context, adminID, requestID string, approve bool, reason *string) error {
	if s.decideDepositFn == nil {
		return nil
	}
	return s.decideDepositFn(ctx, adminID, requestID, approve, reason)
}

func (s stubRequestService) DecideWithdrawal(ctx context.Context, adminID, requestID string, approve bool, reason *string) error {
	if s.decideWithdrawalFn == nil {
		return nil
	}
	return s.decideWithdrawalFn(ctx, adminID, requestID, approve, reason)
}

type stubAccrualService struct {
	postProfitFn     func(ctx context.Context, userID string, amountMinor int64, accrualDate string) (bool, error)
	postAdjustmentFn func(ctx context.Context, req services.AdjustmentRequest) (string, error)
}

func (s stubAccrualService) PostProfit(ctx context.Context, userID string, amountMinor int64, accrualDate string) (bool, error) {
	if s.postProfitFn == nil {
		return true, nil
	}
	return s.postProfitFn(ctx, userID, amountMinor, accrualDate)
}

func (s stubAccrualService) PostAdjustment(ctx context.Context, req services.AdjustmentRequest) (string, error) {
	if s.postAdjustmentFn == nil {
		return "adj1", nil
	}
	return s.postAdjustmentFn(ctx, req)
}

type stubAttachmentService struct {
	requestUploadFn func(ctx context.Context, userID, purpose, mimeType string, sizeBytes int64, originalName string) (services.UploadGrant, error)
	confirmUploadFn func(ctx context.Context, userID, storageKey string) (string, error)
}

func (s stubAttachmentService) RequestUpload(ctx context.Context, userID, purpose, mimeType string, sizeBytes int64, originalName string) (services.UploadGrant, error) {
	if s.requestUploadFn == nil {
		return services.UploadGrant{UploadURL: "https://uploads.example.com/k?signature=x", StorageKey: "k"}, nil
	}
	return s.requestUploadFn(ctx, userID, purpose, mimeType, sizeBytes, originalName)
}

func (s stubAttachmentService) ConfirmUpload(ctx context.Context, userID, storageKey string) (string, error) {
	if s.confirmUploadFn == nil {
		return "a1", nil
	}
	return s.confirmUploadFn(ctx, userID, storageKey)
}

type stubSettingsResolver struct {
	settings models.SystemSettings
	updateFn func(ctx context.Context, tx store.Execer, key, value string) error
}

func (s stubSettingsResolver) Resolve(ctx context.Context) (models.SystemSettings, error) {
	return s.settings, nil
}

func (s stubSettingsResolver) Update(ctx context.Context, tx store.Execer, key, value string) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, key, value)
}

type stubProjector struct {
	summaryFn func(ctx context.Context, userID string, now time.Time) (projector.Summary, error)
	historyFn func(ctx context.Context, userID string, days int, now time.Time) ([]projector.EquityPoint, error)
}

func (s stubProjector) Summary(ctx context.Context, userID string, now time.Time) (projector.Summary, error) {
	if s.summaryFn == nil {
		return projector.Summary{}, nil
	}
	return s.summaryFn(ctx, userID, now)
}

func (s stubProjector) EquityHistory(ctx context.Context, userID string, days int, now time.Time) ([]projector.EquityPoint, error) {
	if s.historyFn == nil {
		return nil, nil
	}
	return s.historyFn(ctx, userID, days, now)
}

type stubLockRule struct {
	locked   bool
	unlockAt *time.Time
	err      error
}

func (s stubLockRule) Evaluate(ctx context.Context, userID string, settings models.SystemSettings, now time.Time) (bool, *time.Time, error) {
	return s.locked, s.unlockAt, s.err
}

type testHandlerOptions struct {
	users       UserStore
	ledger      LedgerStore
	deposits    DepositStore
	withdrawals WithdrawalStore
	tickets     TicketStore
	audit       AuditStore
	requests    RequestService
	accruals    AccrualService
	attachments AttachmentService
	settings    SettingsResolver
	projector   BalanceProjector
	lockRule    CapitalLockRule
}

func newTestHandler(opts testHandlerOptions) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	if opts.users == nil {
		opts.users = stubUserStore{users: map[string]models.User{}}
	}
	if opts.ledger == nil {
		opts.ledger = stubLedgerStore{}
	}
	if opts.deposits == nil {
		opts.deposits = stubDepositStore{}
	}
	if opts.withdrawals == nil {
		opts.withdrawals = stubWithdrawalStore{}
	}
	if opts.tickets == nil {
		opts.tickets = stubTicketStore{}
	}
	if opts.audit == nil {
		opts.audit = stubAuditStore{}
	}
	if opts.requests == nil {
		opts.requests = stubRequestService{}
	}
	if opts.accruals == nil {
		opts.accruals = stubAccrualService{}
	}
	if opts.attachments == nil {
		opts.attachments = stubAttachmentService{}
	}
	if opts.settings == nil {
		opts.settings = stubSettingsResolver{}
	}
	if opts.projector == nil {
		opts.projector = stubProjector{}
	}
	if opts.lockRule == nil {
		opts.lockRule = stubLockRule{}
	}
	return New(fakeTxRunner{}, cfg, opts.users, opts.ledger, opts.deposits, opts.withdrawals, opts.tickets, opts.audit, opts.requests, opts.accruals, opts.attachments, opts.settings, opts.projector, opts.lockRule, websocket.NewHub(), zerolog.Nop())
}

func authedDirectory(userID, role string) stubUserStore {
	return stubUserStore{users: map[string]models.User{
		"ext-" + userID: {ID: userID, ExternalAuthID: "ext-" + userID, Email: "user@example.com", Role: role},
	}}
}

func serveAuthed(t *testing.T, handler *Handler, users UserStore, externalID string, req *http.Request, endpoint http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("secret", externalID, "user@example.com", "Test User", time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	middleware.Auth("secret", users, "")(endpoint).ServeHTTP(rr, req)
	return rr
}
