package services

import (
	"context"
	"time"

	"blackvant/internal/models"
	"blackvant/internal/projector"
	"blackvant/internal/store"
	"blackvant/internal/websocket"

	"github.com/jmoiron/sqlx"
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

type stubLedger struct {
	appendFn              func(ctx context.Context, tx store.Tx, input store.LedgerEntryInput) error
	latestDepositCreditFn func(ctx context.Context, userID string) (time.Time, error)
}

func (s stubLedger) Append(ctx context.Context, tx store.Tx, input store.LedgerEntryInput) error {
	if s.appendFn == nil {
		return nil
	}
	return s.appendFn(ctx, tx, input)
}

func (s stubLedger) LatestDepositCredit(ctx context.Context, userID string) (time.Time, error) {
	if s.latestDepositCreditFn == nil {
		return time.Time{}, nil
	}
	return s.latestDepositCreditFn(ctx, userID)
}

type stubDeposits struct {
	createFn       func(ctx context.Context, tx store.Execer, input store.DepositInput) error
	getForUpdateFn func(ctx context.Context, tx store.Getter, id string) (models.DepositRequest, error)
	markDecidedFn  func(ctx context.Context, tx store.Execer, id, status string, reason *string, decidedBy string) (int64, error)
}

func (s stubDeposits) Create(ctx context.Context, tx store.Execer, input store.DepositInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubDeposits) GetForUpdate(ctx context.Context, tx store.Getter, id string) (models.DepositRequest, error) {
	if s.getForUpdateFn == nil {
		return models.DepositRequest{}, nil
	}
	return s.getForUpdateFn(ctx, tx, id)
}

func (s stubDeposits) MarkDecided(ctx context.Context, tx store.Execer, id, status string, reason *string, decidedBy string) (int64, error) {
	if s.markDecidedFn == nil {
		return 1, nil
	}
	return s.markDecidedFn(ctx, tx, id, status, reason, decidedBy)
}

type stubWithdrawals struct {
	createFn       func(ctx context.Context, tx store.Execer, input store.WithdrawalInput) error
	getForUpdateFn func(ctx context.Context, tx store.Getter, id string) (models.WithdrawalRequest, error)
	markDecidedFn  func(ctx context.Context, tx store.Execer, id, status string, reason *string, decidedBy string) (int64, error)
	countRecentFn  func(ctx context.Context, userID string, windowDays int, excludeID string) (int, error)
}

func (s stubWithdrawals) Create(ctx context.Context, tx store.Execer, input store.WithdrawalInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubWithdrawals) GetForUpdate(ctx context.Context, tx store.Getter, id string) (models.WithdrawalRequest, error) {
	if s.getForUpdateFn == nil {
		return models.WithdrawalRequest{}, nil
	}
	return s.getForUpdateFn(ctx, tx, id)
}

func (s stubWithdrawals) MarkDecided(ctx context.Context, tx store.Execer, id, status string, reason *string, decidedBy string) (int64, error) {
	if s.markDecidedFn == nil {
		return 1, nil
	}
	return s.markDecidedFn(ctx, tx, id, status, reason, decidedBy)
}

func (s stubWithdrawals) CountRecentNonRejected(ctx context.Context, userID string, windowDays int, excludeID string) (int, error) {
	if s.countRecentFn == nil {
		return 0, nil
	}
	return s.countRecentFn(ctx, userID, windowDays, excludeID)
}

type stubSettings struct {
	settings models.SystemSettings
}

func (s stubSettings) Resolve(ctx context.Context) (models.SystemSettings, error) {
	return s.settings, nil
}

type stubBalances struct {
	summaryFn func(ctx context.Context, userID string, now time.Time) (projector.Summary, error)
}

func (s stubBalances) Summary(ctx context.Context, userID string, now time.Time) (projector.Summary, error) {
	if s.summaryFn == nil {
		return projector.Summary{}, nil
	}
	return s.summaryFn(ctx, userID, now)
}

type stubAudit struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAudit) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubLinker struct {
	linkFn func(ctx context.Context, tx store.Execer, userID, ownerType, ownerID, storageKey string) error
}

func (s stubLinker) Link(ctx context.Context, tx store.Execer, userID, ownerType, ownerID, storageKey string) error {
	if s.linkFn == nil {
		return nil
	}
	return s.linkFn(ctx, tx, userID, ownerType, ownerID, storageKey)
}

type stubLockRule struct {
	locked   bool
	unlockAt *time.Time
	err      error
}

func (s stubLockRule) Evaluate(ctx context.Context, userID string, settings models.SystemSettings, now time.Time) (bool, *time.Time, error) {
	return s.locked, s.unlockAt, s.err
}

type recordingHub struct {
	updates []websocket.SummaryUpdate
}

func (h *recordingHub) BroadcastSummary(userID string, update websocket.SummaryUpdate) {
	h.updates = append(h.updates, update)
}
