package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"blackvant/internal/db"
	"blackvant/internal/models"
	"blackvant/internal/money"
	"blackvant/internal/projector"
	"blackvant/internal/store"
	"blackvant/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrBelowMinimum        = errors.New("amount below minimum")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrCapitalLocked       = errors.New("capital is locked")
	ErrTooFrequent         = errors.New("withdrawal frequency limit reached")
	ErrAlreadyDecided      = errors.New("request already decided")
	ErrRequestNotFound     = errors.New("request not found")
)

// withdrawalFeeBasisPoints is the 0.5% platform fee, recorded on the
// request for the payout processor. The ledger debit stays the full
// requested amount.
const withdrawalFeeBasisPoints = 50

type LedgerAppender interface {
	Append(ctx context.Context, tx store.Tx, input store.LedgerEntryInput) error
	LatestDepositCredit(ctx context.Context, userID string) (time.Time, error)
}

type DepositRequestStore interface {
	Create(ctx context.Context, tx store.Execer, input store.DepositInput) error
	GetForUpdate(ctx context.Context, tx store.Getter, id string) (models.DepositRequest, error)
	MarkDecided(ctx context.Context, tx store.Execer, id, status string, reason *string, decidedBy string) (int64, error)
}

type WithdrawalRequestStore interface {
	Create(ctx context.Context, tx store.Execer, input store.WithdrawalInput) error
	GetForUpdate(ctx context.Context, tx store.Getter, id string) (models.WithdrawalRequest, error)
	MarkDecided(ctx context.Context, tx store.Execer, id, status string, reason *string, decidedBy string) (int64, error)
	CountRecentNonRejected(ctx context.Context, userID string, windowDays int, excludeID string) (int, error)
}

type SettingsSource interface {
	Resolve(ctx context.Context) (models.SystemSettings, error)
}

type BalanceSource interface {
	Summary(ctx context.Context, userID string, now time.Time) (projector.Summary, error)
}

type AuditLogger interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type AttachmentLinker interface {
	Link(ctx context.Context, tx store.Execer, userID, ownerType, ownerID, storageKey string) error
}

type SummaryHub interface {
	BroadcastSummary(userID string, update websocket.SummaryUpdate)
}

// CapitalLockRule decides whether deposit-derived capital may leave the
// platform. Pluggable: the exact unlock trigger is policy, not ledger
// mechanics.
type CapitalLockRule interface {
	Evaluate(ctx context.Context, userID string, settings models.SystemSettings, now time.Time) (locked bool, unlockAt *time.Time, err error)
}

// DepositAgeLockRule locks capital for the configured window after the
// user's most recent approved deposit.
type DepositAgeLockRule struct {
	Ledger LedgerAppender
}

func (r DepositAgeLockRule) Evaluate(ctx context.Context, userID string, settings models.SystemSettings, now time.Time) (bool, *time.Time, error) {
	if !settings.CapitalLockEnabled {
		return false, nil, nil
	}
	latest, err := r.Ledger.LatestDepositCredit(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil, nil
		}
		return false, nil, err
	}
	unlockAt := latest.Add(time.Duration(settings.CapitalLockDurationDays) * 24 * time.Hour)
	return now.Before(unlockAt), &unlockAt, nil
}

// RequestService drives the deposit/withdrawal lifecycle:
// PENDING -> APPROVED or PENDING -> REJECTED, nothing else. Approval and
// the corresponding ledger append commit in one transaction; the ledger's
// duplicate-reference guard makes retried approvals no-ops.
type RequestService struct {
	txRunner    db.TxRunner
	ledger      LedgerAppender
	deposits    DepositRequestStore
	withdrawals WithdrawalRequestStore
	settings    SettingsSource
	balances    BalanceSource
	audit       AuditLogger
	attachments AttachmentLinker
	lockRule    CapitalLockRule
	hub         SummaryHub
	log         zerolog.Logger
}

func NewRequestService(txRunner db.TxRunner, ledger LedgerAppender, deposits DepositRequestStore, withdrawals WithdrawalRequestStore, settings SettingsSource, balances BalanceSource, audit AuditLogger, attachments AttachmentLinker, lockRule CapitalLockRule, hub SummaryHub, log zerolog.Logger) *RequestService {
	return &RequestService{
		txRunner:    txRunner,
		ledger:      ledger,
		deposits:    deposits,
		withdrawals: withdrawals,
		settings:    settings,
		balances:    balances,
		audit:       audit,
		attachments: attachments,
		lockRule:    lockRule,
		hub:         hub,
		log:         log,
	}
}

type CreateDepositRequest struct {
	UserID      string
	AmountMinor int64
	Method      string
	ProofKey    *string
}

func (s *RequestService) CreateDeposit(ctx context.Context, req CreateDepositRequest) (string, error) {
	if req.AmountMinor <= 0 {
		return "", ErrInvalidAmount
	}
	settings, err := s.settings.Resolve(ctx)
	if err != nil {
		return "", err
	}
	if req.AmountMinor < settings.MinDepositMinor {
		return "", ErrBelowMinimum
	}
	depositID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.deposits.Create(ctx, tx, store.DepositInput{
			ID:          depositID,
			UserID:      req.UserID,
			AmountMinor: req.AmountMinor,
			Method:      req.Method,
			ProofKey:    req.ProofKey,
		}); err != nil {
			return err
		}
		if req.ProofKey != nil {
			if err := s.attachments.Link(ctx, tx, req.UserID, models.OwnerDeposit, depositID, *req.ProofKey); err != nil {
				return err
			}
		}
		data, _ := json.Marshal(map[string]string{
			"amount": money.FormatMinor(req.AmountMinor),
			"method": req.Method,
		})
		return s.audit.Log(ctx, tx, req.UserID, "deposit_requested", "deposit_request", depositID, string(data))
	})
	if err != nil {
		return "", err
	}
	return depositID, nil
}

type CreateWithdrawalRequest struct {
	UserID        string
	AmountMinor   int64
	Source        string
	TargetAddress string
	Method        string
}

func (s *RequestService) CreateWithdrawal(ctx context.Context, req CreateWithdrawalRequest) (string, error) {
	if req.AmountMinor <= 0 {
		return "", ErrInvalidAmount
	}
	settings, err := s.settings.Resolve(ctx)
	if err != nil {
		return "", err
	}
	if err := s.checkWithdrawalEligibility(ctx, settings, req.UserID, req.AmountMinor, req.Source, ""); err != nil {
		return "", err
	}
	withdrawalID := uuid.NewString()
	feeMinor := money.FeeMinor(req.AmountMinor, withdrawalFeeBasisPoints)
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.withdrawals.Create(ctx, tx, store.WithdrawalInput{
			ID:            withdrawalID,
			UserID:        req.UserID,
			AmountMinor:   req.AmountMinor,
			FeeMinor:      feeMinor,
			Source:        req.Source,
			TargetAddress: req.TargetAddress,
			Method:        req.Method,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"amount": money.FormatMinor(req.AmountMinor),
			"fee":    money.FormatMinor(feeMinor),
			"source": req.Source,
		})
		return s.audit.Log(ctx, tx, req.UserID, "withdrawal_requested", "withdrawal_request", withdrawalID, string(data))
	})
	if err != nil {
		return "", err
	}
	return withdrawalID, nil
}

// checkWithdrawalEligibility runs the four gate checks. Called at creation
// and again at decision time: balances and settings may have drifted in
// between, and decision time wins.
func (s *RequestService) checkWithdrawalEligibility(ctx context.Context, settings models.SystemSettings, userID string, amountMinor int64, source, excludeRequestID string) error {
	if amountMinor < settings.MinWithdrawMinor {
		return ErrBelowMinimum
	}
	now := time.Now()
	summary, err := s.balances.Summary(ctx, userID, now)
	if err != nil {
		return err
	}
	if amountMinor > summary.SourceBalance(source) {
		return ErrInsufficientBalance
	}
	if source == models.SourceCapital {
		locked, _, err := s.lockRule.Evaluate(ctx, userID, settings, now)
		if err != nil {
			return err
		}
		if locked {
			return ErrCapitalLocked
		}
	}
	if settings.WithdrawFrequencyDays > 0 {
		recent, err := s.withdrawals.CountRecentNonRejected(ctx, userID, settings.WithdrawFrequencyDays, excludeRequestID)
		if err != nil {
			return err
		}
		if recent > 0 {
			return ErrTooFrequent
		}
	}
	return nil
}

func (s *RequestService) DecideDeposit(ctx context.Context, adminID, requestID string, approve bool, reason *string) error {
	var userID string
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		req, err := s.deposits.GetForUpdate(ctx, tx, requestID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrRequestNotFound
			}
			return err
		}
		if req.Status != models.StatusPending {
			return ErrAlreadyDecided
		}
		userID = req.UserID
		status := models.StatusRejected
		if approve {
			status = models.StatusApproved
		}
		affected, err := s.deposits.MarkDecided(ctx, tx, requestID, status, reason, adminID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAlreadyDecided
		}
		if approve {
			if err := s.ledger.Append(ctx, tx, store.LedgerEntryInput{
				ID:            uuid.NewString(),
				UserID:        req.UserID,
				AmountMinor:   req.AmountMinor,
				Direction:     models.DirectionCredit,
				ReferenceType: models.ReferenceDeposit,
				ReferenceID:   req.ID,
				Pool:          models.PoolCapital,
			}); err != nil {
				return err
			}
		}
		data, _ := json.Marshal(map[string]string{"status": status})
		return s.audit.Log(ctx, tx, adminID, "deposit_decided", "deposit_request", requestID, string(data))
	})
	if err != nil {
		return err
	}
	s.broadcastSummary(ctx, userID)
	return nil
}

func (s *RequestService) DecideWithdrawal(ctx context.Context, adminID, requestID string, approve bool, reason *string) error {
	var userID string
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		req, err := s.withdrawals.GetForUpdate(ctx, tx, requestID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrRequestNotFound
			}
			return err
		}
		if req.Status != models.StatusPending {
			return ErrAlreadyDecided
		}
		userID = req.UserID
		if approve {
			settings, err := s.settings.Resolve(ctx)
			if err != nil {
				return err
			}
			if err := s.checkWithdrawalEligibility(ctx, settings, req.UserID, req.AmountMinor, req.Source, req.ID); err != nil {
				return err
			}
		}
		status := models.StatusRejected
		if approve {
			status = models.StatusApproved
		}
		affected, err := s.withdrawals.MarkDecided(ctx, tx, requestID, status, reason, adminID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAlreadyDecided
		}
		if approve {
			if err := s.ledger.Append(ctx, tx, store.LedgerEntryInput{
				ID:            uuid.NewString(),
				UserID:        req.UserID,
				AmountMinor:   req.AmountMinor,
				Direction:     models.DirectionDebit,
				ReferenceType: models.ReferenceWithdrawal,
				ReferenceID:   req.ID,
				Pool:          poolForSource(req.Source),
			}); err != nil {
				return err
			}
		}
		data, _ := json.Marshal(map[string]string{"status": status})
		return s.audit.Log(ctx, tx, adminID, "withdrawal_decided", "withdrawal_request", requestID, string(data))
	})
	if err != nil {
		return err
	}
	s.broadcastSummary(ctx, userID)
	return nil
}

func (s *RequestService) broadcastSummary(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	summary, err := s.balances.Summary(ctx, userID, time.Now())
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("summary broadcast skipped")
		return
	}
	s.hub.BroadcastSummary(userID, websocketSummary(summary))
}

func websocketSummary(summary projector.Summary) websocket.SummaryUpdate {
	return websocket.SummaryUpdate{
		TotalBalance:     money.FormatMinor(summary.TotalMinor),
		ActiveInvestment: money.FormatMinor(summary.CapitalMinor),
		TotalProfit:      money.FormatMinor(summary.ProfitMinor),
	}
}

func poolForSource(source string) string {
	if source == models.SourceProfit {
		return models.PoolProfit
	}
	return models.PoolCapital
}
