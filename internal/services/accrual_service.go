package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blackvant/internal/db"
	"blackvant/internal/models"
	"blackvant/internal/money"
	"blackvant/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidDirection   = errors.New("invalid adjustment direction")
	ErrInvalidAccrualDate = errors.New("invalid accrual date")
)

// AccrualService posts daily profit entries and manual admin adjustments.
// Profit references encode the accrual date, so a re-run job hits the
// ledger's duplicate guard instead of double-crediting.
type AccrualService struct {
	txRunner db.TxRunner
	ledger   LedgerAppender
	balances BalanceSource
	audit    AuditLogger
	hub      SummaryHub
	log      zerolog.Logger
}

func NewAccrualService(txRunner db.TxRunner, ledger LedgerAppender, balances BalanceSource, audit AuditLogger, hub SummaryHub, log zerolog.Logger) *AccrualService {
	return &AccrualService{
		txRunner: txRunner,
		ledger:   ledger,
		balances: balances,
		audit:    audit,
		hub:      hub,
		log:      log,
	}
}

// PostProfit credits one user's profit pool for one accrual date
// (YYYY-MM-DD). Returns false without error when the entry already
// exists, so batch jobs can be replayed end to end.
func (s *AccrualService) PostProfit(ctx context.Context, userID string, amountMinor int64, accrualDate string) (bool, error) {
	if amountMinor <= 0 {
		return false, ErrInvalidAmount
	}
	if _, err := time.Parse("2006-01-02", accrualDate); err != nil {
		return false, ErrInvalidAccrualDate
	}
	referenceID := fmt.Sprintf("accrual:%s:%s", accrualDate, userID)
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.ledger.Append(ctx, tx, store.LedgerEntryInput{
			ID:            uuid.NewString(),
			UserID:        userID,
			AmountMinor:   amountMinor,
			Direction:     models.DirectionCredit,
			ReferenceType: models.ReferenceProfit,
			ReferenceID:   referenceID,
			Pool:          models.PoolProfit,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateReference) {
			s.log.Debug().Str("user_id", userID).Str("accrual_date", accrualDate).Msg("profit accrual already posted")
			return false, nil
		}
		return false, err
	}
	s.broadcastSummary(ctx, userID)
	return true, nil
}

type AdjustmentRequest struct {
	AdminID     string
	UserID      string
	AmountMinor int64
	Direction   string
	Note        string
}

// PostAdjustment writes a manual correction against a user's capital pool
// and audit-logs the acting admin with the note.
func (s *AccrualService) PostAdjustment(ctx context.Context, req AdjustmentRequest) (string, error) {
	if req.AmountMinor <= 0 {
		return "", ErrInvalidAmount
	}
	if req.Direction != models.DirectionCredit && req.Direction != models.DirectionDebit {
		return "", ErrInvalidDirection
	}
	adjustmentID := uuid.NewString()
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.ledger.Append(ctx, tx, store.LedgerEntryInput{
			ID:            uuid.NewString(),
			UserID:        req.UserID,
			AmountMinor:   req.AmountMinor,
			Direction:     req.Direction,
			ReferenceType: models.ReferenceAdjustment,
			ReferenceID:   adjustmentID,
			Pool:          models.PoolCapital,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"user_id":   req.UserID,
			"amount":    money.FormatMinor(req.AmountMinor),
			"direction": req.Direction,
			"note":      req.Note,
		})
		return s.audit.Log(ctx, tx, req.AdminID, "adjustment_posted", "ledger_entry", adjustmentID, string(data))
	})
	if err != nil {
		return "", err
	}
	s.broadcastSummary(ctx, req.UserID)
	return adjustmentID, nil
}

func (s *AccrualService) broadcastSummary(ctx context.Context, userID string) {
	summary, err := s.balances.Summary(ctx, userID, time.Now())
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("summary broadcast skipped")
		return
	}
	s.hub.BroadcastSummary(userID, websocketSummary(summary))
}
