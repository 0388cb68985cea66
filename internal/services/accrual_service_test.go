package services

import (
	"context"
	"testing"

	"blackvant/internal/models"
	"blackvant/internal/store"

	"github.com/rs/zerolog"
)

func newTestAccrualService(ledger LedgerAppender, hub SummaryHub) *AccrualService {
	return NewAccrualService(fakeTxRunner{}, ledger, stubBalances{}, stubAudit{}, hub, zerolog.Nop())
}

func TestPostProfitReferenceEncodesUserAndDate(t *testing.T) {
	var appended store.LedgerEntryInput
	service := newTestAccrualService(stubLedger{
		appendFn: func(_ context.Context, _ store.Tx, input store.LedgerEntryInput) error {
			appended = input
			return nil
		},
	}, &recordingHub{})
	posted, err := service.PostProfit(context.Background(), "u1", 1500, "2024-06-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !posted {
		t.Fatal("expected the entry to post")
	}
	if appended.ReferenceID != "accrual:2024-06-10:u1" {
		t.Fatalf("unexpected reference id: %q", appended.ReferenceID)
	}
	if appended.ReferenceType != models.ReferenceProfit || appended.Pool != models.PoolProfit {
		t.Fatalf("unexpected entry shape: %#v", appended)
	}
}

func TestPostProfitDuplicateIsNoOp(t *testing.T) {
	hub := &recordingHub{}
	service := newTestAccrualService(stubLedger{
		appendFn: func(context.Context, store.Tx, store.LedgerEntryInput) error {
			return store.ErrDuplicateReference
		},
	}, hub)
	posted, err := service.PostProfit(context.Background(), "u1", 1500, "2024-06-10")
	if err != nil {
		t.Fatalf("replayed accrual must not error: %v", err)
	}
	if posted {
		t.Fatal("duplicate accrual must report skipped")
	}
	if len(hub.updates) != 0 {
		t.Fatal("duplicate accrual must not broadcast")
	}
}

func TestPostProfitRejectsBadDate(t *testing.T) {
	service := newTestAccrualService(stubLedger{}, &recordingHub{})
	if _, err := service.PostProfit(context.Background(), "u1", 1500, "10/06/2024"); err != ErrInvalidAccrualDate {
		t.Fatalf("expected ErrInvalidAccrualDate, got %v", err)
	}
}

func TestPostAdjustmentDirection(t *testing.T) {
	service := newTestAccrualService(stubLedger{}, &recordingHub{})
	_, err := service.PostAdjustment(context.Background(), AdjustmentRequest{
		AdminID:     "admin-1",
		UserID:      "u1",
		AmountMinor: 500,
		Direction:   "SIDEWAYS",
	})
	if err != ErrInvalidDirection {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
}

func TestPostAdjustmentAppendsCapitalEntry(t *testing.T) {
	var appended store.LedgerEntryInput
	service := newTestAccrualService(stubLedger{
		appendFn: func(_ context.Context, _ store.Tx, input store.LedgerEntryInput) error {
			appended = input
			return nil
		},
	}, &recordingHub{})
	id, err := service.PostAdjustment(context.Background(), AdjustmentRequest{
		AdminID:     "admin-1",
		UserID:      "u1",
		AmountMinor: 500,
		Direction:   models.DirectionDebit,
		Note:        "chargeback correction",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appended.ReferenceType != models.ReferenceAdjustment || appended.Pool != models.PoolCapital {
		t.Fatalf("unexpected entry shape: %#v", appended)
	}
	if appended.ReferenceID != id {
		t.Fatalf("adjustment id must be the ledger reference, got %q vs %q", appended.ReferenceID, id)
	}
}
