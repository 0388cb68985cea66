package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blackvant/internal/models"
	"blackvant/internal/services"
)

const validAddress = "TJRabPrwbZy45sbavfcjinPJC18kjpRTv8"

func TestCreateWithdrawal(t *testing.T) {
	var got services.CreateWithdrawalRequest
	requests := stubRequestService{
		createWithdrawalFn: func(ctx context.Context, req services.CreateWithdrawalRequest) (string, error) {
			got = req
			return "w1", nil
		},
	}
	users := authedDirectory("u1", models.RoleUser)
	handler := newTestHandler(testHandlerOptions{users: users, requests: requests})

	body := `{"amount": "25.50", "source": "PROFIT", "targetAddress": "` + validAddress + `", "method": "USDT_TRC20"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/withdrawals", strings.NewReader(body))
	rr := serveAuthed(t, handler, users, "ext-u1", req, handler.CreateWithdrawal)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["id"] != "w1" || resp["status"] != models.StatusPending {
		t.Fatalf("unexpected response: %#v", resp)
	}
	if got.UserID != "u1" || got.AmountMinor != 2550 || got.Source != models.SourceProfit {
		t.Fatalf("unexpected service input: %#v", got)
	}
}

func TestCreateWithdrawalNumericAmountNoSource(t *testing.T) {
	// the withdraw form sends amount as a raw number and no source field
	var got services.CreateWithdrawalRequest
	requests := stubRequestService{
		createWithdrawalFn: func(ctx context.Context, req services.CreateWithdrawalRequest) (string, error) {
			got = req
			return "w1", nil
		},
	}
	users := authedDirectory("u1", models.RoleUser)
	handler := newTestHandler(testHandlerOptions{users: users, requests: requests})
	body := `{"amount": 100, "method": "USDT_TRC20", "targetAddress": "` + validAddress + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/withdrawals", strings.NewReader(body))
	rr := serveAuthed(t, handler, users, "ext-u1", req, handler.CreateWithdrawal)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.AmountMinor != 10000 {
		t.Fatalf("expected 10000 minor, got %d", got.AmountMinor)
	}
	if got.Source != models.SourceProfit {
		t.Fatalf("expected source to default to PROFIT, got %q", got.Source)
	}
	if got.TargetAddress != validAddress {
		t.Fatalf("address did not bind: %q", got.TargetAddress)
	}
}

func TestCreateWithdrawalEligibilityErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"below minimum", services.ErrBelowMinimum, http.StatusBadRequest, "below_minimum"},
		{"insufficient balance", services.ErrInsufficientBalance, http.StatusBadRequest, "insufficient_balance"},
		{"capital locked", services.ErrCapitalLocked, http.StatusBadRequest, "capital_locked"},
		{"too frequent", services.ErrTooFrequent, http.StatusBadRequest, "too_frequent"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			requests := stubRequestService{
				createWithdrawalFn: func(ctx context.Context, req services.CreateWithdrawalRequest) (string, error) {
					return "", tc.err
				},
			}
			users := authedDirectory("u1", models.RoleUser)
			handler := newTestHandler(testHandlerOptions{users: users, requests: requests})
			body := `{"amount": "100", "source": "CAPITAL", "targetAddress": "` + validAddress + `", "method": "USDT_TRC20"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/me/withdrawals", strings.NewReader(body))
			rr := serveAuthed(t, handler, users, "ext-u1", req, handler.CreateWithdrawal)
			if rr.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tc.wantBody) {
				t.Fatalf("expected error %q, got %s", tc.wantBody, rr.Body.String())
			}
		})
	}
}

func TestCreateWithdrawalRejectsBadAddress(t *testing.T) {
	requests := stubRequestService{
		createWithdrawalFn: func(ctx context.Context, req services.CreateWithdrawalRequest) (string, error) {
			t.Fatal("service must not be called for an invalid address")
			return "", nil
		},
	}
	users := authedDirectory("u1", models.RoleUser)
	handler := newTestHandler(testHandlerOptions{users: users, requests: requests})
	body := `{"amount": "100", "source": "PROFIT", "targetAddress": "not-an-address", "method": "USDT_TRC20"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/withdrawals", strings.NewReader(body))
	rr := serveAuthed(t, handler, users, "ext-u1", req, handler.CreateWithdrawal)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "invalid_address") {
		t.Fatalf("expected invalid_address, got %s", rr.Body.String())
	}
}

func TestCreateDepositNumericAmount(t *testing.T) {
	// the deposit form sends a raw number plus legacy fields the server
	// does not use
	var got services.CreateDepositRequest
	requests := stubRequestService{
		createDepositFn: func(ctx context.Context, req services.CreateDepositRequest) (string, error) {
			got = req
			return "d1", nil
		},
	}
	users := authedDirectory("u1", models.RoleUser)
	handler := newTestHandler(testHandlerOptions{users: users, requests: requests})
	body := `{"amount": 500, "method": "USDT_TRC20", "txId": "PENDING-1", "proofUrl": "receipt.png"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/deposits", strings.NewReader(body))
	rr := serveAuthed(t, handler, users, "ext-u1", req, handler.CreateDeposit)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["id"] != "d1" || resp["status"] != models.StatusPending {
		t.Fatalf("unexpected response: %#v", resp)
	}
	if got.AmountMinor != 50000 {
		t.Fatalf("expected 50000 minor, got %d", got.AmountMinor)
	}
}

func TestCreateDepositBlankProofKeyDropped(t *testing.T) {
	var got services.CreateDepositRequest
	requests := stubRequestService{
		createDepositFn: func(ctx context.Context, req services.CreateDepositRequest) (string, error) {
			got = req
			return "d1", nil
		},
	}
	users := authedDirectory("u1", models.RoleUser)
	handler := newTestHandler(testHandlerOptions{users: users, requests: requests})
	body := `{"amount": "500", "method": "USDT_TRC20", "proofKey": "  "}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/deposits", strings.NewReader(body))
	rr := serveAuthed(t, handler, users, "ext-u1", req, handler.CreateDeposit)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.AmountMinor != 50000 || got.ProofKey != nil {
		t.Fatalf("unexpected service input: %#v", got)
	}
}

func TestCreateDepositInvalidAmount(t *testing.T) {
	users := authedDirectory("u1", models.RoleUser)
	handler := newTestHandler(testHandlerOptions{users: users})
	body := `{"amount": "-5", "method": "USDT_TRC20"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/deposits", strings.NewReader(body))
	rr := serveAuthed(t, handler, users, "ext-u1", req, handler.CreateDeposit)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "invalid_amount") {
		t.Fatalf("expected invalid_amount, got %s", rr.Body.String())
	}
}

func TestListWithdrawalsPagination(t *testing.T) {
	var gotLimit, gotOffset int
	withdrawals := stubWithdrawalStore{
		listByUserFn: func(ctx context.Context, userID string, limit, offset int) ([]models.WithdrawalRequest, error) {
			gotLimit, gotOffset = limit, offset
			return nil, nil
		},
	}
	users := authedDirectory("u1", models.RoleUser)
	handler := newTestHandler(testHandlerOptions{users: users, withdrawals: withdrawals})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/withdrawals?limit=5&page=3", nil)
	rr := serveAuthed(t, handler, users, "ext-u1", req, handler.ListWithdrawals)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotLimit != 5 || gotOffset != 10 {
		t.Fatalf("expected limit 5 offset 10, got %d %d", gotLimit, gotOffset)
	}
}
