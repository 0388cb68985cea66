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
	"blackvant/internal/store"

	"github.com/go-chi/chi/v5"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestDecideWithdrawalApprove(t *testing.T) {
	var gotAdminID, gotRequestID string
	var gotApprove bool
	requests := stubRequestService{
		decideWithdrawalFn: func(ctx context.Context, adminID, requestID string, approve bool, reason *string) error {
			gotAdminID, gotRequestID, gotApprove = adminID, requestID, approve
			return nil
		},
	}
	users := authedDirectory("a1", models.RoleAdmin)
	handler := newTestHandler(testHandlerOptions{users: users, requests: requests})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/withdrawals/w1/decide", strings.NewReader(`{"approve": true}`))
	req = withURLParam(req, "id", "w1")
	rr := serveAuthed(t, handler, users, "ext-a1", req, handler.DecideWithdrawal)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["requestId"] != "w1" || resp["status"] != models.StatusApproved {
		t.Fatalf("unexpected response: %#v", resp)
	}
	if gotAdminID != "a1" || gotRequestID != "w1" || !gotApprove {
		t.Fatalf("unexpected service input: %q %q %v", gotAdminID, gotRequestID, gotApprove)
	}
}

func TestDecideDepositConflictsAndMisses(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"already decided", services.ErrAlreadyDecided, http.StatusConflict, "already_decided"},
		{"duplicate reference", store.ErrDuplicateReference, http.StatusConflict, "duplicate_reference"},
		{"not found", services.ErrRequestNotFound, http.StatusNotFound, "request_not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			requests := stubRequestService{
				decideDepositFn: func(ctx context.Context, adminID, requestID string, approve bool, reason *string) error {
					return tc.err
				},
			}
			users := authedDirectory("a1", models.RoleAdmin)
			handler := newTestHandler(testHandlerOptions{users: users, requests: requests})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/deposits/d1/decide", strings.NewReader(`{"approve": false, "reason": "no proof"}`))
			req = withURLParam(req, "id", "d1")
			rr := serveAuthed(t, handler, users, "ext-a1", req, handler.DecideDeposit)
			if rr.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tc.wantBody) {
				t.Fatalf("expected %q, got %s", tc.wantBody, rr.Body.String())
			}
		})
	}
}

func TestUpdateSystemSettingsPartial(t *testing.T) {
	updated := map[string]string{}
	settings := stubSettingsResolver{
		settings: models.SystemSettings{MinDepositMinor: 10000, MinWithdrawMinor: 5000},
		updateFn: func(ctx context.Context, tx store.Execer, key, value string) error {
			updated[key] = value
			return nil
		},
	}
	users := authedDirectory("a1", models.RoleAdmin)
	handler := newTestHandler(testHandlerOptions{users: users, settings: settings})
	body := `{"minWithdraw": "50", "capitalLockEnabled": true}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/settings/system", strings.NewReader(body))
	rr := serveAuthed(t, handler, users, "ext-a1", req, handler.UpdateSystemSettings)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(updated) != 2 {
		t.Fatalf("expected 2 updated keys, got %#v", updated)
	}
	if updated[services.SettingMinWithdrawMinor] != "5000" {
		t.Fatalf("expected min withdraw 5000 minor, got %q", updated[services.SettingMinWithdrawMinor])
	}
	if updated[services.SettingCapitalLockEnabled] != "true" {
		t.Fatalf("expected lock enabled true, got %q", updated[services.SettingCapitalLockEnabled])
	}
}

func TestUpdateSystemSettingsEmptyPayload(t *testing.T) {
	users := authedDirectory("a1", models.RoleAdmin)
	handler := newTestHandler(testHandlerOptions{users: users})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/settings/system", strings.NewReader(`{}`))
	rr := serveAuthed(t, handler, users, "ext-a1", req, handler.UpdateSystemSettings)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "no_settings_provided") {
		t.Fatalf("expected no_settings_provided, got %s", rr.Body.String())
	}
}

func TestPostAdjustment(t *testing.T) {
	var got services.AdjustmentRequest
	accruals := stubAccrualService{
		postAdjustmentFn: func(ctx context.Context, req services.AdjustmentRequest) (string, error) {
			got = req
			return "adj1", nil
		},
	}
	users := authedDirectory("a1", models.RoleAdmin)
	handler := newTestHandler(testHandlerOptions{users: users, accruals: accruals})
	body := `{"user_id": "u1", "amount": "12.34", "direction": "DEBIT", "note": "chargeback"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/adjustments", strings.NewReader(body))
	rr := serveAuthed(t, handler, users, "ext-a1", req, handler.PostAdjustment)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.AdminID != "a1" || got.UserID != "u1" || got.AmountMinor != 1234 || got.Direction != models.DirectionDebit {
		t.Fatalf("unexpected service input: %#v", got)
	}
}

func TestPostAdjustmentInvalidDirection(t *testing.T) {
	accruals := stubAccrualService{
		postAdjustmentFn: func(ctx context.Context, req services.AdjustmentRequest) (string, error) {
			return "", services.ErrInvalidDirection
		},
	}
	users := authedDirectory("a1", models.RoleAdmin)
	handler := newTestHandler(testHandlerOptions{users: users, accruals: accruals})
	body := `{"user_id": "u1", "amount": "12.34", "direction": "SIDEWAYS"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/adjustments", strings.NewReader(body))
	rr := serveAuthed(t, handler, users, "ext-a1", req, handler.PostAdjustment)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "invalid_direction") {
		t.Fatalf("expected invalid_direction, got %s", rr.Body.String())
	}
}

func TestAdminListWithdrawalsStatusFilter(t *testing.T) {
	var gotStatus string
	withdrawals := stubWithdrawalStore{
		listByStatusFn: func(ctx context.Context, status string, limit, offset int) ([]models.WithdrawalRequest, error) {
			gotStatus = status
			return nil, nil
		},
	}
	users := authedDirectory("a1", models.RoleAdmin)
	handler := newTestHandler(testHandlerOptions{users: users, withdrawals: withdrawals})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/withdrawals?status=PENDING", nil)
	rr := serveAuthed(t, handler, users, "ext-a1", req, handler.AdminListWithdrawals)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotStatus != models.StatusPending {
		t.Fatalf("expected status filter PENDING, got %q", gotStatus)
	}
}
