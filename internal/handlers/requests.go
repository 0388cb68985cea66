package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"blackvant/internal/middleware"
	"blackvant/internal/models"
	"blackvant/internal/money"
	"blackvant/internal/services"
	"blackvant/internal/store"
	"blackvant/internal/validator"
)

type createDepositRequest struct {
	Amount   amountValue `json:"amount"`
	Method   string      `json:"method"`
	ProofKey *string     `json:"proofKey"`
}

func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(string(req.Amount))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	if err := validator.ValidateMethod(req.Method); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_method")
		return
	}
	if req.ProofKey != nil && strings.TrimSpace(*req.ProofKey) == "" {
		req.ProofKey = nil
	}
	depositID, err := h.requests.CreateDeposit(r.Context(), services.CreateDepositRequest{
		UserID:      userID,
		AmountMinor: amountMinor,
		Method:      req.Method,
		ProofKey:    req.ProofKey,
	})
	if err != nil {
		respondRequestError(w, err, "deposit_failed")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": depositID, "status": models.StatusPending})
}

func (h *Handler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 20)
	page := parseInt(query.Get("page"), 1)
	rows, err := h.deposits.ListByUser(r.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load deposits")
		return
	}
	respondJSON(w, http.StatusOK, normalizeDeposits(rows))
}

type createWithdrawalRequest struct {
	Amount        amountValue `json:"amount"`
	Source        string      `json:"source"`
	TargetAddress string      `json:"targetAddress"`
	Method        string      `json:"method"`
}

func (h *Handler) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(string(req.Amount))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	// the withdraw form predates the source picker and omits the field
	if req.Source == "" {
		req.Source = models.SourceProfit
	}
	if err := validator.ValidateSource(req.Source); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_source")
		return
	}
	if err := validator.ValidateMethod(req.Method); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_method")
		return
	}
	if err := validator.ValidateTargetAddress(req.TargetAddress); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_address")
		return
	}
	withdrawalID, err := h.requests.CreateWithdrawal(r.Context(), services.CreateWithdrawalRequest{
		UserID:        userID,
		AmountMinor:   amountMinor,
		Source:        req.Source,
		TargetAddress: req.TargetAddress,
		Method:        req.Method,
	})
	if err != nil {
		respondRequestError(w, err, "withdrawal_failed")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": withdrawalID, "status": models.StatusPending})
}

func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 20)
	page := parseInt(query.Get("page"), 1)
	rows, err := h.withdrawals.ListByUser(r.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load withdrawals")
		return
	}
	respondJSON(w, http.StatusOK, normalizeWithdrawals(rows))
}

// respondRequestError maps service sentinels onto the documented statuses:
// eligibility failures are 400, already-decided conflicts are 409.
func respondRequestError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, store.ErrDuplicateReference) {
		respondError(w, http.StatusConflict, "duplicate_reference")
		return
	}
	switch err {
	case services.ErrInvalidAmount:
		respondError(w, http.StatusBadRequest, "invalid_amount")
	case services.ErrBelowMinimum:
		respondError(w, http.StatusBadRequest, "below_minimum")
	case services.ErrInsufficientBalance:
		respondError(w, http.StatusBadRequest, "insufficient_balance")
	case services.ErrCapitalLocked:
		respondError(w, http.StatusBadRequest, "capital_locked")
	case services.ErrTooFrequent:
		respondError(w, http.StatusBadRequest, "too_frequent")
	case services.ErrNotConfirmed:
		respondError(w, http.StatusBadRequest, "upload_not_confirmed")
	case services.ErrRequestNotFound:
		respondError(w, http.StatusNotFound, "request_not_found")
	case services.ErrAlreadyDecided:
		respondError(w, http.StatusConflict, "already_decided")
	default:
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

func normalizeDeposits(rows []models.DepositRequest) []map[string]any {
	normalized := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		normalized = append(normalized, map[string]any{
			"id":           row.ID,
			"userId":       row.UserID,
			"amount":       money.FormatMinor(row.AmountMinor),
			"method":       row.Method,
			"status":       row.Status,
			"statusReason": row.StatusReason,
			"createdAt":    row.CreatedAt,
			"decidedAt":    row.DecidedAt,
		})
	}
	return normalized
}

func normalizeWithdrawals(rows []models.WithdrawalRequest) []map[string]any {
	normalized := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		normalized = append(normalized, map[string]any{
			"id":            row.ID,
			"userId":        row.UserID,
			"amount":        money.FormatMinor(row.AmountMinor),
			"fee":           money.FormatMinor(row.FeeMinor),
			"source":        row.Source,
			"targetAddress": row.TargetAddress,
			"method":        row.Method,
			"status":        row.Status,
			"statusReason":  row.StatusReason,
			"createdAt":     row.CreatedAt,
			"decidedAt":     row.DecidedAt,
		})
	}
	return normalized
}
