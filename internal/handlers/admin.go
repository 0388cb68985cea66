package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"blackvant/internal/middleware"
	"blackvant/internal/models"
	"blackvant/internal/money"
	"blackvant/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) GetSystemSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Resolve(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load settings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"minDeposit":              money.FormatMinor(settings.MinDepositMinor),
		"minWithdraw":             money.FormatMinor(settings.MinWithdrawMinor),
		"withdrawFrequencyDays":   settings.WithdrawFrequencyDays,
		"capitalLockEnabled":      settings.CapitalLockEnabled,
		"capitalLockDurationDays": settings.CapitalLockDurationDays,
	})
}

type updateSettingsRequest struct {
	MinDeposit              *string `json:"minDeposit"`
	MinWithdraw             *string `json:"minWithdraw"`
	WithdrawFrequencyDays   *int    `json:"withdrawFrequencyDays"`
	CapitalLockEnabled      *bool   `json:"capitalLockEnabled"`
	CapitalLockDurationDays *int    `json:"capitalLockDurationDays"`
}

func (h *Handler) UpdateSystemSettings(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	updates := map[string]string{}
	if req.MinDeposit != nil {
		minor, err := parseAmountMinor(*req.MinDeposit)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		updates[services.SettingMinDepositMinor] = strconv.FormatInt(minor, 10)
	}
	if req.MinWithdraw != nil {
		minor, err := parseAmountMinor(*req.MinWithdraw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		updates[services.SettingMinWithdrawMinor] = strconv.FormatInt(minor, 10)
	}
	if req.WithdrawFrequencyDays != nil {
		if *req.WithdrawFrequencyDays < 0 {
			respondError(w, http.StatusBadRequest, "invalid_frequency")
			return
		}
		updates[services.SettingWithdrawFrequencyDays] = strconv.Itoa(*req.WithdrawFrequencyDays)
	}
	if req.CapitalLockEnabled != nil {
		updates[services.SettingCapitalLockEnabled] = strconv.FormatBool(*req.CapitalLockEnabled)
	}
	if req.CapitalLockDurationDays != nil {
		if *req.CapitalLockDurationDays < 0 {
			respondError(w, http.StatusBadRequest, "invalid_lock_duration")
			return
		}
		updates[services.SettingCapitalLockDurationDays] = strconv.Itoa(*req.CapitalLockDurationDays)
	}
	if len(updates) == 0 {
		respondError(w, http.StatusBadRequest, "no_settings_provided")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		for key, value := range updates {
			if err := h.settings.Update(r.Context(), tx, key, value); err != nil {
				return err
			}
		}
		data, _ := json.Marshal(updates)
		return h.audit.Log(r.Context(), tx, adminID, "settings_updated", "system_settings", "system", string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update settings")
		return
	}
	h.GetSystemSettings(w, r)
}

func (h *Handler) AdminListDeposits(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	rows, err := h.deposits.ListByStatus(r.Context(), query.Get("status"), limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load deposits")
		return
	}
	respondJSON(w, http.StatusOK, normalizeDeposits(rows))
}

func (h *Handler) AdminListWithdrawals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	rows, err := h.withdrawals.ListByStatus(r.Context(), query.Get("status"), limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load withdrawals")
		return
	}
	respondJSON(w, http.StatusOK, normalizeWithdrawals(rows))
}

type decideRequest struct {
	Approve bool    `json:"approve"`
	Reason  *string `json:"reason"`
}

func (h *Handler) DecideDeposit(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	requestID := chi.URLParam(r, "id")
	if err := h.requests.DecideDeposit(r.Context(), adminID, requestID, req.Approve, req.Reason); err != nil {
		respondRequestError(w, err, "decision_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"requestId": requestID, "status": decisionStatus(req.Approve)})
}

func (h *Handler) DecideWithdrawal(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	requestID := chi.URLParam(r, "id")
	if err := h.requests.DecideWithdrawal(r.Context(), adminID, requestID, req.Approve, req.Reason); err != nil {
		respondRequestError(w, err, "decision_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"requestId": requestID, "status": decisionStatus(req.Approve)})
}

func decisionStatus(approve bool) string {
	if approve {
		return models.StatusApproved
	}
	return models.StatusRejected
}

type adjustmentRequest struct {
	UserID    string `json:"user_id"`
	Amount    string `json:"amount"`
	Direction string `json:"direction"`
	Note      string `json:"note"`
}

func (h *Handler) PostAdjustment(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	adjustmentID, err := h.accruals.PostAdjustment(r.Context(), services.AdjustmentRequest{
		AdminID:     adminID,
		UserID:      req.UserID,
		AmountMinor: amountMinor,
		Direction:   req.Direction,
		Note:        req.Note,
	})
	if err != nil {
		if err == services.ErrInvalidDirection {
			respondError(w, http.StatusBadRequest, "invalid_direction")
			return
		}
		respondRequestError(w, err, "adjustment_failed")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"adjustmentId": adjustmentID})
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	rows, err := h.audit.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
