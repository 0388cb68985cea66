package handlers

import (
	"encoding/json"
	"net/http"

	"blackvant/internal/services"
)

type accrualItem struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

type accrualBatchRequest struct {
	AccrualDate string        `json:"accrual_date"`
	Items       []accrualItem `json:"items"`
}

// PostAccruals ingests one day's profit batch from the external accrual
// job. Replaying the same batch is harmless: duplicate user/date entries
// are skipped and reported.
func (h *Handler) PostAccruals(w http.ResponseWriter, r *http.Request) {
	var req accrualBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccrualDate == "" || len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	posted := 0
	skipped := 0
	for _, item := range req.Items {
		amountMinor, err := parseAmountMinor(item.Amount)
		if err != nil || item.UserID == "" {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		ok, err := h.accruals.PostProfit(r.Context(), item.UserID, amountMinor, req.AccrualDate)
		if err != nil {
			if err == services.ErrInvalidAmount {
				respondError(w, http.StatusBadRequest, "invalid_amount")
				return
			}
			if err == services.ErrInvalidAccrualDate {
				respondError(w, http.StatusBadRequest, "invalid_accrual_date")
				return
			}
			h.log.Error().Err(err).Str("user_id", item.UserID).Msg("accrual posting failed")
			respondError(w, http.StatusInternalServerError, "accrual_failed")
			return
		}
		if ok {
			posted++
		} else {
			skipped++
		}
	}
	respondJSON(w, http.StatusOK, map[string]int{"posted": posted, "skipped": skipped})
}
