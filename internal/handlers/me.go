package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"blackvant/internal/middleware"
	"blackvant/internal/models"
	"blackvant/internal/money"
)

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load profile")
		return
	}
	summary, err := h.projector.Summary(r.Context(), userID, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load balances")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":                userID,
		"email":             user.Email,
		"fullName":          user.FullName,
		"role":              user.Role,
		"createdAt":         user.CreatedAt,
		"investmentBalance": money.FormatMinor(summary.CapitalMinor),
		"profitBalance":     money.FormatMinor(summary.ProfitMinor),
	})
}

func (h *Handler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	now := time.Now()
	summary, err := h.projector.Summary(r.Context(), userID, now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load summary")
		return
	}
	settings, err := h.settings.Resolve(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load settings")
		return
	}
	locked, unlockAt, err := h.lockRule.Evaluate(r.Context(), userID, settings, now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to evaluate lock")
		return
	}
	available := summary.TotalMinor
	if locked {
		available = summary.ProfitMinor
	}
	var capitalUnlockAt *string
	if locked && unlockAt != nil {
		formatted := unlockAt.UTC().Format(time.RFC3339)
		capitalUnlockAt = &formatted
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"totalBalance":     money.FormatMinor(summary.TotalMinor),
		"availableBalance": money.FormatMinor(available),
		"activeInvestment": money.FormatMinor(summary.CapitalMinor),
		"totalProfit":      money.FormatMinor(summary.ProfitMinor),
		"todayProfit":      money.FormatMinor(summary.TodayProfitMinor),
		"capitalLocked":    locked,
		"capitalUnlockAt":  capitalUnlockAt,
	})
}

func (h *Handler) DashboardChart(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	days, err := parseRangeDays(r.URL.Query().Get("range"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_range")
		return
	}
	points, err := h.projector.EquityHistory(r.Context(), userID, days, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load chart")
		return
	}
	// fewer than two data points is not a chartable series
	if len(points) < 2 {
		respondJSON(w, http.StatusOK, []any{})
		return
	}
	normalized := make([]map[string]any, 0, len(points))
	for _, point := range points {
		normalized = append(normalized, map[string]any{
			"date":             point.Date.Format("2006-01-02"),
			"totalBalance":     money.FormatMinor(point.TotalMinor),
			"activeInvestment": money.FormatMinor(point.CapitalMinor),
			"totalProfit":      money.FormatMinor(point.ProfitMinor),
			"dailyProfit":      money.FormatMinor(point.DailyProfitMinor),
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

func parseRangeDays(raw string) (int, error) {
	if raw == "" {
		return 30, nil
	}
	if raw == "1y" {
		return 365, nil
	}
	if !strings.HasSuffix(raw, "d") {
		return 0, errInvalidAmount
	}
	days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
	if err != nil || days < 1 || days > 3650 {
		return 0, errInvalidAmount
	}
	return days, nil
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entries, err := h.ledger.EntriesForUser(r.Context(), userID, time.Time{}, time.Time{})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	normalized := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		// ledger entries only exist for settled movements
		normalized = append(normalized, map[string]any{
			"id":             entry.ID,
			"amount":         money.FormatMinor(entry.AmountMinor),
			"direction":      entry.Direction,
			"referenceType":  entry.ReferenceType,
			"referenceId":    entry.ReferenceID,
			"status":         models.StatusCompleted,
			"runningBalance": money.FormatMinor(entry.RunningBalanceMinor),
			"createdAt":      entry.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}
