package handlers

import (
	"encoding/json"
	"net/http"

	"blackvant/internal/middleware"
	"blackvant/internal/validator"

	"github.com/google/uuid"
)

type createTicketRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateTicket(req.Subject, req.Description); err != nil {
		switch err {
		case validator.ErrSubjectRequired:
			respondError(w, http.StatusBadRequest, "subject_required")
		case validator.ErrDescriptionTooShort:
			respondError(w, http.StatusBadRequest, "description_too_short")
		default:
			respondError(w, http.StatusBadRequest, "invalid payload")
		}
		return
	}
	ticketID := uuid.NewString()
	if err := h.tickets.Create(r.Context(), ticketID, userID, req.Subject, req.Description); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create ticket")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"ticketId": ticketID})
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 20)
	page := parseInt(query.Get("page"), 1)
	rows, err := h.tickets.ListByUser(r.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load tickets")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
