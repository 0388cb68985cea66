package handlers

import (
	"net/http"
	"strings"

	"blackvant/internal/auth"
	"blackvant/internal/websocket"
)

func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	user, err := h.users.GetByExternalAuthID(r.Context(), claims.Subject)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unknown user")
		return
	}
	if user.Disabled {
		respondError(w, http.StatusForbidden, "account disabled")
		return
	}
	websocket.ServeWS(w, r, h.hub, user.ID)
}
