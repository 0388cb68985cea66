package handlers

import (
	"encoding/json"
	"net/http"

	"blackvant/internal/middleware"
	"blackvant/internal/services"
	"blackvant/internal/validator"
)

type uploadRequest struct {
	Purpose      string `json:"purpose"`
	MimeType     string `json:"mimeType"`
	FileSize     int64  `json:"fileSize"`
	OriginalName string `json:"originalName"`
}

func (h *Handler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	grant, err := h.attachments.RequestUpload(r.Context(), userID, req.Purpose, req.MimeType, req.FileSize, req.OriginalName)
	if err != nil {
		switch err {
		case validator.ErrInvalidUploadType:
			respondError(w, http.StatusBadRequest, "invalid_upload_type")
		case validator.ErrUploadTooLarge:
			respondError(w, http.StatusBadRequest, "upload_too_large")
		default:
			respondError(w, http.StatusInternalServerError, "upload_request_failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"uploadUrl":  grant.UploadURL,
		"storageKey": grant.StorageKey,
	})
}

type confirmUploadRequest struct {
	StorageKey string `json:"storageKey"`
}

func (h *Handler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req confirmUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StorageKey == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	attachmentID, err := h.attachments.ConfirmUpload(r.Context(), userID, req.StorageKey)
	if err != nil {
		if err == services.ErrNotConfirmed {
			respondError(w, http.StatusBadRequest, "upload_not_confirmed")
			return
		}
		respondError(w, http.StatusInternalServerError, "upload_confirm_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"attachmentId": attachmentID})
}
