package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blackvant/internal/models"
)

func TestCreateTicket(t *testing.T) {
	var gotSubject string
	tickets := stubTicketStore{
		createFn: func(ctx context.Context, id, userID, subject, description string) error {
			gotSubject = subject
			return nil
		},
	}
	users := authedDirectory("u1", models.RoleUser)
	handler := newTestHandler(testHandlerOptions{users: users, tickets: tickets})
	body := `{"subject": "Deposit not credited", "description": "My deposit from yesterday has not appeared on the dashboard."}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/support/ticket", strings.NewReader(body))
	rr := serveAuthed(t, handler, users, "ext-u1", req, handler.CreateTicket)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotSubject != "Deposit not credited" {
		t.Fatalf("unexpected subject: %q", gotSubject)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	users := authedDirectory("u1", models.RoleUser)
	handler := newTestHandler(testHandlerOptions{users: users})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/support/ticket", strings.NewReader(`{"subject": "", "description": "long enough description text"}`))
	rr := serveAuthed(t, handler, users, "ext-u1", req, handler.CreateTicket)
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "subject_required") {
		t.Fatalf("expected subject_required 400, got %d %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/support/ticket", strings.NewReader(`{"subject": "Help", "description": "too short"}`))
	rr = serveAuthed(t, handler, users, "ext-u1", req, handler.CreateTicket)
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "description_too_short") {
		t.Fatalf("expected description_too_short 400, got %d %s", rr.Code, rr.Body.String())
	}
}
