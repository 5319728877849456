// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

// Package handlers exposes the join resolution pipeline over HTTP.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joinflow/webinar-join-service/internal/domain"
	"github.com/joinflow/webinar-join-service/internal/domain/models"
	"github.com/joinflow/webinar-join-service/internal/logging"
	"github.com/joinflow/webinar-join-service/internal/service"
)

// JoinHandler serves the join, peek, and sessions endpoints.
type JoinHandler struct {
	joins *service.JoinService
}

// NewJoinHandler creates a JoinHandler backed by the given join service.
func NewJoinHandler(joins *service.JoinService) *JoinHandler {
	return &JoinHandler{joins: joins}
}

// RegisterRoutes mounts the handler's routes on the mux.
func (h *JoinHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/join/complete", h.Complete)
	mux.HandleFunc("POST /api/join/register", h.Register)
	mux.HandleFunc("GET /api/join/peek", h.Peek)
	mux.HandleFunc("GET /api/webinars/{webinarId}/sessions", h.Sessions)
	mux.HandleFunc("GET /livez", h.Livez)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// registerRequestBody is the POST /api/join/register payload. The session
// token takes precedence over the separate webinar/occurrence fields.
type registerRequestBody struct {
	Session      string `json:"session,omitempty"`
	WebinarID    string `json:"webinarId,omitempty"`
	OccurrenceID string `json:"occurrenceId,omitempty"`
	Phone        string `json:"phone"`
	ZoomName     string `json:"zoomName,omitempty"`
}

type registerResponseBody struct {
	OK           bool   `json:"ok"`
	WebinarID    string `json:"webinarId"`
	OccurrenceID string `json:"occurrenceId,omitempty"`
	JoinURL      string `json:"join_url"`
	EmailMode    string `json:"email_mode"`
}

type peekResponseBody struct {
	OK           bool               `json:"ok"`
	WebinarID    string             `json:"webinarId,omitempty"`
	OccurrenceID string             `json:"occurrenceId,omitempty"`
	ContactFound bool               `json:"contactFound"`
	DisplayName  string             `json:"displayName"`
	NameSource   service.NameSource `json:"nameSource"`
	Registrant   peekRegistrantBody `json:"registrant"`
	EmailMode    models.EmailSource `json:"email_mode"`
}

type peekRegistrantBody struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type sessionBody struct {
	OccurrenceID string `json:"occurrence_id"`
	StartsAt     string `json:"starts_at"`
	Label        string `json:"label"`
}

type sessionsResponseBody struct {
	OK       bool          `json:"ok"`
	Sessions []sessionBody `json:"sessions"`
}

type errorResponseBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Complete resolves the caller's join link and redirects to it.
func (h *JoinHandler) Complete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &service.JoinRequest{
		Session:         q.Get("session"),
		WebinarID:       q.Get("webinarId"),
		OccurrenceID:    q.Get("occurrenceId"),
		Phone:           q.Get("phone"),
		DisplayNameHint: q.Get("zoomName"),
	}

	result, err := h.joins.Complete(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.Redirect(w, r, result.JoinURL, http.StatusFound)
}

// Register resolves the caller's join link and returns it as JSON.
func (h *JoinHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body registerRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, r, domain.NewValidationError("invalid JSON request body", err))
		return
	}

	result, err := h.joins.Complete(r.Context(), &service.JoinRequest{
		Session:         body.Session,
		WebinarID:       body.WebinarID,
		OccurrenceID:    body.OccurrenceID,
		Phone:           body.Phone,
		DisplayNameHint: body.ZoomName,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, registerResponseBody{
		OK:           true,
		WebinarID:    result.WebinarID,
		OccurrenceID: result.OccurrenceID,
		JoinURL:      result.JoinURL,
		EmailMode:    string(result.EmailSource),
	})
}

// Peek previews the identity resolution without registering anyone.
func (h *JoinHandler) Peek(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.joins.Peek(r.Context(), &service.JoinRequest{
		Session:         q.Get("session"),
		WebinarID:       q.Get("webinarId"),
		OccurrenceID:    q.Get("occurrenceId"),
		Phone:           q.Get("phone"),
		DisplayNameHint: q.Get("zoomName"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, peekResponseBody{
		OK:           true,
		WebinarID:    result.WebinarID,
		OccurrenceID: result.OccurrenceID,
		ContactFound: result.ContactFound,
		DisplayName:  result.DisplayName,
		NameSource:   result.NameSource,
		Registrant: peekRegistrantBody{
			FirstName: result.FirstName,
			LastName:  result.LastName,
			Email:     result.Email,
		},
		EmailMode: result.EmailSource,
	})
}

// Sessions lists a webinar's upcoming occurrences.
func (h *JoinHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	webinarID := r.PathValue("webinarId")

	occurrences, err := h.joins.Sessions(r.Context(), webinarID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sessions := make([]sessionBody, 0, len(occurrences))
	for _, occ := range occurrences {
		sessions = append(sessions, sessionBody{
			OccurrenceID: occ.OccurrenceID,
			StartsAt:     occ.StartsAt.UTC().Format(time.RFC3339),
			Label:        occ.Label(),
		})
	}

	h.writeJSON(w, http.StatusOK, sessionsResponseBody{OK: true, Sessions: sessions})
}

// Livez is the liveness probe.
func (h *JoinHandler) Livez(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// Readyz is the readiness probe.
func (h *JoinHandler) Readyz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

func (h *JoinHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("error encoding response body", logging.ErrKey, err)
	}
}

// writeError maps a domain error onto its HTTP status and JSON envelope.
// Unavailable maps to 502 since it always means an upstream the resolution
// depends on did not deliver.
func (h *JoinHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		status = http.StatusBadRequest
	case domain.ErrorTypeNotFound:
		status = http.StatusNotFound
	case domain.ErrorTypeConflict:
		status = http.StatusConflict
	case domain.ErrorTypeRateLimited:
		status = http.StatusTooManyRequests
	case domain.ErrorTypeUnavailable:
		status = http.StatusBadGateway
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", logging.ErrKey, err)
		// Internal details stay out of the response.
		message = "internal server error"
	} else {
		slog.WarnContext(r.Context(), "request rejected", logging.ErrKey, err, "status", status)
	}

	h.writeJSON(w, status, errorResponseBody{OK: false, Error: strings.TrimSpace(message)})
}
