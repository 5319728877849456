// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joinflow/webinar-join-service/internal/domain"
	"github.com/joinflow/webinar-join-service/internal/domain/models"
	"github.com/joinflow/webinar-join-service/internal/service"
	"github.com/joinflow/webinar-join-service/pkg/phone"
)

type handlerFixture struct {
	crm      *domain.MockContactReader
	provider *domain.MockWebinarProvider
	mux      *http.ServeMux
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	crm := &domain.MockContactReader{}
	provider := &domain.MockWebinarProvider{}
	normalizer := phone.NewNormalizer("852", 8)

	joins := service.NewJoinService(
		service.NewContactService(crm, normalizer),
		service.NewOccurrenceService(provider),
		service.NewRegistrationService(provider),
		service.NewEmailStrategy("example.com"),
		normalizer,
		false,
	)

	mux := http.NewServeMux()
	NewJoinHandler(joins).RegisterRoutes(mux)

	return &handlerFixture{crm: crm, provider: provider, mux: mux}
}

func (f *handlerFixture) expectGuestRegistration(joinURL string) {
	f.crm.On("SearchContacts", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Contact{}, nil)
	f.provider.On("ListRegistrants", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.RegistrantPage{}, nil)
	f.provider.On("CreateRegistrant", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Registrant{JoinURL: joinURL}, nil)
}

func TestJoinHandler_Complete_Redirects(t *testing.T) {
	f := newHandlerFixture(t)
	f.expectGuestRegistration("https://zoom.us/w/abc")

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/join/complete?session=123%7Cocc-1&phone=91234567", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://zoom.us/w/abc", rec.Header().Get("Location"))
}

func TestJoinHandler_Complete_MissingSession(t *testing.T) {
	f := newHandlerFixture(t)

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/join/complete?phone=91234567", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	assert.NotEmpty(t, body["error"])
}

func TestJoinHandler_Complete_MissingPhone(t *testing.T) {
	f := newHandlerFixture(t)

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/join/complete?session=123%7Cocc-1", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.provider.AssertNotCalled(t, "CreateRegistrant", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	assert.NotEmpty(t, body["error"])
}

func TestJoinHandler_Register(t *testing.T) {
	f := newHandlerFixture(t)
	f.expectGuestRegistration("https://zoom.us/w/reg")

	payload := `{"session":"123|occ-1","phone":"91234567","zoomName":"Jane Doe"}`
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/api/join/register", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)

	var body registerResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, "123", body.WebinarID)
	assert.Equal(t, "occ-1", body.OccurrenceID)
	assert.Equal(t, "https://zoom.us/w/reg", body.JoinURL)
	assert.Equal(t, "alias", body.EmailMode)
}

func TestJoinHandler_Register_InvalidJSON(t *testing.T) {
	f := newHandlerFixture(t)

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/api/join/register", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJoinHandler_Register_MissingPhone(t *testing.T) {
	f := newHandlerFixture(t)

	payload := `{"session":"123|occ-1","phone":"  "}`
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/api/join/register", strings.NewReader(payload)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.provider.AssertNotCalled(t, "CreateRegistrant", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinHandler_Peek_MissingPhone(t *testing.T) {
	f := newHandlerFixture(t)

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/join/peek", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJoinHandler_Register_RateLimited(t *testing.T) {
	f := newHandlerFixture(t)

	f.crm.On("SearchContacts", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Contact{}, nil)
	f.provider.On("ListRegistrants", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.RegistrantPage{}, nil)
	f.provider.On("CreateRegistrant", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.NewRateLimitedError("too many requests"))

	payload := `{"session":"123|occ-1","phone":"91234567"}`
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/api/join/register", strings.NewReader(payload)))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestJoinHandler_Peek(t *testing.T) {
	f := newHandlerFixture(t)

	contact := models.Contact{ID: "c-1", Email: "jane@corp.test", Phone: "+85291234567"}
	f.crm.On("SearchContacts", mock.Anything, "+85291234567", 1, mock.Anything).
		Return([]models.Contact{contact}, nil)
	f.crm.On("ContactDisplayName", mock.Anything, mock.Anything).Return("Jane Doe", nil)

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/join/peek?phone=91234567", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body peekResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.True(t, body.ContactFound)
	assert.Equal(t, "Jane Doe", body.DisplayName)
	assert.Equal(t, "Jane", body.Registrant.FirstName)
	assert.Equal(t, "jane@corp.test", body.Registrant.Email)
	f.provider.AssertNotCalled(t, "CreateRegistrant", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinHandler_Sessions(t *testing.T) {
	f := newHandlerFixture(t)

	starts := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	f.provider.On("GetWebinarOccurrences", mock.Anything, "123").Return([]models.Occurrence{
		{WebinarID: "123", OccurrenceID: "occ-1", StartsAt: starts},
	}, nil)

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/webinars/123/sessions", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body sessionsResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	require.Len(t, body.Sessions, 1)
	assert.Equal(t, "occ-1", body.Sessions[0].OccurrenceID)
	assert.Equal(t, starts.Format(time.RFC3339), body.Sessions[0].StartsAt)
	assert.NotEmpty(t, body.Sessions[0].Label)
}

func TestJoinHandler_Sessions_NotFoundWebinar(t *testing.T) {
	f := newHandlerFixture(t)

	f.provider.On("GetWebinarOccurrences", mock.Anything, "missing").
		Return(nil, domain.NewNotFoundError("webinar not found"))

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/webinars/missing/sessions", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJoinHandler_HealthEndpoints(t *testing.T) {
	f := newHandlerFixture(t)

	for _, path := range []string{"/livez", "/readyz"} {
		rec := httptest.NewRecorder()
		f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
