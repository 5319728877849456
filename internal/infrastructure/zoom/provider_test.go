// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package zoom

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joinflow/webinar-join-service/internal/domain"
	"github.com/joinflow/webinar-join-service/internal/domain/models"
	"github.com/joinflow/webinar-join-service/internal/infrastructure/zoom/api"
)

// mockClientAPI implements api.ClientAPI for testing
type mockClientAPI struct {
	mock.Mock
}

func (m *mockClientAPI) GetWebinar(ctx context.Context, webinarID string) (*api.GetWebinarResponse, error) {
	args := m.Called(ctx, webinarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.GetWebinarResponse), args.Error(1)
}

func (m *mockClientAPI) ListRegistrants(ctx context.Context, webinarID string, query api.ListRegistrantsQuery) (*api.RegistrantsPageResponse, error) {
	args := m.Called(ctx, webinarID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.RegistrantsPageResponse), args.Error(1)
}

func (m *mockClientAPI) CreateRegistrant(ctx context.Context, webinarID string, request *api.CreateRegistrantRequest) (*api.CreateRegistrantResponse, error) {
	args := m.Called(ctx, webinarID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.CreateRegistrantResponse), args.Error(1)
}

func TestProvider_GetWebinarOccurrences(t *testing.T) {
	client := &mockClientAPI{}
	provider := NewProvider(client)

	client.On("GetWebinar", mock.Anything, "123").Return(&api.GetWebinarResponse{
		ID: 123,
		Occurrences: []api.WebinarOccurrence{
			{OccurrenceID: "occ-1", StartTime: "2026-03-10T10:00:00Z"},
			{OccurrenceID: "occ-bad", StartTime: "not-a-time"},
			{OccurrenceID: "occ-2", StartTime: "2026-03-17T10:00:00Z"},
		},
	}, nil)

	occurrences, err := provider.GetWebinarOccurrences(context.Background(), "123")

	require.NoError(t, err)
	// The unparseable occurrence is skipped, not fatal.
	require.Len(t, occurrences, 2)
	assert.Equal(t, "occ-1", occurrences[0].OccurrenceID)
	assert.Equal(t, "123", occurrences[0].WebinarID)
	assert.Equal(t, 2026, occurrences[0].StartsAt.Year())
}

func TestProvider_ListRegistrants(t *testing.T) {
	client := &mockClientAPI{}
	provider := NewProvider(client)

	client.On("ListRegistrants", mock.Anything, "123", api.ListRegistrantsQuery{
		OccurrenceID: "occ-1",
		Status:       "approved",
	}).Return(&api.RegistrantsPageResponse{
		NextPageToken: "tok",
		Registrants: []api.Registrant{
			{ID: "r1", Email: "jane@corp.test", JoinURL: "https://zoom.us/w/join", Status: "approved"},
		},
	}, nil)

	page, err := provider.ListRegistrants(context.Background(), "123", "occ-1", "approved", "")

	require.NoError(t, err)
	assert.Equal(t, "tok", page.NextPageToken)
	require.Len(t, page.Registrants, 1)
	assert.Equal(t, "jane@corp.test", page.Registrants[0].Email)
}

func TestProvider_CreateRegistrant(t *testing.T) {
	client := &mockClientAPI{}
	provider := NewProvider(client)

	client.On("CreateRegistrant", mock.Anything, "123", &api.CreateRegistrantRequest{
		Email:         "jane@corp.test",
		FirstName:     "Jane",
		LastName:      "Doe",
		Phone:         "+85291234567",
		OccurrenceIDs: "occ-1",
	}).Return(&api.CreateRegistrantResponse{
		RegistrantID: "reg-1",
		JoinURL:      "https://zoom.us/w/join-created",
	}, nil)

	registrant, err := provider.CreateRegistrant(context.Background(), "123", "occ-1", &models.RegistrantRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@corp.test",
		Phone:     "+85291234567",
	})

	require.NoError(t, err)
	assert.Equal(t, "reg-1", registrant.ID)
	assert.Equal(t, "https://zoom.us/w/join-created", registrant.JoinURL)
}

func TestProvider_TranslateError(t *testing.T) {
	provider := NewProvider(&mockClientAPI{})

	tests := []struct {
		name     string
		err      error
		expected domain.ErrorType
	}{
		{
			name:     "400 treated as conflict",
			err:      &api.Error{StatusCode: 400, Message: "Registrant already exists"},
			expected: domain.ErrorTypeConflict,
		},
		{
			name:     "409 conflict",
			err:      &api.Error{StatusCode: 409, Message: "Registrant already exists"},
			expected: domain.ErrorTypeConflict,
		},
		{
			name:     "429 rate limited",
			err:      &api.Error{StatusCode: 429, Message: "Too many requests"},
			expected: domain.ErrorTypeRateLimited,
		},
		{
			name:     "404 not found",
			err:      &api.Error{StatusCode: 404, Message: "Webinar not found"},
			expected: domain.ErrorTypeNotFound,
		},
		{
			name:     "500 unavailable",
			err:      &api.Error{StatusCode: 500, Message: "Internal error"},
			expected: domain.ErrorTypeUnavailable,
		},
		{
			name:     "plain error unavailable",
			err:      errors.New("connection refused"),
			expected: domain.ErrorTypeUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			translated := provider.translateError(tc.err, "operation failed")
			assert.Equal(t, tc.expected, domain.GetErrorType(translated))
		})
	}
}
