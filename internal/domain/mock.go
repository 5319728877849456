// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joinflow/webinar-join-service/internal/domain/models"
)

// MockContactReader implements ContactReader for testing
type MockContactReader struct {
	mock.Mock
}

func (m *MockContactReader) SearchContacts(ctx context.Context, query string, page, pageSize int) ([]models.Contact, error) {
	args := m.Called(ctx, query, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Contact), args.Error(1)
}

func (m *MockContactReader) ContactDisplayName(ctx context.Context, contact *models.Contact) (string, error) {
	args := m.Called(ctx, contact)
	return args.String(0), args.Error(1)
}

// MockWebinarProvider implements WebinarProvider for testing
type MockWebinarProvider struct {
	mock.Mock
}

func (m *MockWebinarProvider) GetWebinarOccurrences(ctx context.Context, webinarID string) ([]models.Occurrence, error) {
	args := m.Called(ctx, webinarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Occurrence), args.Error(1)
}

func (m *MockWebinarProvider) ListRegistrants(ctx context.Context, webinarID, occurrenceID, status, nextPageToken string) (*models.RegistrantPage, error) {
	args := m.Called(ctx, webinarID, occurrenceID, status, nextPageToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegistrantPage), args.Error(1)
}

func (m *MockWebinarProvider) CreateRegistrant(ctx context.Context, webinarID, occurrenceID string, req *models.RegistrantRequest) (*models.Registrant, error) {
	args := m.Called(ctx, webinarID, occurrenceID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Registrant), args.Error(1)
}
