// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joinflow/webinar-join-service/internal/domain"
	"github.com/joinflow/webinar-join-service/internal/domain/models"
	"github.com/joinflow/webinar-join-service/internal/logging"
	"github.com/joinflow/webinar-join-service/pkg/redaction"
)

// registrantLookupMaxPages bounds how deep the registrant listing is paged
// when searching for an existing registration.
const registrantLookupMaxPages = 10

// RegistrationStatus says whether a join URL came from a new registration or
// an existing one.
type RegistrationStatus string

const (
	RegistrationCreated RegistrationStatus = "created"
	RegistrationReused  RegistrationStatus = "reused"
)

// RegistrationResult is the outcome of an idempotent register-or-reuse.
type RegistrationResult struct {
	Status  RegistrationStatus
	JoinURL string
}

// RegistrationService registers attendees with the webinar provider,
// reusing an existing approved registration for the same email when one
// exists.
type RegistrationService struct {
	provider domain.WebinarProvider
}

// NewRegistrationService creates a RegistrationService backed by the given
// provider.
func NewRegistrationService(provider domain.WebinarProvider) *RegistrationService {
	return &RegistrationService{provider: provider}
}

// RegisterOrReuse returns a join URL for the given registrant, creating a
// provider registration only when no approved one exists for the email.
// A conflict or rate limit on creation triggers one recovery lookup: if the
// registrant turns out to exist after all, its join URL is reused.
func (s *RegistrationService) RegisterOrReuse(ctx context.Context, webinarID, occurrenceID string, req *models.RegistrantRequest) (*RegistrationResult, error) {
	existing, err := s.findRegistrantByEmail(ctx, webinarID, occurrenceID, req.Email)
	if err != nil {
		// A failed lookup is not fatal before creation; the create call
		// is the authority and duplicates surface as conflicts there.
		slog.WarnContext(ctx, "registrant lookup failed, attempting create",
			logging.ErrKey, err,
			"webinar_id", webinarID,
		)
	}
	if existing != nil && existing.JoinURL != "" {
		return &RegistrationResult{Status: RegistrationReused, JoinURL: existing.JoinURL}, nil
	}

	created, err := s.provider.CreateRegistrant(ctx, webinarID, occurrenceID, req)
	if err != nil {
		return s.recoverFromCreateFailure(ctx, webinarID, occurrenceID, req.Email, err)
	}

	if created.JoinURL == "" {
		// Some providers omit the join URL from the create response; the
		// listing carries it.
		if recovered, lookupErr := s.findRegistrantByEmail(ctx, webinarID, occurrenceID, req.Email); lookupErr == nil && recovered != nil && recovered.JoinURL != "" {
			return &RegistrationResult{Status: RegistrationCreated, JoinURL: recovered.JoinURL}, nil
		}
		return nil, domain.NewUnavailableError("registration succeeded but no join URL was returned")
	}

	return &RegistrationResult{Status: RegistrationCreated, JoinURL: created.JoinURL}, nil
}

// recoverFromCreateFailure handles a failed create. Conflicts and rate
// limits often mean the registrant already exists, so one more lookup is
// attempted before the error is propagated.
func (s *RegistrationService) recoverFromCreateFailure(ctx context.Context, webinarID, occurrenceID, email string, createErr error) (*RegistrationResult, error) {
	switch domain.GetErrorType(createErr) {
	case domain.ErrorTypeConflict, domain.ErrorTypeRateLimited:
		slog.InfoContext(ctx, "create rejected, checking for existing registrant",
			logging.ErrKey, createErr,
			"webinar_id", webinarID,
			"email", redaction.RedactEmail(email),
		)
		existing, err := s.findRegistrantByEmail(ctx, webinarID, occurrenceID, email)
		if err == nil && existing != nil && existing.JoinURL != "" {
			return &RegistrationResult{Status: RegistrationReused, JoinURL: existing.JoinURL}, nil
		}
	}
	return nil, createErr
}

// findRegistrantByEmail pages through the webinar's approved registrants
// looking for a case-insensitive email match.
func (s *RegistrationService) findRegistrantByEmail(ctx context.Context, webinarID, occurrenceID, email string) (*models.Registrant, error) {
	target := strings.ToLower(strings.TrimSpace(email))
	if target == "" {
		return nil, nil
	}

	nextPageToken := ""
	for page := 0; page < registrantLookupMaxPages; page++ {
		result, err := s.provider.ListRegistrants(ctx, webinarID, occurrenceID, models.RegistrantStatusApproved, nextPageToken)
		if err != nil {
			return nil, err
		}

		for i := range result.Registrants {
			if strings.ToLower(result.Registrants[i].Email) == target {
				return &result.Registrants[i], nil
			}
		}

		nextPageToken = result.NextPageToken
		if nextPageToken == "" {
			break
		}
	}
	return nil, nil
}
