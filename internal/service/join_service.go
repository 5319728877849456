// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joinflow/webinar-join-service/internal/domain"
	"github.com/joinflow/webinar-join-service/internal/domain/models"
	"github.com/joinflow/webinar-join-service/pkg/phone"
	"github.com/joinflow/webinar-join-service/pkg/redaction"
	"github.com/joinflow/webinar-join-service/pkg/utils"
)

// JoinRequest carries the inputs of a join resolution. Session is the
// compound "<webinarId>|<selector>" token; WebinarID and OccurrenceID may be
// supplied separately instead.
type JoinRequest struct {
	Session         string
	WebinarID       string
	OccurrenceID    string
	Phone           string
	DisplayNameHint string
}

// JoinResult is a completed join resolution.
type JoinResult struct {
	WebinarID    string
	OccurrenceID string
	JoinURL      string
	Status       RegistrationStatus
	EmailSource  models.EmailSource
}

// PeekResult is a dry-run join resolution: the identity that would be
// registered, without touching the provider's registrant list.
type PeekResult struct {
	WebinarID    string
	OccurrenceID string
	DisplayName  string
	FirstName    string
	LastName     string
	Email        string
	EmailSource  models.EmailSource
	NameSource   NameSource
	ContactFound bool
}

// JoinService resolves a join request end to end: phone to contact, contact
// to display name and email, occurrence selection, then idempotent
// registration.
type JoinService struct {
	contacts      *ContactService
	occurrences   *OccurrenceService
	registrations *RegistrationService
	emails        *EmailStrategy
	normalizer    *phone.Normalizer
	aliasForced   bool
}

// NewJoinService wires the resolution pipeline together. aliasForced makes
// every registration use an alias email even when the contact has a real one.
func NewJoinService(
	contacts *ContactService,
	occurrences *OccurrenceService,
	registrations *RegistrationService,
	emails *EmailStrategy,
	normalizer *phone.Normalizer,
	aliasForced bool,
) *JoinService {
	return &JoinService{
		contacts:      contacts,
		occurrences:   occurrences,
		registrations: registrations,
		emails:        emails,
		normalizer:    normalizer,
		aliasForced:   aliasForced,
	}
}

// Complete resolves the request and registers the attendee, returning the
// join URL. Registering the same caller twice yields the same URL.
func (s *JoinService) Complete(ctx context.Context, req *JoinRequest) (*JoinResult, error) {
	if strings.TrimSpace(req.Phone) == "" {
		return nil, domain.NewValidationError("phone is required")
	}

	token, err := s.sessionToken(req)
	if err != nil {
		return nil, err
	}

	occurrence, err := s.occurrences.SelectOccurrence(ctx, token)
	if err != nil {
		return nil, err
	}

	identity, _, _ := s.resolveIdentity(ctx, req)

	result, err := s.registrations.RegisterOrReuse(ctx, occurrence.WebinarID, occurrence.OccurrenceID, &models.RegistrantRequest{
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		Phone:     identity.Phone,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "join resolved",
		"webinar_id", occurrence.WebinarID,
		"occurrence_id", occurrence.OccurrenceID,
		"status", result.Status,
		"email_mode", identity.EmailSource,
		"email", redaction.RedactEmail(identity.Email),
	)

	return &JoinResult{
		WebinarID:    occurrence.WebinarID,
		OccurrenceID: occurrence.OccurrenceID,
		JoinURL:      result.JoinURL,
		Status:       result.Status,
		EmailSource:  identity.EmailSource,
	}, nil
}

// Peek resolves the identity and occurrence the way Complete would, but
// never registers anyone. The webinar context is optional: without one the
// preview covers identity resolution only.
func (s *JoinService) Peek(ctx context.Context, req *JoinRequest) (*PeekResult, error) {
	if strings.TrimSpace(req.Phone) == "" {
		return nil, domain.NewValidationError("phone is required")
	}

	occurrence := &models.Occurrence{}
	if token, err := s.sessionToken(req); err == nil {
		occurrence, err = s.occurrences.SelectOccurrence(ctx, token)
		if err != nil {
			return nil, err
		}
	}

	identity, displayName, nameSource := s.resolveIdentity(ctx, req)

	return &PeekResult{
		WebinarID:    occurrence.WebinarID,
		OccurrenceID: occurrence.OccurrenceID,
		DisplayName:  displayName,
		FirstName:    identity.FirstName,
		LastName:     identity.LastName,
		Email:        identity.Email,
		EmailSource:  identity.EmailSource,
		NameSource:   nameSource,
		ContactFound: identity.ContactID != "",
	}, nil
}

// Sessions lists the webinar's upcoming occurrences for selection UIs.
func (s *JoinService) Sessions(ctx context.Context, webinarID string) ([]models.Occurrence, error) {
	if strings.TrimSpace(webinarID) == "" {
		return nil, domain.NewValidationError("webinar ID is required")
	}
	return s.occurrences.ListFutureOccurrences(ctx, webinarID)
}

// sessionToken builds the resolved session token from either the compound
// session value or the separate webinar/occurrence fields.
func (s *JoinService) sessionToken(req *JoinRequest) (models.SessionToken, error) {
	if raw := strings.TrimSpace(req.Session); raw != "" {
		token, ok := models.ParseSessionToken(raw)
		if !ok {
			return models.SessionToken{}, domain.NewValidationError("session token is missing a webinar ID")
		}
		return token, nil
	}

	token := models.SessionToken{
		WebinarID:          strings.TrimSpace(req.WebinarID),
		OccurrenceSelector: strings.TrimSpace(req.OccurrenceID),
	}
	if token.WebinarID == "" {
		return models.SessionToken{}, domain.NewValidationError("webinar ID is required")
	}
	return token, nil
}

// resolveIdentity turns the caller's phone and optional name hint into the
// registrant fields. Every step fails soft: no contact, no name, and no
// email all have guest-path fallbacks.
func (s *JoinService) resolveIdentity(ctx context.Context, req *JoinRequest) (models.ResolvedIdentity, string, NameSource) {
	normalizedPhone := s.normalizer.Normalize(req.Phone)

	contact := s.contacts.FindContactByPhone(ctx, req.Phone)

	crmCandidate := ""
	contactID := ""
	realEmail := ""
	contactPhone := ""
	if contact != nil {
		contactID = contact.ID
		realEmail = contact.Email
		contactPhone = s.normalizer.Normalize(contact.Phone)
		crmCandidate = s.contacts.DisplayNameFor(ctx, contact)
	}

	displayName, nameSource := ResolveDisplayName(crmCandidate, req.DisplayNameHint)
	firstName, lastName := SplitName(displayName)

	registrantPhone := utils.CoalesceString(contactPhone, normalizedPhone)
	email, emailSource := s.emails.Choose(realEmail, registrantPhone, contactID, displayName, s.aliasForced)

	return models.ResolvedIdentity{
		ContactID:   contactID,
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		Phone:       registrantPhone,
		EmailSource: emailSource,
	}, displayName, nameSource
}
