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
	"github.com/joinflow/webinar-join-service/pkg/phone"
	"github.com/joinflow/webinar-join-service/pkg/redaction"
)

const (
	contactSearchPageSize = 25
	contactSearchMaxPages = 2
)

// ContactService looks up CRM contacts by phone number. Lookup failures are
// absorbed: a caller that cannot find a contact proceeds on the guest path
// rather than failing the join.
type ContactService struct {
	crm        domain.ContactReader
	normalizer *phone.Normalizer
}

// NewContactService creates a ContactService backed by the given CRM reader.
func NewContactService(crm domain.ContactReader, normalizer *phone.Normalizer) *ContactService {
	return &ContactService{
		crm:        crm,
		normalizer: normalizer,
	}
}

// FindContactByPhone searches the CRM for a contact whose stored phone
// normalizes to the same canonical number as rawPhone. Each phone variant is
// queried in turn, a couple of pages deep, and the first strict match wins.
// Returns nil when no contact matches or the CRM is unreachable.
func (s *ContactService) FindContactByPhone(ctx context.Context, rawPhone string) *models.Contact {
	target := s.normalizer.Normalize(rawPhone)
	if target == "" {
		return nil
	}

	for _, variant := range s.normalizer.Variants(rawPhone) {
		for page := 1; page <= contactSearchMaxPages; page++ {
			contacts, err := s.crm.SearchContacts(ctx, variant, page, contactSearchPageSize)
			if err != nil {
				slog.WarnContext(ctx, "contact search failed, continuing as guest",
					logging.ErrKey, err,
					"phone", redaction.RedactPhone(rawPhone),
				)
				return nil
			}
			if len(contacts) == 0 {
				break
			}

			for i := range contacts {
				candidate := &contacts[i]
				if s.normalizer.Normalize(candidate.Phone) == target {
					slog.DebugContext(ctx, "contact matched by phone",
						"contact_id", candidate.ID,
						"phone", redaction.RedactPhone(rawPhone),
					)
					return candidate
				}
			}

			if len(contacts) < contactSearchPageSize {
				break
			}
		}
	}

	return nil
}

// DisplayNameFor fetches the contact's preferred display name from its CRM
// custom fields. Errors are logged and an empty string returned so the name
// cascade can fall through to its next candidate.
func (s *ContactService) DisplayNameFor(ctx context.Context, contact *models.Contact) string {
	if contact == nil {
		return ""
	}

	name, err := s.crm.ContactDisplayName(ctx, contact)
	if err != nil {
		slog.WarnContext(ctx, "display name lookup failed",
			logging.ErrKey, err,
			"contact_id", contact.ID,
		)
		return ""
	}
	return strings.TrimSpace(name)
}
