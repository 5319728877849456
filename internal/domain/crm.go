// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/joinflow/webinar-join-service/internal/domain/models"
)

// ContactReader defines the CRM capabilities the join service consumes.
// Search results are untrusted free-text matches; callers must verify the
// contact's core phone attribute before accepting a candidate.
type ContactReader interface {
	// SearchContacts returns one page of contact candidates for a search query.
	SearchContacts(ctx context.Context, query string, page, pageSize int) ([]models.Contact, error)

	// ContactDisplayName reads the configured display-name custom field from
	// a contact. Returns an empty string when the field is absent or unset.
	ContactDisplayName(ctx context.Context, contact *models.Contact) (string, error)
}
