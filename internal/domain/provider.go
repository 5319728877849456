// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/joinflow/webinar-join-service/internal/domain/models"
)

// WebinarProvider defines the video-conferencing provider capabilities the
// join service consumes. Implementations translate provider failures into
// DomainError values so callers can distinguish conflicts (the email is
// already registered) and rate limits from everything else.
type WebinarProvider interface {
	// GetWebinarOccurrences lists the scheduled occurrences of a webinar.
	GetWebinarOccurrences(ctx context.Context, webinarID string) ([]models.Occurrence, error)

	// ListRegistrants returns one page of registrants for an occurrence,
	// filtered by status. Pass the previous page's NextPageToken to continue;
	// an empty token in the result means the listing is exhausted.
	ListRegistrants(ctx context.Context, webinarID, occurrenceID, status, nextPageToken string) (*models.RegistrantPage, error)

	// CreateRegistrant registers a person for an occurrence and returns the
	// provider's record including the join URL.
	CreateRegistrant(ctx context.Context, webinarID, occurrenceID string, req *models.RegistrantRequest) (*models.Registrant, error)
}
