// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/joinflow/webinar-join-service/internal/domain"
	"github.com/joinflow/webinar-join-service/internal/domain/models"
)

// OccurrenceService resolves which occurrence of a webinar a join request
// targets.
type OccurrenceService struct {
	provider domain.WebinarProvider
	now      func() time.Time
}

// NewOccurrenceService creates an OccurrenceService backed by the given
// provider.
func NewOccurrenceService(provider domain.WebinarProvider) *OccurrenceService {
	return &OccurrenceService{
		provider: provider,
		now:      time.Now,
	}
}

// SelectOccurrence resolves the session token's occurrence selector. An
// explicit occurrence ID is passed through verbatim; the provider is the
// authority on whether it exists. Auto selection picks the nearest occurrence
// that has not started yet.
func (s *OccurrenceService) SelectOccurrence(ctx context.Context, token models.SessionToken) (*models.Occurrence, error) {
	if !token.AutoSelect() {
		return &models.Occurrence{
			WebinarID:    token.WebinarID,
			OccurrenceID: token.OccurrenceSelector,
		}, nil
	}

	future, err := s.ListFutureOccurrences(ctx, token.WebinarID)
	if err != nil {
		return nil, err
	}
	if len(future) == 0 {
		return nil, domain.NewNotFoundError("no future occurrence found for this webinar")
	}

	selected := future[0]
	slog.DebugContext(ctx, "auto-selected occurrence",
		"webinar_id", selected.WebinarID,
		"occurrence_id", selected.OccurrenceID,
		"starts_at", selected.StartsAt,
	)
	return &selected, nil
}

// ListFutureOccurrences returns the webinar's occurrences that start after
// now, soonest first. A non-recurring webinar carries no occurrence list,
// so it yields an empty result.
func (s *OccurrenceService) ListFutureOccurrences(ctx context.Context, webinarID string) ([]models.Occurrence, error) {
	occurrences, err := s.provider.GetWebinarOccurrences(ctx, webinarID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	future := make([]models.Occurrence, 0, len(occurrences))
	for _, occ := range occurrences {
		if occ.StartsAt.After(now) {
			future = append(future, occ)
		}
	}

	sort.Slice(future, func(i, j int) bool {
		return future[i].StartsAt.Before(future[j].StartsAt)
	})
	return future, nil
}
