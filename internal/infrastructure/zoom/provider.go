// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

// Package zoom adapts the Zoom REST client to the domain's WebinarProvider
// interface, translating provider failures into semantic domain errors.
package zoom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joinflow/webinar-join-service/internal/domain"
	"github.com/joinflow/webinar-join-service/internal/domain/models"
	"github.com/joinflow/webinar-join-service/internal/infrastructure/zoom/api"
	"github.com/joinflow/webinar-join-service/internal/logging"
)

const tracerName = "webinar-join-service/zoom"

// Provider implements domain.WebinarProvider on top of the Zoom API client
type Provider struct {
	client api.ClientAPI
}

// NewProvider creates a Provider backed by the given Zoom API client
func NewProvider(client api.ClientAPI) *Provider {
	return &Provider{client: client}
}

var _ domain.WebinarProvider = (*Provider)(nil)

// GetWebinarOccurrences lists the scheduled occurrences of a webinar
func (p *Provider) GetWebinarOccurrences(ctx context.Context, webinarID string) ([]models.Occurrence, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "zoom.webinar.get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("zoom.webinar_id", webinarID),
		),
	)
	defer span.End()

	webinar, err := p.client.GetWebinar(ctx, webinarID)
	if err != nil {
		err = p.translateError(err, "failed to fetch webinar")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	occurrences := make([]models.Occurrence, 0, len(webinar.Occurrences))
	for _, occ := range webinar.Occurrences {
		startsAt, err := time.Parse(time.RFC3339, occ.StartTime)
		if err != nil {
			slog.WarnContext(ctx, "skipping occurrence with unparseable start time",
				"occurrence_id", occ.OccurrenceID,
				"start_time", occ.StartTime,
				logging.ErrKey, err)
			continue
		}
		occurrences = append(occurrences, models.Occurrence{
			WebinarID:    webinarID,
			OccurrenceID: occ.OccurrenceID,
			StartsAt:     startsAt,
		})
	}

	span.SetStatus(codes.Ok, "")
	return occurrences, nil
}

// ListRegistrants returns one page of registrants for an occurrence
func (p *Provider) ListRegistrants(ctx context.Context, webinarID, occurrenceID, status, nextPageToken string) (*models.RegistrantPage, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "zoom.registrants.list",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("zoom.webinar_id", webinarID),
			attribute.String("zoom.occurrence_id", occurrenceID),
		),
	)
	defer span.End()

	resp, err := p.client.ListRegistrants(ctx, webinarID, api.ListRegistrantsQuery{
		OccurrenceID:  occurrenceID,
		Status:        status,
		NextPageToken: nextPageToken,
	})
	if err != nil {
		err = p.translateError(err, "failed to list registrants")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	page := &models.RegistrantPage{
		NextPageToken: resp.NextPageToken,
		Registrants:   make([]models.Registrant, 0, len(resp.Registrants)),
	}
	for _, r := range resp.Registrants {
		page.Registrants = append(page.Registrants, models.Registrant{
			ID:      r.ID,
			Email:   r.Email,
			JoinURL: r.JoinURL,
			Status:  r.Status,
		})
	}

	span.SetStatus(codes.Ok, "")
	return page, nil
}

// CreateRegistrant registers a person for a webinar occurrence
func (p *Provider) CreateRegistrant(ctx context.Context, webinarID, occurrenceID string, req *models.RegistrantRequest) (*models.Registrant, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "zoom.registrants.create",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("zoom.webinar_id", webinarID),
			attribute.String("zoom.occurrence_id", occurrenceID),
		),
	)
	defer span.End()

	resp, err := p.client.CreateRegistrant(ctx, webinarID, &api.CreateRegistrantRequest{
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		OccurrenceIDs: occurrenceID,
	})
	if err != nil {
		err = p.translateError(err, "failed to create registrant")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &models.Registrant{
		ID:      resp.RegistrantID,
		Email:   req.Email,
		JoinURL: resp.JoinURL,
	}, nil
}

// translateError maps client errors to semantic domain errors. Zoom reports
// an already-registered email as either 400 or 409 depending on the webinar
// settings, so both are treated as conflicts.
func (p *Provider) translateError(err error, message string) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusBadRequest, http.StatusConflict:
			return domain.NewConflictError(fmt.Sprintf("%s: %s", message, apiErr.Message), err)
		case http.StatusTooManyRequests:
			return domain.NewRateLimitedError(fmt.Sprintf("%s: %s", message, apiErr.Message), err)
		case http.StatusNotFound:
			return domain.NewNotFoundError(message, err)
		}
		return domain.NewUnavailableError(message, err)
	}
	return domain.NewUnavailableError(message, err)
}
