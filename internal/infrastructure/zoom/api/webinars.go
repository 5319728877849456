// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultRegistrantPageSize is the page size used when listing registrants.
// Zoom allows up to 300 per page.
const DefaultRegistrantPageSize = 300

// WebinarOccurrence represents one occurrence entry on a recurring webinar
type WebinarOccurrence struct {
	OccurrenceID string `json:"occurrence_id"`
	StartTime    string `json:"start_time"`
	Duration     int    `json:"duration,omitempty"`
	Status       string `json:"status,omitempty"`
}

// GetWebinarResponse represents the response from fetching a webinar
type GetWebinarResponse struct {
	ID          int64               `json:"id"`
	UUID        string              `json:"uuid"`
	HostID      string              `json:"host_id"`
	Topic       string              `json:"topic"`
	Type        int                 `json:"type"`
	StartTime   string              `json:"start_time"`
	Duration    int                 `json:"duration"`
	Timezone    string              `json:"timezone"`
	JoinURL     string              `json:"join_url"`
	Occurrences []WebinarOccurrence `json:"occurrences"`
}

// ListRegistrantsQuery holds the query parameters for listing registrants
type ListRegistrantsQuery struct {
	OccurrenceID  string
	Status        string
	PageSize      int
	NextPageToken string
}

// RegistrantsPageResponse represents one page of a registrant listing
type RegistrantsPageResponse struct {
	PageSize      int          `json:"page_size"`
	TotalRecords  int          `json:"total_records"`
	NextPageToken string       `json:"next_page_token"`
	Registrants   []Registrant `json:"registrants"`
}

// Registrant represents a Zoom webinar registrant
type Registrant struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	JoinURL   string `json:"join_url"`
	Status    string `json:"status"`
}

// CreateRegistrantRequest represents the request to register someone for a webinar
type CreateRegistrantRequest struct {
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone,omitempty"`
	OccurrenceIDs string `json:"occurrence_ids,omitempty"`
}

// CreateRegistrantResponse represents the response from registering someone
type CreateRegistrantResponse struct {
	ID           int64               `json:"id"`
	RegistrantID string              `json:"registrant_id"`
	JoinURL      string              `json:"join_url"`
	Topic        string              `json:"topic"`
	StartTime    string              `json:"start_time"`
	Occurrences  []WebinarOccurrence `json:"occurrences"`
}

// GetWebinar fetches a webinar, including its occurrence list
// This is a pure API call with no business logic
func (c *Client) GetWebinar(ctx context.Context, webinarID string) (*GetWebinarResponse, error) {
	path := fmt.Sprintf("/webinars/%s", url.PathEscape(webinarID))
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	var webinarResp GetWebinarResponse
	if err := json.NewDecoder(resp.Body).Decode(&webinarResp); err != nil {
		return nil, fmt.Errorf("failed to decode webinar response: %w", err)
	}

	return &webinarResp, nil
}

// ListRegistrants fetches one page of a webinar's registrants
// This is a pure API call with no business logic
func (c *Client) ListRegistrants(ctx context.Context, webinarID string, query ListRegistrantsQuery) (*RegistrantsPageResponse, error) {
	if query.PageSize <= 0 {
		query.PageSize = DefaultRegistrantPageSize
	}

	params := url.Values{}
	params.Set("page_size", strconv.Itoa(query.PageSize))
	if query.Status != "" {
		params.Set("status", query.Status)
	}
	if query.OccurrenceID != "" {
		params.Set("occurrence_id", query.OccurrenceID)
	}
	if query.NextPageToken != "" {
		params.Set("next_page_token", query.NextPageToken)
	}

	path := fmt.Sprintf("/webinars/%s/registrants?%s", url.PathEscape(webinarID), params.Encode())
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	var pageResp RegistrantsPageResponse
	if err := json.NewDecoder(resp.Body).Decode(&pageResp); err != nil {
		return nil, fmt.Errorf("failed to decode registrants response: %w", err)
	}

	return &pageResp, nil
}

// CreateRegistrant registers a person for a webinar occurrence
// This is a pure API call with no business logic
func (c *Client) CreateRegistrant(ctx context.Context, webinarID string, request *CreateRegistrantRequest) (*CreateRegistrantResponse, error) {
	path := fmt.Sprintf("/webinars/%s/registrants", url.PathEscape(webinarID))
	resp, err := c.doRequest(ctx, http.MethodPost, path, request)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	var registrantResp CreateRegistrantResponse
	if err := json.NewDecoder(resp.Body).Decode(&registrantResp); err != nil {
		return nil, fmt.Errorf("failed to decode registrant response: %w", err)
	}

	return &registrantResp, nil
}
