// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

// Package crm implements the CRM contact-search client. Responses are
// free-text search candidates with account-dependent shapes, so the client
// is deliberately tolerant when extracting records.
package crm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joinflow/webinar-join-service/internal/domain"
	"github.com/joinflow/webinar-join-service/internal/domain/models"
	"github.com/joinflow/webinar-join-service/internal/logging"
)

const (
	// DefaultBaseURL is the primary CRM REST host
	DefaultBaseURL = "https://rest.gohighlevel.com"
	// FallbackBaseURL is the alternate host some accounts are served from
	FallbackBaseURL = "https://services.leadconnectorhq.com"
	// DefaultDisplayNameFieldKey is the custom field holding the preferred
	// webinar display name
	DefaultDisplayNameFieldKey = "contact.zoom_display_name"
	// DefaultClientTimeout is the default HTTP client timeout for CRM requests
	DefaultClientTimeout = 15 * time.Second

	// Custom-field schema scan bounds. The field id is schema-level and does
	// not change per request, so the scan runs at most once per process.
	customFieldPageSize = 200
	customFieldMaxPages = 40

	// maxRetryAfter caps the server-supplied rate limit hint so a bad header
	// cannot stall a request indefinitely.
	maxRetryAfter = 30 * time.Second
)

// Config holds the configuration for the CRM client
type Config struct {
	APIKey string
	// BaseURLs are tried in order until one answers; defaults to the primary
	// and fallback hosts.
	BaseURLs []string
	// DisplayNameFieldKey is the schema key of the display-name custom field.
	DisplayNameFieldKey string
	Timeout             time.Duration
}

// Client is a CRM API client implementing domain.ContactReader
type Client struct {
	httpClient *http.Client
	config     Config
	fieldIDs   *gocache.Cache // custom field key -> field id memo
}

var _ domain.ContactReader = (*Client)(nil)

// NewClient creates a new CRM client
func NewClient(config Config) *Client {
	if len(config.BaseURLs) == 0 {
		config.BaseURLs = []string{DefaultBaseURL, FallbackBaseURL}
	}
	for i, base := range config.BaseURLs {
		config.BaseURLs[i] = strings.TrimRight(base, "/")
	}
	if config.DisplayNameFieldKey == "" {
		config.DisplayNameFieldKey = DefaultDisplayNameFieldKey
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		config:   config,
		fieldIDs: gocache.New(gocache.NoExpiration, gocache.NoExpiration),
	}
}

// InvalidateFieldCache drops the memoized custom-field ids, forcing the next
// read to re-resolve them against the CRM schema.
func (c *Client) InvalidateFieldCache() {
	c.fieldIDs.Flush()
}

// SearchContacts returns one page of contact candidates for a search query
func (c *Client) SearchContacts(ctx context.Context, query string, page, pageSize int) ([]models.Contact, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(pageSize))
	params.Set("page", strconv.Itoa(page))

	body, err := c.get(ctx, "/v1/contacts/", params)
	if err != nil {
		return nil, err
	}

	records := extractRecords(body, "contacts", "items", "data")
	contacts := make([]models.Contact, 0, len(records))
	for _, raw := range records {
		var rec contactRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		contacts = append(contacts, rec.toModel())
	}
	return contacts, nil
}

// ContactDisplayName reads the display-name custom field from a contact.
// Returns an empty string when the field is not configured or not set.
func (c *Client) ContactDisplayName(ctx context.Context, contact *models.Contact) (string, error) {
	if contact == nil {
		return "", nil
	}

	fieldID, err := c.displayNameFieldID(ctx)
	if err != nil {
		return "", err
	}
	if fieldID == "" {
		return "", nil
	}

	for _, kv := range contact.CustomValues {
		if kv.ID != fieldID {
			continue
		}
		if s := strings.TrimSpace(valueToString(kv.Value)); s != "" {
			return s, nil
		}
	}
	return "", nil
}

// displayNameFieldID resolves the configured field key to the schema field id,
// memoizing the result (including "not found") for the process lifetime.
func (c *Client) displayNameFieldID(ctx context.Context) (string, error) {
	key := c.config.DisplayNameFieldKey
	if cached, ok := c.fieldIDs.Get(key); ok {
		return cached.(string), nil
	}

	fieldID := ""
	for page := 1; page <= customFieldMaxPages; page++ {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(customFieldPageSize))
		params.Set("page", strconv.Itoa(page))

		body, err := c.get(ctx, "/v1/custom-fields/", params)
		if err != nil {
			return "", err
		}

		records := extractRecords(body, "customFields", "fields", "data")
		if len(records) == 0 {
			break
		}
		for _, raw := range records {
			var field struct {
				ID       string `json:"id"`
				FieldKey string `json:"fieldKey"`
				Name     string `json:"name"`
			}
			if err := json.Unmarshal(raw, &field); err != nil {
				continue
			}
			if field.FieldKey == key || field.Name == key {
				fieldID = field.ID
				break
			}
		}
		if fieldID != "" || len(records) < customFieldPageSize {
			break
		}
	}

	c.fieldIDs.Set(key, fieldID, gocache.NoExpiration)
	if fieldID == "" {
		slog.WarnContext(ctx, "display-name custom field not found in CRM schema", "field_key", key)
	}
	return fieldID, nil
}

// get performs a GET against each configured base URL in order until one
// succeeds. A 429 is retried once on the same host after honoring the
// server's Retry-After hint.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	query := ""
	if len(params) > 0 {
		query = "?" + params.Encode()
	}

	var failures []error
	for _, base := range c.config.BaseURLs {
		requestURL := base + path + query

		body, retryAfter, err := c.getOnce(ctx, requestURL)
		if err == nil {
			return body, nil
		}
		if retryAfter > 0 {
			slog.WarnContext(ctx, "CRM rate limited, honoring retry hint",
				"url", base+path,
				"retry_after", retryAfter.String())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryAfter):
			}
			body, _, err = c.getOnce(ctx, requestURL)
			if err == nil {
				return body, nil
			}
		}
		failures = append(failures, fmt.Errorf("%s: %w", base, err))
	}

	return nil, fmt.Errorf("all CRM hosts failed for %s: %w", path, errors.Join(failures...))
}

// getOnce performs a single GET request. A positive retryAfter is returned
// alongside the error when the server answered 429 with a usable hint.
func (c *Client) getOnce(ctx context.Context, requestURL string) (body []byte, retryAfter time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode == http.StatusOK {
		return body, 0, nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	}
	slog.DebugContext(ctx, "CRM request failed",
		"status", resp.StatusCode,
		"body", string(body),
		logging.ErrKey, fmt.Errorf("status: %d", resp.StatusCode))
	return nil, retryAfter, fmt.Errorf("CRM request failed with status %d", resp.StatusCode)
}

func parseRetryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds <= 0 {
		return 0
	}
	d := time.Duration(seconds) * time.Second
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d
}

// contactRecord is the CRM wire shape of a contact. Some accounts return
// custom values under "customField", others under "customFields".
type contactRecord struct {
	ID           string          `json:"id"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	CustomField  []customFieldKV `json:"customField"`
	CustomFields []customFieldKV `json:"customFields"`
}

type customFieldKV struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

func (r contactRecord) toModel() models.Contact {
	kvs := r.CustomField
	kvs = append(kvs, r.CustomFields...)
	customValues := make([]models.CustomFieldValue, 0, len(kvs))
	for _, kv := range kvs {
		if kv.ID == "" {
			continue
		}
		customValues = append(customValues, models.CustomFieldValue{ID: kv.ID, Value: kv.Value})
	}
	return models.Contact{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        strings.TrimSpace(r.Email),
		Phone:        strings.TrimSpace(r.Phone),
		CustomValues: customValues,
	}
}

// extractRecords pulls the record array out of a response body, trying the
// known envelope keys first and falling back to the first array of objects.
func extractRecords(body []byte, preferredKeys ...string) []json.RawMessage {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}

	tryParse := func(raw json.RawMessage) []json.RawMessage {
		var records []json.RawMessage
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil
		}
		if len(records) == 0 || !looksLikeObject(records[0]) {
			return nil
		}
		return records
	}

	for _, key := range preferredKeys {
		if raw, ok := envelope[key]; ok {
			if records := tryParse(raw); records != nil {
				return records
			}
		}
	}
	for _, raw := range envelope {
		if records := tryParse(raw); records != nil {
			return records
		}
	}
	return nil
}

func looksLikeObject(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{")
}

// valueToString coerces a CRM custom-field value to a string. Values may be
// strings, numbers, arrays, or labeled objects depending on the field type.
func valueToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := valueToString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case map[string]any:
		for _, key := range []string{"label", "value", "name", "title"} {
			if s, ok := val[key].(string); ok {
				return s
			}
		}
		if encoded, err := json.Marshal(val); err == nil {
			return string(encoded)
		}
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
