package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/debriefhq/debrief/internal/activity"
	"github.com/debriefhq/debrief/internal/errs"
	"github.com/debriefhq/debrief/internal/models"
)

// TrackerClient fetches ticket activity from a REST work-item tracker.
type TrackerClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewTrackerClient returns a tracker client for the given base URL.
func NewTrackerClient(baseURL, token string) *TrackerClient {
	return &TrackerClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchRecords returns the user's tickets updated since the given time,
// normalized into activity records.
func (c *TrackerClient) FetchRecords(ctx context.Context, userID string, since time.Time) ([]models.ActivityRecord, error) {
	q := url.Values{}
	q.Set("assignee", userID)
	q.Set("updatedSince", since.Format(time.RFC3339))

	var payloads []activity.TicketPayload
	if err := c.getJSON(ctx, "/api/v1/issues?"+q.Encode(), &payloads); err != nil {
		return nil, fmt.Errorf("fetch tickets: %w", err)
	}

	records := make([]models.ActivityRecord, 0, len(payloads))
	for _, p := range payloads {
		records = append(records, activity.NormalizeTicket(p))
	}
	return records, nil
}

func (c *TrackerClient) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: build request", errs.ErrAPI)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: tracker unreachable", errs.ErrNetwork)
	}
	defer resp.Body.Close()

	if err := normalizeStatus(resp.StatusCode); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed tracker response", errs.ErrAPI)
	}
	return nil
}

// normalizeStatus maps an HTTP status to the error taxonomy. The numeric
// code is deliberately dropped so it can never leak into a caller-visible
// message.
func normalizeStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", errs.ErrPermissionDenied, errs.PermissionMessage)
	case status == http.StatusNotFound:
		return errs.ErrNotFound
	case status == http.StatusTooManyRequests:
		return errs.ErrRateLimited
	default:
		return fmt.Errorf("%w: upstream request failed", errs.ErrAPI)
	}
}
