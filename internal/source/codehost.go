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

// CodeHostClient fetches change-request activity from a code host's
// review API.
type CodeHostClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewCodeHostClient returns a code-host client for the given base URL.
func NewCodeHostClient(baseURL, token string) *CodeHostClient {
	return &CodeHostClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchRecords returns the user's change requests updated since the given
// time, normalized into activity records.
func (c *CodeHostClient) FetchRecords(ctx context.Context, userID string, since time.Time) ([]models.ActivityRecord, error) {
	q := url.Values{}
	q.Set("author", userID)
	q.Set("since", since.Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/pulls?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request", errs.ErrAPI)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: code host unreachable", errs.ErrNetwork)
	}
	defer resp.Body.Close()

	if err := normalizeStatus(resp.StatusCode); err != nil {
		return nil, fmt.Errorf("fetch change requests: %w", err)
	}

	var payloads []activity.ChangePayload
	if err := json.NewDecoder(resp.Body).Decode(&payloads); err != nil {
		return nil, fmt.Errorf("%w: malformed code host response", errs.ErrAPI)
	}

	records := make([]models.ActivityRecord, 0, len(payloads))
	for _, p := range payloads {
		records = append(records, activity.NormalizeChange(p))
	}
	return records, nil
}
