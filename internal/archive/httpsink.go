package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/debriefhq/debrief/internal/errs"
	"github.com/debriefhq/debrief/internal/models"
)

// HTTPSink stores formatted documents in a remote document store.
type HTTPSink struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPSink returns a sink posting documents to the given base URL.
func NewHTTPSink(baseURL, token string) *HTTPSink {
	return &HTTPSink{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type storeRequest struct {
	Title      string   `json:"title"`
	EmployeeID string   `json:"employeeId"`
	SessionID  string   `json:"sessionId"`
	Body       string   `json:"body"`
	Tags       []string `json:"tags"`
}

type storeResponse struct {
	LocationID string `json:"locationId"`
	URL        string `json:"url"`
}

// Store posts the document and returns the remote location.
func (s *HTTPSink) Store(ctx context.Context, doc Document) (models.ArchiveLocation, error) {
	payload, err := json.Marshal(storeRequest{
		Title:      doc.Title,
		EmployeeID: doc.EmployeeID,
		SessionID:  doc.SessionID,
		Body:       doc.Body,
		Tags:       doc.Tags,
	})
	if err != nil {
		return models.ArchiveLocation{}, fmt.Errorf("encode document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/v1/documents", bytes.NewReader(payload))
	if err != nil {
		return models.ArchiveLocation{}, fmt.Errorf("%w: build request", errs.ErrAPI)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return models.ArchiveLocation{}, fmt.Errorf("%w: document store unreachable", errs.ErrNetwork)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return models.ArchiveLocation{}, fmt.Errorf("%w: %s", errs.ErrPermissionDenied, errs.PermissionMessage)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return models.ArchiveLocation{}, fmt.Errorf("%w: document store rejected the artifact", errs.ErrAPI)
	}

	var body storeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.ArchiveLocation{}, fmt.Errorf("%w: malformed document store response", errs.ErrAPI)
	}
	return models.ArchiveLocation{ID: body.LocationID, URL: body.URL}, nil
}
