// Package source fetches a user's recent work items from their systems of
// record and normalizes them into activity records.
package source

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/debriefhq/debrief/internal/models"
)

// ActivitySource fetches the activity records for one user updated since the
// given time.
type ActivitySource interface {
	FetchRecords(ctx context.Context, userID string, since time.Time) ([]models.ActivityRecord, error)
}

// Multi fans in several sources. A failing source contributes nothing rather
// than aborting the fetch; Multi only fails when every source failed.
type Multi struct {
	sources []ActivitySource
}

// NewMulti combines sources into one.
func NewMulti(sources ...ActivitySource) *Multi {
	return &Multi{sources: sources}
}

// FetchRecords concatenates records from every source that responded.
func (m *Multi) FetchRecords(ctx context.Context, userID string, since time.Time) ([]models.ActivityRecord, error) {
	var records []models.ActivityRecord
	var failures []error
	for _, s := range m.sources {
		got, err := s.FetchRecords(ctx, userID, since)
		if err != nil {
			slog.Warn("activity source failed", "user_id", userID, "error", err)
			failures = append(failures, err)
			continue
		}
		records = append(records, got...)
	}
	if len(records) == 0 && len(failures) == len(m.sources) && len(failures) > 0 {
		return nil, errors.Join(failures...)
	}
	return records, nil
}
