package source

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/debriefhq/debrief/internal/activity"
	"github.com/debriefhq/debrief/internal/models"
)

// FileSource reads activity records from a local YAML snapshot. Useful for
// offline runs and for scanning exported data without live credentials.
type FileSource struct {
	path string
}

// NewFileSource returns a source backed by the given YAML file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

type fileSnapshot struct {
	Tickets []activity.TicketPayload `yaml:"tickets"`
	Changes []activity.ChangePayload `yaml:"changes"`
}

// FetchRecords loads the snapshot and returns the user's records updated
// since the given time. An empty userID returns every author's records.
func (f *FileSource) FetchRecords(_ context.Context, userID string, since time.Time) ([]models.ActivityRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read activity snapshot: %w", err)
	}

	var snap fileSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse activity snapshot: %w", err)
	}

	var records []models.ActivityRecord
	for _, t := range snap.Tickets {
		records = append(records, activity.NormalizeTicket(t))
	}
	for _, c := range snap.Changes {
		records = append(records, activity.NormalizeChange(c))
	}

	filtered := records[:0]
	for _, r := range records {
		if userID != "" && r.Author != userID {
			continue
		}
		if r.UpdatedAt.Before(since) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}
