// Package archive formats knowledge artifacts and persists them to a
// document store.
package archive

import (
	"context"
	"time"

	"github.com/debriefhq/debrief/internal/models"
)

// Document is a formatted artifact ready to be stored.
type Document struct {
	Title      string
	EmployeeID string
	SessionID  string
	ArtifactID string
	Body       string
	Confidence float64
	Tags       []string
	CreatedAt  time.Time
}

// Sink persists a formatted document and returns where it landed.
type Sink interface {
	Store(ctx context.Context, doc Document) (models.ArchiveLocation, error)
}

// Record is one stored archive entry as read back from a sink that
// supports listing.
type Record struct {
	LocationID string
	Title      string
	EmployeeID string
	SessionID  string
	ArtifactID string
	Body       string
	Confidence float64
	Tags       []string
	CreatedAt  time.Time
}
