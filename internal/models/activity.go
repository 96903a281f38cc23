package models

import "time"

// RecordKind distinguishes the two source shapes an activity record can take.
type RecordKind string

const (
	RecordKindTicket        RecordKind = "ticket"
	RecordKindChangeRequest RecordKind = "change_request"
)

// ActivityRecord is the uniform internal shape for a unit of recent work,
// normalized from a ticket or change-request payload. Immutable once built.
type ActivityRecord struct {
	Kind      RecordKind
	ID        string
	Author    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time

	// DocSignal counts explicit documentation activity on the record itself
	// (ticket comments, linked docs).
	DocSignal int

	// DocLinks counts external documentation references found in the
	// record's description.
	DocLinks int

	// Change-request size metrics. Zero for tickets.
	Additions      int
	Deletions      int
	FilesChanged   int
	ReviewComments int
}

// Ref returns the human-readable reference used in reports and
// traceability checks, e.g. "PR #402" or "TICK-17".
func (r ActivityRecord) Ref() string {
	if r.Kind == RecordKindChangeRequest {
		return "PR #" + r.ID
	}
	return r.ID
}
