package models

import "time"

// SessionState represents the phase a workflow session is in.
// Transitions are strictly forward; FAILED is terminal and absorbing.
type SessionState string

const (
	StateTriggered         SessionState = "triggered"
	StateScanning          SessionState = "scanning"
	StateScanComplete      SessionState = "scan_complete"
	StateInterviewing      SessionState = "interviewing"
	StateInterviewComplete SessionState = "interview_complete"
	StateArchiving         SessionState = "archiving"
	StateArchived          SessionState = "archived"
	StateFailed            SessionState = "failed"
)

// Progress maps a state to its percent completion.
func (s SessionState) Progress() int {
	switch s {
	case StateTriggered:
		return 10
	case StateScanning:
		return 25
	case StateScanComplete:
		return 40
	case StateInterviewing:
		return 60
	case StateInterviewComplete:
		return 80
	case StateArchiving:
		return 90
	case StateArchived:
		return 100
	default:
		return 0
	}
}

// Terminal reports whether no further phase may run from this state.
func (s SessionState) Terminal() bool {
	return s == StateArchived || s == StateFailed
}

// SessionError is one structured entry in a session's append-only error log.
type SessionError struct {
	Timestamp time.Time
	Code      string
	Message   string
}

// InterviewResponse pairs a generated question with the interviewee's answer.
type InterviewResponse struct {
	Question string
	Answer   string
}

// InterviewContext summarizes the scan findings handed to the interviewer.
type InterviewContext struct {
	IntensityScore      float64
	CriticalTicketCount int
	ComplexChangeCount  int
	ArtifactCount       int
}

// InterviewResult holds what the interview phase produced.
type InterviewResult struct {
	Questions      []Question
	ContextualInfo InterviewContext
	Artifacts      []CodeArtifact
}

// ArchiveResult holds what the archive phase produced.
type ArchiveResult struct {
	Artifact *KnowledgeArtifact
	Location ArchiveLocation
}

// WorkflowSession tracks one employee's progress through
// scan -> interview -> archive. Mutated only by the orchestrator.
type WorkflowSession struct {
	ID          string
	EmployeeID  string
	TriggeredBy string
	Department  string
	Role        string
	TriggeredAt time.Time

	State    SessionState
	Progress int

	ScanResults      *IntensityReport
	InterviewResults *InterviewResult
	ArchiveResults   *ArchiveResult

	Errors []SessionError
}
