package workflow

import (
	"fmt"

	"github.com/debriefhq/debrief/internal/models"
)

// ValidationResult lists the human-readable violations found in a session.
type ValidationResult struct {
	IsValid bool
	Errors  []string
}

// Validate cross-checks a finished session: correct terminal state, all
// phase results present, and referential integrity between the scan's
// specific artifacts and the archived artifact's source list. Never mutates
// the session.
func Validate(session *models.WorkflowSession) *ValidationResult {
	result := &ValidationResult{}

	if session.State != models.StateArchived {
		result.Errors = append(result.Errors, fmt.Sprintf("session is %s, expected %s", session.State, models.StateArchived))
	}
	if session.ScanResults == nil {
		result.Errors = append(result.Errors, "scan results are missing")
	}
	if session.InterviewResults == nil {
		result.Errors = append(result.Errors, "interview results are missing")
	}
	if session.ArchiveResults == nil || session.ArchiveResults.Artifact == nil {
		result.Errors = append(result.Errors, "archive results are missing")
	}

	if session.ScanResults != nil && session.ArchiveResults != nil && session.ArchiveResults.Artifact != nil {
		if len(session.ScanResults.SpecificArtifacts) > 0 && len(session.ArchiveResults.Artifact.SourceArtifacts) == 0 {
			result.Errors = append(result.Errors,
				"scan found specific artifacts but the archived artifact references none")
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
