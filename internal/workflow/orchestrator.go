package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/debriefhq/debrief/internal/activity"
	"github.com/debriefhq/debrief/internal/archive"
	"github.com/debriefhq/debrief/internal/errs"
	"github.com/debriefhq/debrief/internal/interview"
	"github.com/debriefhq/debrief/internal/knowledge"
	"github.com/debriefhq/debrief/internal/models"
	"github.com/debriefhq/debrief/internal/source"
)

// Enricher optionally polishes the archived document body. The heuristic
// pipeline never depends on it; a nil enricher or an enricher error leaves
// the body untouched.
type Enricher interface {
	Polish(ctx context.Context, body string) (string, error)
}

// Config wires the orchestrator's collaborators. Store, Scanner, Source, and
// Sink are required; Classifier defaults to the keyword classifier.
type Config struct {
	Store      SessionStore
	Scanner    *activity.Scanner
	Source     source.ActivitySource
	Sink       archive.Sink
	Classifier knowledge.Classifier
	Enricher   Enricher
	Now        func() time.Time
}

// Orchestrator owns the workflow sessions and their phase transitions.
type Orchestrator struct {
	store      SessionStore
	scanner    *activity.Scanner
	source     source.ActivitySource
	sink       archive.Sink
	classifier knowledge.Classifier
	enricher   Enricher
	now        func() time.Time
}

// New builds an orchestrator from the config.
func New(cfg Config) *Orchestrator {
	if cfg.Classifier == nil {
		cfg.Classifier = knowledge.KeywordClassifier{}
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Orchestrator{
		store:      cfg.Store,
		scanner:    cfg.Scanner,
		source:     cfg.Source,
		sink:       cfg.Sink,
		classifier: cfg.Classifier,
		enricher:   cfg.Enricher,
		now:        cfg.Now,
	}
}

// TriggerParams identifies who is offboarding and who started the workflow.
type TriggerParams struct {
	EmployeeID  string
	TriggeredBy string
	Department  string
	Role        string
}

// Trigger validates the params and creates a session in state TRIGGERED.
func (o *Orchestrator) Trigger(params TriggerParams) (*models.WorkflowSession, error) {
	if params.EmployeeID == "" {
		return nil, errs.Validation("employeeId is required")
	}
	if params.TriggeredBy == "" {
		return nil, errs.Validation("triggeredBy is required")
	}

	session := &models.WorkflowSession{
		ID:          ulid.Make().String(),
		EmployeeID:  params.EmployeeID,
		TriggeredBy: params.TriggeredBy,
		Department:  params.Department,
		Role:        params.Role,
		TriggeredAt: o.now(),
		State:       models.StateTriggered,
		Progress:    models.StateTriggered.Progress(),
	}
	o.store.Put(session)

	slog.Info("workflow triggered", "session_id", session.ID, "employee_id", params.EmployeeID, "triggered_by", params.TriggeredBy)
	return cloneSession(session), nil
}

// ExecuteScanPhase runs the activity scan for the session's employee.
// A data-source failure degrades to an empty scan and is only visible in the
// session's error log; the phase itself still completes.
func (o *Orchestrator) ExecuteScanPhase(ctx context.Context, sessionID string) (*models.IntensityReport, error) {
	session, err := o.advance(sessionID, models.StateTriggered, models.StateScanning)
	if err != nil {
		return nil, err
	}

	now := o.now()
	since := now.AddDate(0, -o.scanner.Config().WindowMonths, 0)

	var records []models.ActivityRecord
	if o.source != nil {
		records, err = o.source.FetchRecords(ctx, session.EmployeeID, since)
		if err != nil {
			// Never block offboarding on data availability.
			o.recordError(sessionID, err)
			records = nil
		}
	}

	report := o.scanner.ScanUser(session.EmployeeID, records, now)
	if report.RiskLevel == "" {
		report.RiskLevel = models.RiskLevelLow
	}

	updated, ok := o.store.CompareAndSwap(sessionID, models.StateScanning, func(s *models.WorkflowSession) {
		s.ScanResults = &report
		s.State = models.StateScanComplete
	})
	if !ok {
		return nil, o.fail(sessionID, errs.PhaseOrder("session %s left scanning state mid-phase", sessionID))
	}

	slog.Info("scan phase complete", "session_id", sessionID, "risk", report.RiskLevel, "score", report.UndocumentedIntensityScore)
	return updated.ScanResults, nil
}

// ExecuteInterviewPhase projects the scan findings into code artifacts and
// generates the interview questions.
func (o *Orchestrator) ExecuteInterviewPhase(ctx context.Context, sessionID string) (*models.InterviewResult, error) {
	session, ok := o.store.Get(sessionID)
	if !ok {
		return nil, errs.NotFound("session", sessionID)
	}
	if session.ScanResults == nil {
		return nil, errs.PhaseOrder("session %s has no scan results; run the scan phase first", sessionID)
	}

	if _, err := o.advance(sessionID, models.StateScanComplete, models.StateInterviewing); err != nil {
		return nil, err
	}

	artifacts := o.projectArtifacts(session.ScanResults)
	questions := interview.Generate(artifacts)

	result := &models.InterviewResult{
		Questions: questions,
		Artifacts: artifacts,
		ContextualInfo: models.InterviewContext{
			IntensityScore:      session.ScanResults.UndocumentedIntensityScore,
			CriticalTicketCount: len(session.ScanResults.CriticalTickets),
			ComplexChangeCount:  len(session.ScanResults.HighComplexityChanges),
			ArtifactCount:       len(artifacts),
		},
	}

	updated, ok := o.store.CompareAndSwap(sessionID, models.StateInterviewing, func(s *models.WorkflowSession) {
		s.InterviewResults = result
		s.State = models.StateInterviewComplete
	})
	if !ok {
		return nil, o.fail(sessionID, errs.PhaseOrder("session %s left interviewing state mid-phase", sessionID))
	}

	slog.Info("interview phase complete", "session_id", sessionID, "questions", len(questions), "artifacts", len(artifacts))
	return updated.InterviewResults, nil
}

// ExecuteArchivePhase classifies the answers, builds the knowledge artifact,
// and hands it to the archival sink.
func (o *Orchestrator) ExecuteArchivePhase(ctx context.Context, sessionID string, answers []models.InterviewResponse) (*models.ArchiveResult, error) {
	session, ok := o.store.Get(sessionID)
	if !ok {
		return nil, errs.NotFound("session", sessionID)
	}
	if session.InterviewResults == nil {
		return nil, errs.PhaseOrder("session %s has no interview results; run the interview phase first", sessionID)
	}

	if _, err := o.advance(sessionID, models.StateInterviewComplete, models.StateArchiving); err != nil {
		return nil, err
	}

	kctx := knowledge.Context{
		SessionID:  sessionID,
		EmployeeID: session.EmployeeID,
		Artifacts:  session.InterviewResults.Artifacts,
		Questions:  session.InterviewResults.Questions,
	}

	tacit, err := knowledge.ExtractTacit(answers, kctx, o.classifier)
	if err != nil {
		return nil, o.fail(sessionID, err)
	}
	artifact, err := knowledge.Extract(answers, kctx)
	if err != nil {
		return nil, o.fail(sessionID, err)
	}

	if tacit != nil {
		artifact.Confidence = tacit.OverallConfidence
	} else {
		artifact.Confidence = 0.5
	}
	o.linkRelated(artifact, session.ScanResults)

	doc := archive.Format(artifact, tacit, session)
	if o.enricher != nil {
		if polished, perr := o.enricher.Polish(ctx, doc.Body); perr == nil && polished != "" {
			doc.Body = polished
		} else if perr != nil {
			slog.Warn("archive enrichment skipped", "session_id", sessionID, "error", perr)
		}
	}

	location, err := o.sink.Store(ctx, doc)
	if err != nil {
		return nil, o.fail(sessionID, fmt.Errorf("archive artifact: %w", err))
	}

	result := &models.ArchiveResult{Artifact: artifact, Location: location}
	updated, ok := o.store.CompareAndSwap(sessionID, models.StateArchiving, func(s *models.WorkflowSession) {
		s.ArchiveResults = result
		s.State = models.StateArchived
	})
	if !ok {
		return nil, o.fail(sessionID, errs.PhaseOrder("session %s left archiving state mid-phase", sessionID))
	}

	slog.Info("archive phase complete", "session_id", sessionID, "location", location.ID, "confidence", artifact.Confidence)
	return updated.ArchiveResults, nil
}

// ExecuteCompleteWorkflow runs trigger -> scan -> interview -> archive,
// propagating the first failure.
func (o *Orchestrator) ExecuteCompleteWorkflow(ctx context.Context, params TriggerParams, answers []models.InterviewResponse) (*models.WorkflowSession, error) {
	session, err := o.Trigger(params)
	if err != nil {
		return nil, err
	}
	if _, err := o.ExecuteScanPhase(ctx, session.ID); err != nil {
		return nil, err
	}
	if _, err := o.ExecuteInterviewPhase(ctx, session.ID); err != nil {
		return nil, err
	}
	if _, err := o.ExecuteArchivePhase(ctx, session.ID, answers); err != nil {
		return nil, err
	}

	final, ok := o.store.Get(session.ID)
	if !ok {
		return nil, errs.NotFound("session", session.ID)
	}
	return final, nil
}

// GetSession returns a snapshot of the session.
func (o *Orchestrator) GetSession(sessionID string) (*models.WorkflowSession, error) {
	session, ok := o.store.Get(sessionID)
	if !ok {
		return nil, errs.NotFound("session", sessionID)
	}
	return session, nil
}

// ListActiveSessions returns snapshots of every session.
func (o *Orchestrator) ListActiveSessions() []*models.WorkflowSession {
	return o.store.List()
}

// ValidateCompletion cross-checks a finished session for referential
// integrity.
func (o *Orchestrator) ValidateCompletion(sessionID string) (*ValidationResult, error) {
	session, ok := o.store.Get(sessionID)
	if !ok {
		return nil, errs.NotFound("session", sessionID)
	}
	return Validate(session), nil
}

// ScanResult is the caller-facing shape of the standalone scan operation.
type ScanResult struct {
	Success bool
	Reports []models.IntensityReport
	Summary string
}

// ScanLastSixMonths runs a sessionless scan across the data sources. It
// never hard-fails the caller: an unreachable source yields an empty report
// list with Success still true.
func (o *Orchestrator) ScanLastSixMonths(ctx context.Context, userID string) *ScanResult {
	now := o.now()
	since := now.AddDate(0, -o.scanner.Config().WindowMonths, 0)

	var records []models.ActivityRecord
	if o.source != nil {
		var err error
		records, err = o.source.FetchRecords(ctx, userID, since)
		if err != nil {
			slog.Warn("scan degraded to empty: data source unavailable", "user_id", userID, "error", err)
			return &ScanResult{
				Success: true,
				Reports: []models.IntensityReport{},
				Summary: "no activity data available",
			}
		}
	}

	reports := o.scanner.Scan(records, now)
	if reports == nil {
		reports = []models.IntensityReport{}
	}

	high := 0
	for _, r := range reports {
		if r.RiskLevel == models.RiskLevelHigh {
			high++
		}
	}
	return &ScanResult{
		Success: true,
		Reports: reports,
		Summary: fmt.Sprintf("%d author(s) scanned, %d high risk", len(reports), high),
	}
}

// advance moves the session from one state to the next, rejecting
// out-of-order calls and anything after a terminal state.
func (o *Orchestrator) advance(sessionID string, from, to models.SessionState) (*models.WorkflowSession, error) {
	updated, ok := o.store.CompareAndSwap(sessionID, from, func(s *models.WorkflowSession) {
		s.State = to
	})
	if ok {
		return updated, nil
	}

	session, exists := o.store.Get(sessionID)
	if !exists {
		return nil, errs.NotFound("session", sessionID)
	}
	return nil, errs.PhaseOrder("session %s is %s, expected %s", sessionID, session.State, from)
}

// fail transitions the session to FAILED, records the error, and returns it.
func (o *Orchestrator) fail(sessionID string, cause error) error {
	o.store.Update(sessionID, func(s *models.WorkflowSession) {
		if !s.State.Terminal() {
			s.State = models.StateFailed
		}
		s.Errors = append(s.Errors, models.SessionError{
			Timestamp: o.now(),
			Code:      errs.Code(cause),
			Message:   cause.Error(),
		})
	})
	slog.Error("workflow phase failed", "session_id", sessionID, "error", cause)
	return cause
}

// recordError appends to the session's error log without failing it.
func (o *Orchestrator) recordError(sessionID string, cause error) {
	o.store.Update(sessionID, func(s *models.WorkflowSession) {
		s.Errors = append(s.Errors, models.SessionError{
			Timestamp: o.now(),
			Code:      errs.Code(cause),
			Message:   cause.Error(),
		})
	})
}

// projectArtifacts converts scan findings into interview context.
func (o *Orchestrator) projectArtifacts(report *models.IntensityReport) []models.CodeArtifact {
	artifacts := make([]models.CodeArtifact, 0, len(report.CriticalTickets)+len(report.HighComplexityChanges))
	for _, t := range report.CriticalTickets {
		artifacts = append(artifacts, models.CodeArtifact{
			ID:            t.ID,
			Type:          models.ArtifactTypeTicket,
			Title:         t.Title,
			Author:        t.Author,
			Date:          t.UpdatedAt,
			Documentation: activity.DocumentationLevel(t),
		})
	}
	for _, c := range report.HighComplexityChanges {
		artifacts = append(artifacts, models.CodeArtifact{
			ID:                   c.ID,
			Type:                 models.ArtifactTypePR,
			Title:                c.Title,
			Author:               c.Author,
			Date:                 c.UpdatedAt,
			ComplexityIndicators: o.scanner.ComplexityIndicators(c),
			Documentation:        activity.DocumentationLevel(c),
		})
	}
	return artifacts
}

// linkRelated fills the artifact's related-id lists from the scan findings.
func (o *Orchestrator) linkRelated(artifact *models.KnowledgeArtifact, report *models.IntensityReport) {
	if report == nil {
		return
	}
	for _, t := range report.CriticalTickets {
		artifact.RelatedTickets = append(artifact.RelatedTickets, t.ID)
	}
	for _, c := range report.HighComplexityChanges {
		artifact.RelatedPRs = append(artifact.RelatedPRs, c.ID)
	}
}
