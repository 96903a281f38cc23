// Package api exposes the workflow operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/debriefhq/debrief/internal/archive"
	"github.com/debriefhq/debrief/internal/errs"
	"github.com/debriefhq/debrief/internal/models"
	"github.com/debriefhq/debrief/internal/workflow"
)

// ArchiveLister reads back stored archives, when the configured sink
// supports it.
type ArchiveLister interface {
	List(ctx context.Context, employeeID string) ([]*archive.Record, error)
	Get(ctx context.Context, locationID string) (*archive.Record, error)
}

// Server provides the REST API handlers.
type Server struct {
	orch     *workflow.Orchestrator
	archives ArchiveLister
}

// NewServer creates a new API server. The archives lister may be nil when
// the sink does not support reads.
func NewServer(orch *workflow.Orchestrator, archives ArchiveLister) *Server {
	return &Server{orch: orch, archives: archives}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/scan", s.scan)

	mux.HandleFunc("POST /api/v1/workflows", s.triggerWorkflow)
	mux.HandleFunc("GET /api/v1/workflows", s.listWorkflows)
	mux.HandleFunc("POST /api/v1/workflows/complete", s.completeWorkflow)
	mux.HandleFunc("GET /api/v1/workflows/{id}", s.getWorkflow)
	mux.HandleFunc("POST /api/v1/workflows/{id}/scan", s.scanPhase)
	mux.HandleFunc("POST /api/v1/workflows/{id}/interview", s.interviewPhase)
	mux.HandleFunc("POST /api/v1/workflows/{id}/archive", s.archivePhase)
	mux.HandleFunc("GET /api/v1/workflows/{id}/validation", s.validateWorkflow)

	mux.HandleFunc("GET /api/v1/archives", s.listArchives)
	mux.HandleFunc("GET /api/v1/archives/{id}", s.getArchive)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the error taxonomy to HTTP status codes without
// leaking upstream details.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrPhaseOrder):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, errs.PermissionMessage)
	case errors.Is(err, errs.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// --- Scan ---

func (s *Server) scan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	result := s.orch.ScanLastSixMonths(r.Context(), req.UserID)
	writeJSON(w, http.StatusOK, result)
}

// --- Workflows ---

func (s *Server) triggerWorkflow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID  string `json:"employee_id"`
		TriggeredBy string `json:"triggered_by"`
		Department  string `json:"department"`
		Role        string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	session, err := s.orch.Trigger(workflow.TriggerParams{
		EmployeeID:  req.EmployeeID,
		TriggeredBy: req.TriggeredBy,
		Department:  req.Department,
		Role:        req.Role,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	sessions := s.orch.ListActiveSessions()
	if sessions == nil {
		sessions = []*models.WorkflowSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	session, err := s.orch.GetSession(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) scanPhase(w http.ResponseWriter, r *http.Request) {
	report, err := s.orch.ExecuteScanPhase(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) interviewPhase(w http.ResponseWriter, r *http.Request) {
	result, err := s.orch.ExecuteInterviewPhase(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type answersRequest struct {
	Answers []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	} `json:"answers"`
}

func (req answersRequest) responses() []models.InterviewResponse {
	responses := make([]models.InterviewResponse, 0, len(req.Answers))
	for _, a := range req.Answers {
		responses = append(responses, models.InterviewResponse{Question: a.Question, Answer: a.Answer})
	}
	return responses
}

func (s *Server) archivePhase(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	result, err := s.orch.ExecuteArchivePhase(r.Context(), r.PathValue("id"), req.responses())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) completeWorkflow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID  string `json:"employee_id"`
		TriggeredBy string `json:"triggered_by"`
		Department  string `json:"department"`
		Role        string `json:"role"`
		answersRequest
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	session, err := s.orch.ExecuteCompleteWorkflow(r.Context(), workflow.TriggerParams{
		EmployeeID:  req.EmployeeID,
		TriggeredBy: req.TriggeredBy,
		Department:  req.Department,
		Role:        req.Role,
	}, req.responses())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) validateWorkflow(w http.ResponseWriter, r *http.Request) {
	result, err := s.orch.ValidateCompletion(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Archives ---

func (s *Server) listArchives(w http.ResponseWriter, r *http.Request) {
	if s.archives == nil {
		writeError(w, http.StatusNotImplemented, "configured archive sink does not support listing")
		return
	}
	records, err := s.archives.List(r.Context(), r.URL.Query().Get("employee_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []*archive.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) getArchive(w http.ResponseWriter, r *http.Request) {
	if s.archives == nil {
		writeError(w, http.StatusNotImplemented, "configured archive sink does not support listing")
		return
	}
	record, err := s.archives.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, record)
}
