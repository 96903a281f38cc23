// Package mcp exposes the offboarding workflow as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/debriefhq/debrief/internal/models"
	"github.com/debriefhq/debrief/internal/workflow"
)

// Server wraps the orchestrator and exposes it as MCP tools.
type Server struct {
	orch *workflow.Orchestrator
}

// NewServer creates the MCP server wrapper.
func NewServer(orch *workflow.Orchestrator) *Server {
	return &Server{orch: orch}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("debrief", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.scanTool())
	srv.AddTool(s.triggerTool())
	srv.AddTool(s.scanPhaseTool())
	srv.AddTool(s.interviewPhaseTool())
	srv.AddTool(s.archivePhaseTool())
	srv.AddTool(s.getSessionTool())
	srv.AddTool(s.listSessionsTool())
	srv.AddTool(s.validateTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// debrief_scan
func (s *Server) scanTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("debrief_scan",
		mcp.WithDescription("Scan the last six months of work-item and code-change activity and return per-author undocumented-intensity reports. Always succeeds; an unreachable data source yields an empty report list."),
		mcp.WithString("user_id", mcp.Description("Restrict the scan to one author")),
	)
	return tool, s.handleScan
}

func (s *Server) handleScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := request.GetString("user_id", "")
	result := s.orch.ScanLastSixMonths(ctx, userID)
	return jsonResult(result), nil
}

// debrief_trigger_workflow
func (s *Server) triggerTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("debrief_trigger_workflow",
		mcp.WithDescription("Create a new offboarding workflow session for an employee. Returns the session with its id and state."),
		mcp.WithString("employee_id", mcp.Required(), mcp.Description("Employee being offboarded")),
		mcp.WithString("triggered_by", mcp.Required(), mcp.Description("Who started the workflow")),
		mcp.WithString("department", mcp.Description("Employee department")),
		mcp.WithString("role", mcp.Description("Employee role")),
	)
	return tool, s.handleTrigger
}

func (s *Server) handleTrigger(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	employeeID, err := request.RequireString("employee_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: employee_id"), nil
	}
	triggeredBy, err := request.RequireString("triggered_by")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: triggered_by"), nil
	}

	session, err := s.orch.Trigger(workflow.TriggerParams{
		EmployeeID:  employeeID,
		TriggeredBy: triggeredBy,
		Department:  request.GetString("department", ""),
		Role:        request.GetString("role", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to trigger workflow: %v", err)), nil
	}
	return jsonResult(session), nil
}

// debrief_execute_scan_phase
func (s *Server) scanPhaseTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("debrief_execute_scan_phase",
		mcp.WithDescription("Run the activity scan phase for a workflow session. Returns the intensity report."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Workflow session id")),
	)
	return tool, s.handleScanPhase
}

func (s *Server) handleScanPhase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	report, err := s.orch.ExecuteScanPhase(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan phase failed: %v", err)), nil
	}
	return jsonResult(report), nil
}

// debrief_execute_interview_phase
func (s *Server) interviewPhaseTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("debrief_execute_interview_phase",
		mcp.WithDescription("Run the interview phase for a workflow session. Returns generated questions grounded in the scanned artifacts."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Workflow session id")),
	)
	return tool, s.handleInterviewPhase
}

func (s *Server) handleInterviewPhase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	result, err := s.orch.ExecuteInterviewPhase(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("interview phase failed: %v", err)), nil
	}
	return jsonResult(result), nil
}

// debrief_execute_archive_phase
func (s *Server) archivePhaseTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("debrief_execute_archive_phase",
		mcp.WithDescription("Run the archive phase for a workflow session. Takes the interview answers as a JSON array of {question, answer} objects and returns the archived knowledge artifact and its location."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Workflow session id")),
		mcp.WithString("answers", mcp.Description("JSON array of {question, answer} objects")),
	)
	return tool, s.handleArchivePhase
}

func (s *Server) handleArchivePhase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}

	var responses []models.InterviewResponse
	if raw := request.GetString("answers", ""); raw != "" {
		var parsed []struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return mcp.NewToolResultError("answers must be a JSON array of {question, answer} objects"), nil
		}
		for _, p := range parsed {
			responses = append(responses, models.InterviewResponse{Question: p.Question, Answer: p.Answer})
		}
	}

	result, err := s.orch.ExecuteArchivePhase(ctx, sessionID, responses)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("archive phase failed: %v", err)), nil
	}
	return jsonResult(result), nil
}

// debrief_get_session
func (s *Server) getSessionTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("debrief_get_session",
		mcp.WithDescription("Get a workflow session by id, including its state, progress, phase results, and error log."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Workflow session id")),
	)
	return tool, s.handleGetSession
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	session, err := s.orch.GetSession(sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session not found: %s", sessionID)), nil
	}
	return jsonResult(session), nil
}

// debrief_list_sessions
func (s *Server) listSessionsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("debrief_list_sessions",
		mcp.WithDescription("List all workflow sessions with their states and progress."),
	)
	return tool, s.handleListSessions
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions := s.orch.ListActiveSessions()

	type sessionOut struct {
		ID         string `json:"id"`
		EmployeeID string `json:"employee_id"`
		State      string `json:"state"`
		Progress   int    `json:"progress"`
	}
	out := make([]sessionOut, len(sessions))
	for i, sess := range sessions {
		out[i] = sessionOut{
			ID:         sess.ID,
			EmployeeID: sess.EmployeeID,
			State:      string(sess.State),
			Progress:   sess.Progress,
		}
	}
	return jsonResult(out), nil
}

// debrief_validate_completion
func (s *Server) validateTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("debrief_validate_completion",
		mcp.WithDescription("Cross-check a finished session for referential integrity between scanned artifacts and the archived knowledge artifact."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Workflow session id")),
	)
	return tool, s.handleValidate
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	result, err := s.orch.ValidateCompletion(sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validation failed: %v", err)), nil
	}
	return jsonResult(result), nil
}
