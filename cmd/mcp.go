package cmd

import (
	"github.com/spf13/cobra"

	"github.com/debriefhq/debrief/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for assistant integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an AI assistant drive offboarding workflows natively.
Configure in Claude Code with:

  {
    "mcpServers": {
      "debrief": { "command": "debrief", "args": ["mcp"] }
    }
  }

Available tools: debrief_scan, debrief_trigger_workflow,
debrief_execute_scan_phase, debrief_execute_interview_phase,
debrief_execute_archive_phase, debrief_get_session,
debrief_list_sessions, debrief_validate_completion`,
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := getOrchestrator()
		if err != nil {
			return err
		}
		return mcp.NewServer(orch).ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
