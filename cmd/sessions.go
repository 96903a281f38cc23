package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/debriefhq/debrief/internal/models"
	"github.com/debriefhq/debrief/internal/output"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Inspect workflow sessions on a running server",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active workflow sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		var sessions []*models.WorkflowSession
		if err := newAPIClient().get(cmd.Context(), "/api/v1/workflows", &sessions); err != nil {
			return err
		}
		if len(sessions) == 0 {
			ui.Info("No active sessions")
			return nil
		}

		table := ui.Table([]string{"ID", "EMPLOYEE", "STATE", "PROGRESS", "TRIGGERED"})
		for _, s := range sessions {
			table.Append([]string{
				s.ID,
				s.EmployeeID,
				output.StateColor(string(s.State)),
				fmt.Sprintf("%d%%", s.Progress),
				s.TriggeredAt.Format("2006-01-02 15:04"),
			})
		}
		table.Render()
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show one workflow session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var session models.WorkflowSession
		if err := newAPIClient().get(cmd.Context(), "/api/v1/workflows/"+args[0], &session); err != nil {
			return err
		}
		renderSession(&session)
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd)
	rootCmd.AddCommand(sessionsCmd)
}
