package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/debriefhq/debrief/internal/models"
	"github.com/debriefhq/debrief/internal/output"
	"github.com/debriefhq/debrief/internal/workflow"
)

var scanUser string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan recent activity for undocumented high-intensity work",
	Long: `Scan the trailing six months of tickets and change requests, score
each author's undocumented intensity, and print a per-author risk report.

With --user the report covers a single author; otherwise every author
seen in the window gets a row.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return scanRun(cmd.Context())
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanUser, "user", "u", "", "Scan a single user instead of all authors")
	rootCmd.AddCommand(scanCmd)
}

func scanRun(ctx context.Context) error {
	orch, err := getOrchestrator()
	if err != nil {
		return err
	}

	result := orch.ScanLastSixMonths(ctx, scanUser)
	if len(result.Reports) == 0 {
		ui.Info("%s", result.Summary)
		return nil
	}

	renderReports(result.Reports)
	ui.Info("%s", result.Summary)
	return nil
}

func renderReports(reports []models.IntensityReport) {
	cfg := scanConfigFromViper()

	table := ui.Table([]string{"USER", "CRITICAL", "COMPLEX", "DOC LINKS", "SCORE", "RISK"})
	for _, r := range reports {
		table.Append([]string{
			r.UserID,
			fmt.Sprintf("%d", len(r.CriticalTickets)),
			fmt.Sprintf("%d", len(r.HighComplexityChanges)),
			fmt.Sprintf("%d", r.DocumentationLinkCount),
			output.ScoreColor(r.UndocumentedIntensityScore, cfg.LowRiskThreshold, cfg.HighRiskThreshold),
			output.RiskColor(string(r.RiskLevel)),
		})
	}
	table.Render()
	fmt.Fprintln(ui.Out)

	for _, r := range reports {
		if r.RiskLevel == models.RiskLevelLow || len(r.SpecificArtifacts) == 0 {
			continue
		}
		ui.Warning("%s artifacts at risk:", r.UserID)
		for _, ref := range r.SpecificArtifacts {
			fmt.Fprintf(ui.Out, "  - %s\n", ref)
		}
	}
}

func renderSession(s *models.WorkflowSession) {
	fmt.Fprintf(ui.Out, "Session:   %s\n", s.ID)
	fmt.Fprintf(ui.Out, "Employee:  %s\n", s.EmployeeID)
	fmt.Fprintf(ui.Out, "State:     %s (%d%%)\n", output.StateColor(string(s.State)), s.State.Progress())
	fmt.Fprintf(ui.Out, "Triggered: %s by %s\n", s.TriggeredAt.Format("2006-01-02 15:04"), s.TriggeredBy)
	if len(s.Errors) > 0 {
		fmt.Fprintln(ui.Out, "Errors:")
		for _, e := range s.Errors {
			fmt.Fprintf(ui.Out, "  - [%s] %s: %s\n", e.Timestamp.Format("15:04:05"), e.Code, e.Message)
		}
	}
}

func renderValidation(v *workflow.ValidationResult) {
	if v.IsValid {
		ui.Success("Session is complete and internally consistent")
		return
	}
	ui.Error("Session failed completion validation:")
	for _, msg := range v.Errors {
		fmt.Fprintf(ui.Out, "  - %s\n", msg)
	}
}
