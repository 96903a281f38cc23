package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/debriefhq/debrief/internal/models"
	"github.com/debriefhq/debrief/internal/workflow"
)

// Phase-stepping subcommands. These drive a running "debrief serve" so a
// workflow can advance across separate invocations.

var workflowTriggerCmd = &cobra.Command{
	Use:   "trigger <employee-id>",
	Short: "Start an offboarding session on the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		triggeredBy := workflowBy
		if triggeredBy == "" {
			triggeredBy = os.Getenv("USER")
		}
		var session models.WorkflowSession
		err := newAPIClient().post(cmd.Context(), "/api/v1/workflows", map[string]string{
			"employee_id":  args[0],
			"triggered_by": triggeredBy,
			"department":   workflowDepartment,
			"role":         workflowRole,
		}, &session)
		if err != nil {
			return err
		}
		renderSession(&session)
		return nil
	},
}

var workflowScanCmd = &cobra.Command{
	Use:   "scan <session-id>",
	Short: "Run the scan phase of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var report models.IntensityReport
		if err := newAPIClient().post(cmd.Context(), "/api/v1/workflows/"+args[0]+"/scan", nil, &report); err != nil {
			return err
		}
		renderReports([]models.IntensityReport{report})
		return nil
	},
}

var workflowInterviewCmd = &cobra.Command{
	Use:   "interview <session-id>",
	Short: "Run the interview phase and print the questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result models.InterviewResult
		if err := newAPIClient().post(cmd.Context(), "/api/v1/workflows/"+args[0]+"/interview", nil, &result); err != nil {
			return err
		}
		ui.Info("%d questions across %d at-risk artifacts", len(result.Questions), len(result.Artifacts))
		for i, q := range result.Questions {
			fmt.Fprintf(ui.Out, "\n[%d] %s\n", i+1, q.Text)
			if q.FollowUp != "" {
				fmt.Fprintf(ui.Out, "    follow-up: %s\n", q.FollowUp)
			}
		}
		return nil
	},
}

var workflowArchiveCmd = &cobra.Command{
	Use:   "archive <session-id>",
	Short: "Run the archive phase from an answers file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if workflowAnswers == "" {
			return fmt.Errorf("--answers is required")
		}
		responses, err := loadAnswers(workflowAnswers, nil)
		if err != nil {
			return err
		}
		body := answersBody(responses)

		var result models.ArchiveResult
		if err := newAPIClient().post(cmd.Context(), "/api/v1/workflows/"+args[0]+"/archive", body, &result); err != nil {
			return err
		}
		ui.Success("Knowledge archived: %s (%s)", result.Artifact.Title, result.Location.URL)
		return nil
	},
}

var workflowCompleteCmd = &cobra.Command{
	Use:   "complete <employee-id>",
	Short: "Run all phases on the server in one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		triggeredBy := workflowBy
		if triggeredBy == "" {
			triggeredBy = os.Getenv("USER")
		}
		var responses []models.InterviewResponse
		if workflowAnswers != "" {
			var err error
			responses, err = loadAnswers(workflowAnswers, nil)
			if err != nil {
				return err
			}
		}
		body := answersBody(responses)
		body["employee_id"] = args[0]
		body["triggered_by"] = triggeredBy
		body["department"] = workflowDepartment
		body["role"] = workflowRole

		var session models.WorkflowSession
		if err := newAPIClient().post(cmd.Context(), "/api/v1/workflows/complete", body, &session); err != nil {
			return err
		}
		renderSession(&session)
		return nil
	},
}

var workflowValidateCmd = &cobra.Command{
	Use:   "validate <session-id>",
	Short: "Validate that a session archived completely",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result workflow.ValidationResult
		if err := newAPIClient().get(cmd.Context(), "/api/v1/workflows/"+args[0]+"/validation", &result); err != nil {
			return err
		}
		renderValidation(&result)
		return nil
	},
}

func answersBody(responses []models.InterviewResponse) map[string]any {
	answers := make([]map[string]string, 0, len(responses))
	for _, r := range responses {
		answers = append(answers, map[string]string{"question": r.Question, "answer": r.Answer})
	}
	return map[string]any{"answers": answers}
}

func init() {
	for _, c := range []*cobra.Command{workflowTriggerCmd, workflowCompleteCmd} {
		c.Flags().StringVar(&workflowBy, "by", "", "Who triggered the workflow (defaults to $USER)")
		c.Flags().StringVar(&workflowDepartment, "department", "", "Employee's department")
		c.Flags().StringVar(&workflowRole, "role", "", "Employee's role")
	}
	workflowArchiveCmd.Flags().StringVar(&workflowAnswers, "answers", "", "YAML file of interview answers")
	workflowCompleteCmd.Flags().StringVar(&workflowAnswers, "answers", "", "YAML file of interview answers")

	workflowCmd.AddCommand(
		workflowTriggerCmd,
		workflowScanCmd,
		workflowInterviewCmd,
		workflowArchiveCmd,
		workflowCompleteCmd,
		workflowValidateCmd,
	)
}
