package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/debriefhq/debrief/internal/models"
	"github.com/debriefhq/debrief/internal/workflow"
)

var (
	workflowBy         string
	workflowDepartment string
	workflowRole       string
	workflowAnswers    string
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Run offboarding workflows",
}

var workflowRunCmd = &cobra.Command{
	Use:   "run <employee-id>",
	Short: "Run a complete offboarding workflow for one employee",
	Long: `Run the full workflow in one process: scan the employee's recent
activity, generate interview questions from the at-risk artifacts,
collect answers, and archive the distilled knowledge.

Answers come from an --answers YAML file, or interactively on stdin
when the flag is omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return workflowRunRun(cmd.Context(), args[0])
	},
}

func init() {
	workflowRunCmd.Flags().StringVar(&workflowBy, "by", "", "Who triggered the workflow (defaults to $USER)")
	workflowRunCmd.Flags().StringVar(&workflowDepartment, "department", "", "Employee's department")
	workflowRunCmd.Flags().StringVar(&workflowRole, "role", "", "Employee's role")
	workflowRunCmd.Flags().StringVar(&workflowAnswers, "answers", "", "YAML file of interview answers")
	workflowCmd.AddCommand(workflowRunCmd)
	rootCmd.AddCommand(workflowCmd)
}

// answerEntry is one item in the --answers YAML file. Question is optional;
// entries without one are matched to questions positionally.
type answerEntry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

func workflowRunRun(ctx context.Context, employeeID string) error {
	orch, err := getOrchestrator()
	if err != nil {
		return err
	}

	triggeredBy := workflowBy
	if triggeredBy == "" {
		triggeredBy = os.Getenv("USER")
	}
	if triggeredBy == "" {
		return fmt.Errorf("--by is required when $USER is not set")
	}

	if dryRun {
		ui.DryRunMsg("Would run offboarding workflow for %s (triggered by %s)", employeeID, triggeredBy)
		return nil
	}

	session, err := orch.Trigger(workflow.TriggerParams{
		EmployeeID:  employeeID,
		TriggeredBy: triggeredBy,
		Department:  workflowDepartment,
		Role:        workflowRole,
	})
	if err != nil {
		return err
	}
	ui.Info("Session %s triggered for %s", session.ID, employeeID)

	report, err := orch.ExecuteScanPhase(ctx, session.ID)
	if err != nil {
		return err
	}
	renderReports([]models.IntensityReport{*report})

	result, err := orch.ExecuteInterviewPhase(ctx, session.ID)
	if err != nil {
		return err
	}

	answers, err := collectAnswers(result.Questions)
	if err != nil {
		return err
	}

	archived, err := orch.ExecuteArchivePhase(ctx, session.ID, answers)
	if err != nil {
		return err
	}
	ui.Success("Knowledge archived: %s (%s)", archived.Artifact.Title, archived.Location.URL)

	validation, err := orch.ValidateCompletion(session.ID)
	if err != nil {
		return err
	}
	renderValidation(validation)

	final, err := orch.GetSession(session.ID)
	if err != nil {
		return err
	}
	renderSession(final)
	return nil
}

// collectAnswers loads answers from the --answers file, or prompts for each
// question on stdin.
func collectAnswers(questions []models.Question) ([]models.InterviewResponse, error) {
	if workflowAnswers != "" {
		return loadAnswers(workflowAnswers, questions)
	}
	return promptAnswers(questions)
}

func loadAnswers(path string, questions []models.Question) ([]models.InterviewResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers file: %w", err)
	}

	var entries []answerEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse answers file: %w", err)
	}

	responses := make([]models.InterviewResponse, 0, len(entries))
	for i, e := range entries {
		question := e.Question
		if question == "" && i < len(questions) {
			question = questions[i].Text
		}
		responses = append(responses, models.InterviewResponse{Question: question, Answer: e.Answer})
	}
	return responses, nil
}

func promptAnswers(questions []models.Question) ([]models.InterviewResponse, error) {
	reader := bufio.NewReader(os.Stdin)
	responses := make([]models.InterviewResponse, 0, len(questions))

	for i, q := range questions {
		fmt.Fprintf(ui.Out, "\n[%d/%d] %s\n", i+1, len(questions), q.Text)
		if q.FollowUp != "" {
			fmt.Fprintf(ui.Out, "      (follow-up: %s)\n", q.FollowUp)
		}
		fmt.Fprint(ui.Out, "> ")

		answer, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read answer: %w", err)
		}
		responses = append(responses, models.InterviewResponse{
			Question: q.Text,
			Answer:   strings.TrimSpace(answer),
		})
	}
	return responses, nil
}
