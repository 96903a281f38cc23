package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportType   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data as JSON, CSV, or Markdown",
	Long:  "Export stored archives or a fresh scan report in various formats.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun(cmd.Context())
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, csv, markdown")
	exportCmd.Flags().StringVar(&exportType, "type", "archives", "Data type: archives, reports")
	rootCmd.AddCommand(exportCmd)
}

func exportRun(ctx context.Context) error {
	switch exportType {
	case "archives":
		return exportArchives(ctx)
	case "reports":
		return exportReports(ctx)
	default:
		return fmt.Errorf("unknown export type: %s (use: archives, reports)", exportType)
	}
}

func exportArchives(ctx context.Context) error {
	sink, err := getSQLiteSink()
	if err != nil {
		return err
	}
	records, err := sink.List(ctx, "")
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "csv":
		w := csv.NewWriter(ui.Out)
		w.Write([]string{"ID", "Employee", "Title", "Confidence", "Tags", "Created"})
		for _, r := range records {
			w.Write([]string{r.LocationID, r.EmployeeID, r.Title, fmt.Sprintf("%.2f", r.Confidence), strings.Join(r.Tags, ";"), r.CreatedAt.Format("2006-01-02")})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Knowledge archives")
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| Employee | Title | Confidence | Created |")
		fmt.Fprintln(ui.Out, "|----------|-------|------------|---------|")
		for _, r := range records {
			fmt.Fprintf(ui.Out, "| %s | %s | %.2f | %s |\n", r.EmployeeID, r.Title, r.Confidence, r.CreatedAt.Format("2006-01-02"))
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}

func exportReports(ctx context.Context) error {
	orch, err := getOrchestrator()
	if err != nil {
		return err
	}
	result := orch.ScanLastSixMonths(ctx, scanUser)

	switch exportFormat {
	case "json":
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Reports)
	case "csv":
		w := csv.NewWriter(ui.Out)
		w.Write([]string{"User", "CriticalTickets", "ComplexChanges", "DocLinks", "Score", "Risk"})
		for _, r := range result.Reports {
			w.Write([]string{
				r.UserID,
				fmt.Sprintf("%d", len(r.CriticalTickets)),
				fmt.Sprintf("%d", len(r.HighComplexityChanges)),
				fmt.Sprintf("%d", r.DocumentationLinkCount),
				fmt.Sprintf("%.2f", r.UndocumentedIntensityScore),
				string(r.RiskLevel),
			})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Undocumented intensity report")
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| User | Critical | Complex | Doc links | Score | Risk |")
		fmt.Fprintln(ui.Out, "|------|----------|---------|-----------|-------|------|")
		for _, r := range result.Reports {
			fmt.Fprintf(ui.Out, "| %s | %d | %d | %d | %.2f | %s |\n",
				r.UserID, len(r.CriticalTickets), len(r.HighComplexityChanges),
				r.DocumentationLinkCount, r.UndocumentedIntensityScore, r.RiskLevel)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}
