package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var archivesEmployee string

var archivesCmd = &cobra.Command{
	Use:   "archives",
	Short: "Browse stored knowledge archives",
	Long: `List and read the knowledge documents produced by completed
workflows. Requires the local SQLite sink.

Running bare 'debrief archives' is the same as 'debrief archives list'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return archivesListRun(cmd)
	},
}

var archivesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored archives",
	RunE: func(cmd *cobra.Command, args []string) error {
		return archivesListRun(cmd)
	},
}

var archivesShowCmd = &cobra.Command{
	Use:   "show <location-id>",
	Short: "Print one archived document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return archivesShowRun(cmd, args[0])
	},
}

func init() {
	archivesCmd.PersistentFlags().StringVarP(&archivesEmployee, "employee", "e", "", "Filter by employee ID")
	archivesCmd.AddCommand(archivesListCmd)
	archivesCmd.AddCommand(archivesShowCmd)
	rootCmd.AddCommand(archivesCmd)
}

func archivesListRun(cmd *cobra.Command) error {
	sink, err := getSQLiteSink()
	if err != nil {
		return err
	}

	records, err := sink.List(cmd.Context(), archivesEmployee)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		ui.Info("No archives stored yet")
		return nil
	}

	table := ui.Table([]string{"ID", "EMPLOYEE", "TITLE", "CONFIDENCE", "TAGS", "CREATED"})
	for _, r := range records {
		table.Append([]string{
			r.LocationID,
			r.EmployeeID,
			r.Title,
			fmt.Sprintf("%.2f", r.Confidence),
			strings.Join(r.Tags, ", "),
			r.CreatedAt.Format("2006-01-02"),
		})
	}
	table.Render()
	return nil
}

func archivesShowRun(cmd *cobra.Command, locationID string) error {
	sink, err := getSQLiteSink()
	if err != nil {
		return err
	}

	record, err := sink.Get(cmd.Context(), locationID)
	if err != nil {
		return err
	}

	fmt.Fprintln(ui.Out, record.Body)
	return nil
}
