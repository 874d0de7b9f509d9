package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"reportprint/infrastructure/scanner"
)

var (
	historyLimit  int
	historyExport string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past runs, or export them to a workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer app.DB.Close()

		if historyExport != "" {
			data, err := app.Exporter.ExportXLSX(cmd.Context(), historyLimit)
			if err != nil {
				return err
			}
			if err := os.WriteFile(historyExport, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", historyExport, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", historyExport)
			return nil
		}

		runs, err := app.PrintService.History(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tDATE\tTRIGGER\tSTATUS\tPRINTED\tFAILED\tDURATION")
		for _, run := range runs {
			duration := "-"
			if run.FinishedAt != nil {
				duration = run.Duration().Round(time.Second).String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%d\t%s\n",
				run.StartedAt.Format("2006-01-02 15:04"),
				run.TargetDate.Format(scanner.DateLayout),
				run.Trigger, run.Status, run.Succeeded, run.Total, run.Failed, duration)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show (0 for all)")
	historyCmd.Flags().StringVar(&historyExport, "export", "", "write the history to this .xlsx file instead")
}
