package main

import (
	"github.com/spf13/cobra"

	"reportprint/application"
	"reportprint/infrastructure/scanner"
)

var scanSelection selectionFlags

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the files a run would print, without printing",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, selection, err := scanSelection.resolve()
		if err != nil {
			return err
		}

		// Scanning needs no history, printer or spool access.
		svc := application.NewPrintService(application.PrintServiceDeps{
			Collector: scanner.New(scanner.PDFPageCount),
		}, application.PrintSettings{
			PrinterName:  cfg.PrinterName,
			ParentFolder: cfg.ParentFolder,
		})

		batch, err := svc.Prepare(cmd.Context(), date, selection)
		if err != nil {
			return err
		}
		printBatch(cmd.OutOrStdout(), batch)
		return nil
	},
}

func init() {
	scanSelection.register(scanCmd)
}
