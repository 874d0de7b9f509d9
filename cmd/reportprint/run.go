package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reportprint/application"
	"reportprint/domain/printjobs"
	"reportprint/infrastructure/scanner"
)

// selectionFlags are shared by run and scan.
type selectionFlags struct {
	date    string
	kinds   []string
	exclude []string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "target date as YYYY/MM/DD (default: today)")
	cmd.Flags().StringSliceVar(&f.kinds, "kind", nil, "only print these kinds: pdf, word")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "skip files whose name matches a glob")
}

func (f *selectionFlags) resolve() (time.Time, scanner.SelectOptions, error) {
	date := today()
	if f.date != "" {
		parsed, err := scanner.ParseDate(f.date)
		if err != nil {
			return time.Time{}, scanner.SelectOptions{}, err
		}
		date = parsed
	}

	selection := scanner.SelectOptions{Exclude: f.exclude}
	for _, k := range f.kinds {
		kind, err := printjobs.ParseKind(strings.ToLower(strings.TrimSpace(k)))
		if err != nil {
			return time.Time{}, scanner.SelectOptions{}, err
		}
		selection.Kinds = append(selection.Kinds, kind)
	}
	return date, selection, nil
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

var (
	runSelection selectionFlags
	runYes       bool
	runServe     bool
	runAddr      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Print the reports for a date and wait until the printer is idle",
	Long: `Scans the report folder for PDFs modified on the target date, adds the office
documents from the same folders, sends everything to the printer in order and
waits until the print queue has been empty for several consecutive checks.

Ctrl+C once stops sending new files; the run still waits for the printer.
Ctrl+C twice stops waiting for the printer queue, but a file that is already
being sent still finishes first. A third Ctrl+C quits immediately.`,
	RunE: runRun,
}

func init() {
	runSelection.register(runCmd)
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "do not ask for confirmation")
	runCmd.Flags().BoolVar(&runServe, "serve", false, "serve the progress page while printing")
	runCmd.Flags().StringVar(&runAddr, "addr", "", "progress page address (default: server.addr from config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	date, selection, err := runSelection.resolve()
	if err != nil {
		return err
	}

	appCtx, appCancel := context.WithCancel(cmd.Context())
	defer appCancel()

	app, err := buildApp(appCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.DB.Close()

	batch, err := app.PrintService.Prepare(appCtx, date, selection)
	if err != nil {
		return err
	}
	printBatch(out, batch)
	if len(batch.Jobs) == 0 {
		return nil
	}

	if !runYes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Print %d file(s) on %s?", len(batch.Jobs), cfg.PrinterName)) {
		fmt.Fprintln(out, "Nothing printed.")
		return nil
	}

	newConsoleProgress(out).RegisterHandlers(app.EventBus)

	if runServe {
		addr := runAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		startServer(appCtx, app, addr)
		fmt.Fprintf(out, "Progress page: http://%s/\n", addr)
	}

	runCtx, stopWaiting := context.WithCancel(appCtx)
	defer stopWaiting()
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Once the handler is done, further signals get the default behavior.
		defer signal.Stop(sig)
		handleInterrupts(runCtx, sig, out, app.PrintService, stopWaiting)
	}()

	run, outcome, err := app.PrintService.Execute(runCtx, batch, printjobs.TriggerManual)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Run %s: %d printed, %d failed (%s)\n",
		outcome.Status, outcome.Succeeded, outcome.Failed, run.Duration().Round(time.Second))
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, "Stopped without waiting for the printer to finish.")
	}

	if !outcome.OK() {
		return errRunNotClean
	}
	return nil
}

// handleInterrupts maps the first signal to a cooperative cancel and the
// second to abandoning the drain wait.
func handleInterrupts(ctx context.Context, sig <-chan os.Signal, out io.Writer, svc application.PrintService, stopWaiting context.CancelFunc) {
	select {
	case <-sig:
	case <-ctx.Done():
		return
	}

	if err := svc.Cancel(); err != nil {
		stopWaiting()
		return
	}
	fmt.Fprintln(out, "\nCancelling: the current file will finish. Press Ctrl+C again to stop waiting for the printer.")

	select {
	case <-sig:
		fmt.Fprintln(out, "\nNo longer waiting for the printer. Press Ctrl+C again to quit without waiting for the file being sent.")
		stopWaiting()
	case <-ctx.Done():
	}
}

func printBatch(out io.Writer, batch *application.Batch) {
	fmt.Fprintf(out, "Target date: %s\n", batch.TargetDate.Format(scanner.DateLayout))
	if len(batch.Jobs) == 0 {
		fmt.Fprintln(out, "No files to print.")
	} else {
		counts := batch.Jobs.CountByKind()
		fmt.Fprintf(out, "%d file(s): %d pdf, %d word\n",
			len(batch.Jobs), counts[printjobs.KindDocumentA], counts[printjobs.KindDocumentB])
		for i, job := range batch.Jobs {
			pages := ""
			if job.PageCount > 0 {
				pages = fmt.Sprintf(" (%d pages)", job.PageCount)
			}
			fmt.Fprintf(out, "  %3d. [%s] %s%s\n", i+1, job.Kind, job.DisplayName, pages)
		}
	}
	if len(batch.MissingCompanions) > 0 {
		fmt.Fprintln(out, "Folders with reports but no office documents:")
		for _, folder := range batch.MissingCompanions {
			fmt.Fprintf(out, "  - %s\n", folder)
		}
	}
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
