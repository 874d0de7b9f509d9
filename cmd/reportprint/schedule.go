package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reportprint/application"
	"reportprint/domain/printjobs"
	"reportprint/infrastructure/scanner"
)

var scheduleCron string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print each day's reports on a cron schedule and serve the progress page",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := scheduleCron
		if spec == "" {
			spec = cfg.Schedule.Cron
		}
		if spec == "" {
			return fmt.Errorf("no schedule: set schedule.cron in the config or pass --cron")
		}

		selection := scanner.SelectOptions{Exclude: cfg.Schedule.Exclude}
		for _, k := range cfg.Schedule.Kinds {
			kind, err := printjobs.ParseKind(k)
			if err != nil {
				return err
			}
			selection.Kinds = append(selection.Kinds, kind)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.DB.Close()

		scheduler, err := application.NewScheduler(ctx, app.PrintService, spec, selection)
		if err != nil {
			return err
		}

		serverErr := startServer(ctx, app, cfg.Server.Addr)
		scheduler.Start()
		fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %q; progress page on http://%s/\n", spec, cfg.Server.Addr)

		select {
		case <-ctx.Done():
		case err := <-serverErr:
			if err != nil {
				stop()
				<-scheduler.Stop().Done()
				return err
			}
		}

		logger.Info("Shutdown signal received")
		// A running batch sees ctx cancelled and returns once its worker has finished.
		<-scheduler.Stop().Done()
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "six-field cron expression with seconds (default: schedule.cron)")
}

