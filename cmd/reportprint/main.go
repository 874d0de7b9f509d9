package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reportprint/infrastructure/config"
	"reportprint/logging"
)

const version = "1.0.0"

// errRunNotClean makes the process exit non-zero after a cancelled run or one
// with failed jobs. The summary has already been printed.
var errRunNotClean = errors.New("print run did not complete cleanly")

var (
	configPath string

	cfg    *config.AppConfig
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:           "reportprint",
	Short:         "Print the day's report PDFs and their companion documents",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadEnvironment()

		var err error
		cfg, err = config.Load(configPath, config.BaseDir())
		if err != nil {
			return err
		}
		logger = initializeLogging(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"configuration file (default: config.toml or config.json next to the executable)")

	rootCmd.AddCommand(runCmd, scanCmd, historyCmd, scheduleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunNotClean) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
