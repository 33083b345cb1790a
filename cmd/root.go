// Package cmd wires the optimization core's command-line surface: each
// subcommand reads flags and environment variables exactly once, builds a
// core.Session, and drives one of exsearch/flex/sweep to completion.
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFile    string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "ti-opt",
	Short: "TI-toolbox electrode placement and current optimization core",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configureLogging()
	},
}

func configureLogging() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(lineFormatter{Logger: "ti-opt"})

	if logFile == "" {
		logFile = os.Getenv("LOG_FILE")
	}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logrus.SetOutput(f)
	}
	return nil
}

// Execute runs the root command, exiting nonzero on any returned error
// (matching spec's exit code contract: 0 on success, 1 on NoValidRuns or
// any other unrecoverable error).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (defaults to LOG_FILE env var, then stderr)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file; flags take precedence over its values")

	rootCmd.AddCommand(exsearchCmd)
	rootCmd.AddCommand(flexCmd)
	rootCmd.AddCommand(paretoCmd)
	rootCmd.AddCommand(leadfieldCmd)
}
