package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dotandev/erst/internal/logger"
	"github.com/dotandev/erst/internal/telemetry"
)

var (
	logLevelFlag string
	traceFlag    bool

	telemetryShutdown func()
)

var rootCmd = &cobra.Command{
	Use:   "erst",
	Short: "Erst - Soroban Error Decoder & Debugger",
	Long: `Erst is a specialized developer tool for the Stellar network,
designed to solve the "black box" debugging experience on Soroban.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetLevel(logLevelFlag)

		shutdown, err := telemetry.Init(cmd.Context(), traceFlag)
		if err != nil {
			return err
		}
		telemetryShutdown = func() {
			if err := shutdown(cmd.Context()); err != nil {
				logger.Logger.Warn("Telemetry shutdown failed", "error", err)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if telemetryShutdown != nil {
			telemetryShutdown()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "Export OpenTelemetry traces (OTEL_EXPORTER_OTLP_* env)")
}
