package cmd

import (
	"github.com/spf13/cobra"
	"github.com/taskflow/taskflow/internal/api"
	"github.com/taskflow/taskflow/internal/config"
	"github.com/taskflow/taskflow/internal/telemetry"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start TaskFlow API Server",
	Run: func(cmd *cobra.Command, args []string) {
		conf := config.ReadConfig()

		shutdownTelemetry := telemetry.NewProvider(conf.OTEL_EXPORTER_OTLP_ENDPOINT)
		defer shutdownTelemetry()

		s := api.New(conf)
		s.Start()
	},
}

// Register the "server" command
func init() {
	rootCmd.AddCommand(serverCmd)
}
