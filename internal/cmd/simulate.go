package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/jobwatch/internal/observability"
	"github.com/3leaps/jobwatch/internal/server"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a local simulator of the remote job service",
	Long: `Serve scripted jobs over the same HTTP surface as the real service,
for exercising watch, cancel, and metrics without a backend.

Example:
  jobwatch simulate --scenario scenario.yaml --port 8080`,
	RunE: runSimulate,
}

var (
	simulateScenario string
	simulateHost     string
	simulatePort     int
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&simulateScenario, "scenario", "s", "", "Path to scenario YAML (required)")
	simulateCmd.Flags().StringVar(&simulateHost, "host", "", "Listen host (default from config)")
	simulateCmd.Flags().IntVar(&simulatePort, "port", 0, "Listen port (default from config)")

	_ = simulateCmd.MarkFlagRequired("scenario")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sc, err := server.LoadScenario(simulateScenario)
	if err != nil {
		observability.CLILogger.Error("Failed to load scenario",
			zap.String("path", simulateScenario),
			zap.Error(err))
		return err
	}

	host := simulateHost
	if host == "" {
		host = appConfig.Simulate.Host
	}
	port := simulatePort
	if port == 0 {
		port = appConfig.Simulate.Port
	}

	srv := server.New(host, port, sc)
	return srv.ListenAndServe(ctx)
}
