// Package cmd wires the jobwatch CLI: watching remote jobs to
// completion, probing status, requesting cancellation, projecting
// aggregate metrics, and running the local simulator.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/3leaps/jobwatch/internal/config"
	"github.com/3leaps/jobwatch/internal/observability"
	"github.com/3leaps/jobwatch/pkg/remote"
	"github.com/3leaps/jobwatch/pkg/remote/httpapi"
)

var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata injected by the linker.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var (
	flagEndpoint string
	flagLogLevel string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "jobwatch",
	Short: "Monitor long-running jobs on a remote processing service",
	Long: `jobwatch polls a remote job service for status and progress messages,
waits for jobs to reach a terminal state within an optional wall-clock
budget, requests cancellation, and projects aggregate metric values
once a job finishes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		appConfig = cfg

		level := cfg.Logging.Level
		if flagLogLevel != "" {
			level = flagLogLevel
		}
		observability.Init(level)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("jobwatch %s (commit %s, built %s)\n",
			versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "Remote job service base URL")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug|info|warn|error)")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the CLI, cancelling the command context on SIGINT or
// SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer observability.Sync()

	return rootCmd.ExecuteContext(ctx)
}

// resolveEndpoint picks the service base URL: the --endpoint flag wins,
// then the supplied manifest value, then the process configuration.
func resolveEndpoint(manifestEndpoint string) (string, error) {
	switch {
	case flagEndpoint != "":
		return flagEndpoint, nil
	case manifestEndpoint != "":
		return manifestEndpoint, nil
	case appConfig != nil && appConfig.Endpoint != "":
		return appConfig.Endpoint, nil
	}
	return "", fmt.Errorf("no service endpoint: set --endpoint, the manifest endpoint field, or JOBWATCH_ENDPOINT")
}

func newServiceClient(manifestEndpoint string) (remote.Service, string, error) {
	endpoint, err := resolveEndpoint(manifestEndpoint)
	if err != nil {
		return nil, "", err
	}
	client, err := httpapi.New(httpapi.Config{BaseURL: endpoint})
	if err != nil {
		return nil, "", fmt.Errorf("create service client: %w", err)
	}
	return client, endpoint, nil
}
