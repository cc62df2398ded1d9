package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/3leaps/jobwatch/internal/observability"
	"github.com/3leaps/jobwatch/pkg/monitor"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe a job's current state",
	Long: `Probe the remote service and report the job's current state.

The probe retries transient failures and degrades to JOB_STATE_UNKNOWN
rather than failing, so the command always prints a state.

Example:
  jobwatch status --project acme --job-id job-123`,
	RunE: runStatus,
}

var (
	statusProject    string
	statusJobID      string
	statusConsoleURL string
)

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusProject, "project", "p", "", "Remote project id (required)")
	statusCmd.Flags().StringVar(&statusJobID, "job-id", "", "Remote job id (required)")
	statusCmd.Flags().StringVar(&statusConsoleURL, "console-url", "", "Base URL for the monitoring console link")

	_ = statusCmd.MarkFlagRequired("project")
	_ = statusCmd.MarkFlagRequired("job-id")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	service, _, err := newServiceClient("")
	if err != nil {
		return err
	}

	cfg := monitor.DefaultConfig()
	cfg.ConsoleBaseURL = statusConsoleURL
	cfg.Logger = observability.CLILogger
	job := monitor.NewJob(statusProject, statusJobID, service, cfg)

	state := job.State(ctx)
	fmt.Printf("Job:      %s/%s\n", statusProject, statusJobID)
	fmt.Printf("State:    %s\n", state)
	fmt.Printf("Terminal: %t\n", state.IsTerminal())
	if replacement, err := job.ReplacedBy(); err == nil {
		fmt.Printf("Replaced: %s\n", replacement.JobID())
	}
	if url := monitor.MonitoringPageURL(statusConsoleURL, statusProject, statusJobID); url != "" {
		fmt.Printf("Console:  %s\n", url)
	}
	return nil
}
