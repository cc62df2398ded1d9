package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/jobwatch/internal/observability"
	"github.com/3leaps/jobwatch/pkg/monitor"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Request cancellation of a running job",
	Long: `Ask the remote service to cancel a job.

A job that has already reached a terminal state is reported as such;
the command only fails when the job may still be running and the
request could not be delivered.

Example:
  jobwatch cancel --project acme --job-id job-123`,
	RunE: runCancel,
}

var (
	cancelProject    string
	cancelJobID      string
	cancelConsoleURL string
)

func init() {
	rootCmd.AddCommand(cancelCmd)

	cancelCmd.Flags().StringVarP(&cancelProject, "project", "p", "", "Remote project id (required)")
	cancelCmd.Flags().StringVar(&cancelJobID, "job-id", "", "Remote job id (required)")
	cancelCmd.Flags().StringVar(&cancelConsoleURL, "console-url", "", "Base URL for the monitoring console link")

	_ = cancelCmd.MarkFlagRequired("project")
	_ = cancelCmd.MarkFlagRequired("job-id")
}

func runCancel(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	service, _, err := newServiceClient("")
	if err != nil {
		return err
	}

	cfg := monitor.DefaultConfig()
	cfg.ConsoleBaseURL = cancelConsoleURL
	cfg.Logger = observability.CLILogger
	job := monitor.NewJob(cancelProject, cancelJobID, service, cfg)

	outcome, err := job.Cancel(ctx)
	if err != nil {
		observability.CLILogger.Error("Cancellation failed",
			zap.String("project", cancelProject),
			zap.String("job_id", cancelJobID),
			zap.Error(err))
		return err
	}

	switch outcome {
	case monitor.CancelRequested:
		fmt.Printf("Cancellation requested for job %s/%s\n", cancelProject, cancelJobID)
	case monitor.CancelAlreadyTerminal:
		fmt.Printf("Job %s/%s has already terminated\n", cancelProject, cancelJobID)
	default:
		return fmt.Errorf("unexpected cancel outcome %s", outcome)
	}
	return nil
}
