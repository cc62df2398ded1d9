package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/jobwatch/internal/observability"
	"github.com/3leaps/jobwatch/pkg/manifest"
	"github.com/3leaps/jobwatch/pkg/monitor"
	"github.com/3leaps/jobwatch/pkg/output"
	"github.com/3leaps/jobwatch/pkg/remote"
	"github.com/3leaps/jobwatch/pkg/watchlog"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Wait for a remote job to reach a terminal state",
	Long: `Wait for a remote job to finish, streaming its progress messages as
JSONL records.

The job can come from a watch manifest or directly from flags:

  jobwatch watch --job watch.yaml
  jobwatch watch --project acme --job-id job-123 --budget 30m
  jobwatch watch --job watch.yaml --output progress.jsonl`,
	RunE: runWatch,
}

var (
	watchJobPath string
	watchProject string
	watchJobID   string
	watchBudget  time.Duration
	watchOutput  string
	watchQuiet   bool
	watchNoLog   bool
	watchLogDir  string
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchJobPath, "job", "j", "", "Path to watch manifest (YAML or JSON)")
	watchCmd.Flags().StringVarP(&watchProject, "project", "p", "", "Remote project id (alternative to --job)")
	watchCmd.Flags().StringVar(&watchJobID, "job-id", "", "Remote job id (alternative to --job)")
	watchCmd.Flags().DurationVar(&watchBudget, "budget", 0, "Wall-clock wait budget (0 waits indefinitely)")
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "JSONL destination (\"-\" = stdout)")
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Suppress per-message records, emit only the summary")
	watchCmd.Flags().BoolVar(&watchNoLog, "no-session-log", false, "Do not record this run in the session log")
	watchCmd.Flags().StringVar(&watchLogDir, "session-dir", "", "Session log directory (default ~/.jobwatch/sessions)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	m, err := loadWatchManifest()
	if err != nil {
		observability.CLILogger.Error("Failed to load manifest",
			zap.String("path", watchJobPath),
			zap.Error(err))
		return err
	}

	budget := m.Wait.Budget.Std()
	if cmd.Flags().Changed("budget") {
		budget = watchBudget
	}

	service, endpoint, err := newServiceClient(m.Endpoint)
	if err != nil {
		return err
	}

	mcfg := m.MonitorConfig()
	mcfg.Logger = observability.CLILogger
	job := monitor.NewJob(m.Project, m.JobID, service, mcfg)

	dest := m.Output
	if watchOutput != "" {
		dest = watchOutput
	}
	sink, closeSink, err := openOutput(dest)
	if err != nil {
		return err
	}
	defer closeSink()

	writer := output.NewJSONLWriter(sink, m.Project, m.JobID)
	defer func() { _ = writer.Close() }()

	session, store := beginSession(m.Project, m.JobID, endpoint, dest)

	observability.CLILogger.Info("Watching job",
		zap.String("project", m.Project),
		zap.String("job_id", m.JobID),
		zap.Duration("budget", budget))

	var messages int64
	started := time.Now()
	final, waitErr := job.Wait(ctx, budget, func(batch []remote.ProgressMessage) {
		for _, msg := range batch {
			messages++
			if watchQuiet {
				continue
			}
			rec := output.MessageRecord{Time: msg.Time, Severity: msg.Severity, Text: msg.Text}
			if err := writer.WriteMessage(ctx, &rec); err != nil {
				observability.CLILogger.Warn("Failed to write message record", zap.Error(err))
			}
		}
	})
	elapsed := time.Since(started)

	timedOut := errors.Is(waitErr, monitor.ErrWaitTimeout)

	stateRec := output.StateRecord{State: string(final), Terminal: final.IsTerminal()}
	if err := writer.WriteState(ctx, &stateRec); err != nil {
		observability.CLILogger.Warn("Failed to write state record", zap.Error(err))
	}
	summary := output.SummaryRecord{
		FinalState: string(final),
		TimedOut:   timedOut,
		Messages:   messages,
		DurationMS: elapsed.Milliseconds(),
	}
	// The summary goes out even when the wait was interrupted.
	if err := writer.WriteSummary(context.WithoutCancel(ctx), &summary); err != nil {
		observability.CLILogger.Warn("Failed to write summary record", zap.Error(err))
	}

	finishSession(store, session, final, waitErr, messages)

	switch {
	case waitErr == nil:
		fmt.Fprintf(os.Stderr, "Job %s/%s reached %s after %s (%d messages)\n",
			m.Project, m.JobID, final, elapsed.Round(time.Millisecond), messages)
		if final == remote.StateFailed {
			return fmt.Errorf("job %s/%s failed", m.Project, m.JobID)
		}
		return nil
	case timedOut:
		return fmt.Errorf("job %s/%s did not finish within %s", m.Project, m.JobID, budget)
	default:
		return fmt.Errorf("watch interrupted: %w", waitErr)
	}
}

// loadWatchManifest builds the effective manifest from --job or from
// the direct --project/--job-id flags.
func loadWatchManifest() (*manifest.Manifest, error) {
	if watchJobPath != "" {
		return manifest.Load(watchJobPath)
	}
	if watchProject == "" && appConfig != nil {
		watchProject = appConfig.Project
	}
	m := &manifest.Manifest{Project: watchProject, JobID: watchJobID}
	m.ApplyDefaults()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("pass --job, or both --project and --job-id: %w", err)
	}
	return m, nil
}

func openOutput(dest string) (io.Writer, func(), error) {
	if dest == "" || dest == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(dest)
	if err != nil {
		return nil, nil, fmt.Errorf("open output %s: %w", dest, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func beginSession(project, jobID, endpoint, outputPath string) (*watchlog.SessionRecord, *watchlog.Store) {
	if watchNoLog {
		return nil, nil
	}
	dir := watchLogDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			observability.CLILogger.Warn("Session log disabled", zap.Error(err))
			return nil, nil
		}
		dir = filepath.Join(home, ".jobwatch", "sessions")
	}
	store := watchlog.NewStore(dir)
	session, err := store.Begin(project, jobID, endpoint)
	if err != nil {
		observability.CLILogger.Warn("Session log disabled", zap.Error(err))
		return nil, nil
	}
	session.OutputPath = outputPath
	return session, store
}

func finishSession(store *watchlog.Store, session *watchlog.SessionRecord, final remote.JobState, waitErr error, messages int64) {
	if store == nil || session == nil {
		return
	}
	state := watchlog.SessionStateFinished
	switch {
	case errors.Is(waitErr, monitor.ErrWaitTimeout):
		state = watchlog.SessionStateTimedOut
	case waitErr != nil:
		state = watchlog.SessionStateAborted
	}
	if err := store.Finish(session, state, string(final), messages); err != nil {
		observability.CLILogger.Warn("Failed to record session", zap.Error(err))
	}
}
