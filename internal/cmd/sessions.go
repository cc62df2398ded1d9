package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/3leaps/jobwatch/pkg/watchlog"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded watch sessions",
	RunE:  runSessions,
}

var sessionsDir string

func init() {
	rootCmd.AddCommand(sessionsCmd)

	sessionsCmd.Flags().StringVar(&sessionsDir, "session-dir", "", "Session log directory (default ~/.jobwatch/sessions)")
}

func runSessions(_ *cobra.Command, _ []string) error {
	dir := sessionsDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".jobwatch", "sessions")
	}

	store := watchlog.NewStore(dir)
	sessions, err := store.List()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No recorded sessions.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tJOB\tSTATE\tFINAL\tMESSAGES\tSTARTED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s/%s\t%s\t%s\t%d\t%s\n",
			s.SessionID, s.Project, s.JobID, s.State, s.FinalState,
			s.Messages, s.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
