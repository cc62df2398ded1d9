package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/jobwatch/internal/observability"
	"github.com/3leaps/jobwatch/pkg/manifest"
	"github.com/3leaps/jobwatch/pkg/metrics"
	"github.com/3leaps/jobwatch/pkg/monitor"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Project aggregator values from a job's metrics",
	Long: `Evaluate the aggregators declared in a watch manifest against the
job's reported metric values.

Example:
  jobwatch metrics --job watch.yaml
  jobwatch metrics --job watch.yaml --aggregator records_read
  jobwatch metrics --job watch.yaml --json`,
	RunE: runMetrics,
}

var (
	metricsJobPath    string
	metricsAggregator string
	metricsJSON       bool
)

func init() {
	rootCmd.AddCommand(metricsCmd)

	metricsCmd.Flags().StringVarP(&metricsJobPath, "job", "j", "", "Path to watch manifest (required)")
	metricsCmd.Flags().StringVarP(&metricsAggregator, "aggregator", "a", "", "Evaluate a single aggregator by name")
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Emit results as JSON")

	_ = metricsCmd.MarkFlagRequired("job")
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	m, err := manifest.Load(metricsJobPath)
	if err != nil {
		observability.CLILogger.Error("Failed to load manifest",
			zap.String("path", metricsJobPath),
			zap.Error(err))
		return err
	}
	if len(m.Aggregators) == 0 {
		return fmt.Errorf("manifest %s declares no aggregators", metricsJobPath)
	}

	service, _, err := newServiceClient(m.Endpoint)
	if err != nil {
		return err
	}

	mcfg := m.MonitorConfig()
	mcfg.Logger = observability.CLILogger
	job := monitor.NewJob(m.Project, m.JobID, service, mcfg)

	extractor, err := metrics.NewExtractor(job, m.Bindings())
	if err != nil {
		return err
	}

	names := extractor.Names()
	if metricsAggregator != "" {
		names = []string{metricsAggregator}
	}

	results := make(map[string]map[string]float64, len(names))
	for _, name := range names {
		values, err := extractor.Values(ctx, name)
		if err != nil {
			return fmt.Errorf("evaluate aggregator %s: %w", name, err)
		}
		results[name] = values
	}

	if metricsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, name := range names {
		fmt.Printf("%s:\n", name)
		values := results[name]
		ids := make([]string, 0, len(values))
		for id := range values {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		if len(ids) == 0 {
			fmt.Println("  (no matching metrics)")
			continue
		}
		for _, id := range ids {
			fmt.Printf("  %-40s %v\n", id, values[id])
		}
	}
	return nil
}
