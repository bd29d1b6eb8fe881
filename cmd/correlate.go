package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cod-stats/internal/aggregator"
	"github.com/pable/go-cod-stats/internal/model"
	"github.com/pable/go-cod-stats/internal/report"
)

var (
	correlateSel     selection
	correlateMetrics []string
)

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Print the Pearson correlation matrix between metrics",
	Long: `Correlate each pair of metrics over the matches where both are
present. Pairs with fewer than 5 shared samples show n=<count> instead of r.`,
	Args: cobra.NoArgs,
	RunE: runCorrelate,
}

func init() {
	correlateSel.register(correlateCmd)
	correlateCmd.Flags().StringSliceVar(&correlateMetrics, "metrics", nil, "metrics to correlate (default the heatmap set)")
}

func runCorrelate(cmd *cobra.Command, args []string) error {
	metrics := aggregator.HeatmapMetrics
	if len(correlateMetrics) > 0 {
		for _, m := range correlateMetrics {
			if !model.IsMetric(m) {
				return fmt.Errorf("unknown metric %q", m)
			}
		}
		metrics = correlateMetrics
	}
	s, _, view, err := loadView(cmd.Context(), &correlateSel)
	if err != nil {
		return err
	}
	defer s.Close()
	report.PrintCorrelation(os.Stdout, metrics, aggregator.CorrelationMatrix(view, metrics))
	return nil
}
