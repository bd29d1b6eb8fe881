package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cod-stats/internal/aggregator"
	"github.com/pable/go-cod-stats/internal/report"
)

var (
	summarySel        selection
	summaryRankedOnly bool
)

// summaryCmd prints the dashboard overview for a selection.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show win rate, streak, insights and per-mode averages",
	Long: `Display the headline stats for the selected mode, map and metric:
games, wins, losses, win rate and metric average, the last ten results
with the current streak, quick insights, ranked record and the metric
average per game type.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summarySel.register(summaryCmd)
	summaryCmd.Flags().BoolVar(&summaryRankedOnly, "ranked-only", false, "count only ranked-flagged matches in the win/loss split")
}

func runSummary(cmd *cobra.Command, args []string) error {
	s, q, view, err := loadView(cmd.Context(), &summarySel)
	if err != nil {
		return err
	}
	defer s.Close()
	if len(view) == 0 {
		return nil
	}

	report.PrintSummary(os.Stdout, aggregator.SummaryOf(view, q.Metric))
	report.PrintStreak(os.Stdout, aggregator.CurrentStreak(view))
	report.PrintInsights(os.Stdout, aggregator.Insights(view))
	report.PrintRanked(os.Stdout, aggregator.Ranked(view))
	report.PrintGameTypes(os.Stdout, q.Metric,
		aggregator.GameTypeAverages(view, q.Metric),
		aggregator.WinLossDonut(view, summaryRankedOnly))
	return nil
}
