package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cod-stats/internal/aggregator"
	"github.com/pable/go-cod-stats/internal/report"
)

var sessionsSel selection

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Split matches into play sessions and show K/D fatigue",
	Long: `Group matches into sessions (consecutive games no more than
analysis.session_gap apart, at least analysis.min_session_size games) and
print each session plus the average K/D by game number within a session.`,
	Args: cobra.NoArgs,
	RunE: runSessions,
}

func init() {
	sessionsSel.register(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	s, _, view, err := loadView(cmd.Context(), &sessionsSel)
	if err != nil {
		return err
	}
	defer s.Close()

	sess := aggregator.Sessions(view, cfg.Analysis.SessionGap, cfg.Analysis.MinSessionSize)
	report.PrintSessions(os.Stdout,
		aggregator.Summarize(sess),
		aggregator.FatigueCurve(sess, aggregator.DefaultMinSessionSize))
	return nil
}
