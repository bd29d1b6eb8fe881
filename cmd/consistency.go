package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cod-stats/internal/aggregator"
	"github.com/pable/go-cod-stats/internal/report"
)

var consistencySel selection

var consistencyCmd = &cobra.Command{
	Use:   "consistency",
	Short: "Grade how stable K/D, skill and score are",
	Args:  cobra.NoArgs,
	RunE:  runConsistency,
}

func init() {
	consistencySel.register(consistencyCmd)
}

func runConsistency(cmd *cobra.Command, args []string) error {
	s, _, view, err := loadView(cmd.Context(), &consistencySel)
	if err != nil {
		return err
	}
	defer s.Close()
	report.PrintConsistency(os.Stdout, aggregator.ConsistencyOf(view))
	return nil
}
