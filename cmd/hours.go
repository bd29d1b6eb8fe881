package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-cod-stats/internal/aggregator"
	"github.com/pable/go-cod-stats/internal/report"
)

var (
	hoursSel selection
	hoursTZ  string
)

var hoursCmd = &cobra.Command{
	Use:   "hours",
	Short: "Show win rate and K/D by hour of day",
	Args:  cobra.NoArgs,
	RunE:  runHours,
}

func init() {
	hoursSel.register(hoursCmd)
	hoursCmd.Flags().StringVar(&hoursTZ, "tz", "", "IANA time zone for bucketing (default local)")
}

func runHours(cmd *cobra.Command, args []string) error {
	loc := time.Local
	if hoursTZ != "" {
		l, err := time.LoadLocation(hoursTZ)
		if err != nil {
			return fmt.Errorf("load time zone: %w", err)
		}
		loc = l
	}
	s, _, view, err := loadView(cmd.Context(), &hoursSel)
	if err != nil {
		return err
	}
	defer s.Close()
	if len(view) == 0 {
		return nil
	}
	report.PrintHours(os.Stdout, aggregator.HourOfDay(view, loc))
	return nil
}
