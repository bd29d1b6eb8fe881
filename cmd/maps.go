package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cod-stats/internal/aggregator"
	"github.com/pable/go-cod-stats/internal/report"
)

var (
	mapsSel  selection
	mapsGrid bool
)

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "Show per-map performance and the ranked veto guide",
	Long: `Rank maps by win rate, then score the ranked map pool
(win% x 0.5 + K/D x 20 + score / 100) and recommend two bans and two
protects. --grid adds the map x mode win-rate grid.`,
	Args: cobra.NoArgs,
	RunE: runMaps,
}

func init() {
	mapsSel.register(mapsCmd)
	mapsCmd.Flags().BoolVar(&mapsGrid, "grid", false, "also print the map x mode win-rate grid")
}

func runMaps(cmd *cobra.Command, args []string) error {
	s, _, view, err := loadView(cmd.Context(), &mapsSel)
	if err != nil {
		return err
	}
	defer s.Close()
	if len(view) == 0 {
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n--- Map performance ---\n\n")
	report.PrintMapPerformance(os.Stdout, aggregator.MapPerformance(view))

	fmt.Fprintf(os.Stdout, "\n--- Ranked map veto ---\n\n")
	report.PrintVeto(os.Stdout, aggregator.VetoGuide(view))

	if mapsGrid {
		fmt.Fprintf(os.Stdout, "\n--- Win rate by map and mode ---\n\n")
		report.PrintGrid(os.Stdout, aggregator.WinRateGrid(view))
	}
	return nil
}
