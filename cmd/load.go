package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cod-stats/internal/ingest"
	"github.com/pable/go-cod-stats/internal/query"
	"github.com/pable/go-cod-stats/internal/report"
)

var (
	loadReload  bool
	loadHistory int
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load match history into the local cache",
	Long: `Run the ingestion sequence: use the cached matches when present,
otherwise fetch from the stats API and fall back to the CSV export if the
API is unreachable. Prints what was loaded and the selector values available.`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().BoolVar(&loadReload, "reload", false, "ignore the cache and fetch again")
	loadCmd.Flags().IntVar(&loadHistory, "history", 0, "also print the last N loads")
}

func runLoad(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	var res ingest.Result
	if loadReload {
		if res, err = s.orch.Reload(cmd.Context()); err != nil {
			return err
		}
	} else {
		res = s.orch.Load(cmd.Context())
	}

	if loadHistory > 0 {
		loads, err := s.db.ListLoads(loadHistory)
		if err != nil {
			return fmt.Errorf("list loads: %w", err)
		}
		report.PrintLoads(os.Stdout, loads)
		fmt.Fprintln(os.Stdout)
	}

	if res.Err != nil {
		fmt.Fprintln(os.Stderr, ingest.NoDataHint)
		return fmt.Errorf("load matches: %w", res.Err)
	}
	from := res.Source.String()
	if res.FromCache {
		from = "cache"
	}
	fmt.Fprintf(os.Stdout, "Loaded %d matches from %s", res.Count, from)
	if n := res.Stats.Malformed + res.Stats.Invalid; n > 0 {
		fmt.Fprintf(os.Stdout, " (%d dropped: %d malformed, %d invalid)", n, res.Stats.Malformed, res.Stats.Invalid)
	}
	fmt.Fprintln(os.Stdout)
	if res.Stats.Synthesized > 0 {
		fmt.Fprintf(os.Stdout, "%d matches had no timestamp and were stamped with the load time.\n", res.Stats.Synthesized)
	}
	fmt.Fprintln(os.Stdout)
	report.PrintOptions(os.Stdout, query.BuildOptions(s.orch.Store().Matches()))
	return nil
}
