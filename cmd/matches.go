package cmd

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/pable/go-cod-stats/internal/query"
	"github.com/pable/go-cod-stats/internal/report"
)

var matchesQuery query.TableQuery

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List matches as a searchable, sortable table",
	Long: `Print the match table. --search matches game type, map or outcome
(case-insensitive). --sort takes timestamp, gameType, map, outcome or any
metric name; the default is newest first.`,
	Args: cobra.NoArgs,
	RunE: runMatches,
}

func init() {
	addTableFlags(matchesCmd, &matchesQuery)
	matchesCmd.Flags().IntVar(&matchesQuery.Page, "page", 1, "page number")
	matchesCmd.Flags().IntVar(&matchesQuery.PageSize, "page-size", query.PageSize, "rows per page")
}

// addTableFlags binds the search, filter and sort flags shared with export.
func addTableFlags(cmd *cobra.Command, tq *query.TableQuery) {
	cmd.Flags().StringVar(&tq.Search, "search", "", "case-insensitive text filter")
	cmd.Flags().StringVar(&tq.GameType, "game-type", "", "exact game type")
	cmd.Flags().StringVar(&tq.Map, "map", "", "exact map")
	cmd.Flags().StringVar(&tq.SortBy, "sort", query.ColTimestamp, "column to sort by")
	cmd.Flags().BoolVar(&tq.Asc, "asc", false, "sort ascending")
}

func runMatches(cmd *cobra.Command, args []string) error {
	if err := validator.New().Struct(matchesQuery); err != nil {
		return fmt.Errorf("invalid table query: %w", err)
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	if _, err := s.load(cmd.Context()); err != nil {
		return err
	}
	report.PrintMatchTable(os.Stdout, query.Table(s.orch.Store().Matches(), matchesQuery))
	return nil
}
