package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/pable/go-cod-stats/internal/query"
	"github.com/pable/go-cod-stats/internal/report"
)

var (
	exportQuery query.TableQuery
	exportOut   string
)

// exportCmd writes the match table, with its current search and sort, to CSV.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the match table to CSV",
	Long: `Write every row of the match table (after --search, --game-type,
--map and --sort) to a CSV file. The default file name is
cod-matches-YYYY-MM-DD.csv; use --out - for stdout.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	addTableFlags(exportCmd, &exportQuery)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (- for stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := validator.New().Struct(exportQuery); err != nil {
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
	rows := query.TableRows(s.orch.Store().Matches(), exportQuery)

	if exportOut == "-" {
		return report.WriteCSV(os.Stdout, rows)
	}
	out := exportOut
	if out == "" {
		out = report.ExportFilename(time.Now())
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := report.WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Exported %d matches to %s\n", len(rows), out)
	return nil
}
