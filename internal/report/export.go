package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pable/go-cod-stats/internal/model"
	"github.com/pable/go-cod-stats/internal/query"
)

// ExportHeader is the column order of exported CSV files.
var ExportHeader = []string{
	"Date", "Game Type", "Map", "Outcome", "Kills", "Deaths", "Assists",
	"K/D Ratio", "EKIA", "EKIA/D Ratio", "Skill", "Score", "Accuracy %",
	"Headshot %", "Damage Done", "Damage Taken",
}

// ExportFilename names an export written on day now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("cod-matches-%s.csv", now.Format("2006-01-02"))
}

// WriteCSV writes rows in table order. Absent numbers are empty cells and
// present ones carry two decimals.
func WriteCSV(w io.Writer, rows []*model.CanonicalMatch) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range rows {
		rec := []string{
			m.Timestamp.Format(TimeLayout),
			m.GameType,
			m.Map,
			query.OutcomeLabel(m.Outcome),
			fixed(m.Kills),
			fixed(m.Deaths),
			fixed(m.Assists),
			fixed(m.KDRatio),
			fixed(m.EKIA),
			fixed(m.EKIAOverD),
			fixed(m.Skill),
			fixed(m.Score),
			fixed(m.AccuracyPct),
			fixed(m.HeadshotPct),
			fixed(m.DamageDone),
			fixed(m.DamageTaken),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func fixed(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}
