// Package report renders match views and aggregates as terminal tables and
// CSV.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-cod-stats/internal/aggregator"
	"github.com/pable/go-cod-stats/internal/model"
	"github.com/pable/go-cod-stats/internal/query"
	"github.com/pable/go-cod-stats/internal/storage"
)

// TimeLayout is how match timestamps are shown and exported.
const TimeLayout = "2006-01-02 15:04"

var (
	cHeader   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cWin      = color.New(color.FgGreen, color.Bold)
	cLoss     = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cPositive = color.New(color.FgGreen)
	cTip      = color.New(color.FgCyan)
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// num formats v with the given decimals, or "N/A" for the NaN sentinel.
func num(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', places, 64)
}

func opt(p *float64, places int) string {
	if p == nil {
		return "-"
	}
	return num(*p, places)
}

func pct(v float64) string {
	return num(v, 0) + "%"
}

// PrintSummary prints the headline stats block.
func PrintSummary(w io.Writer, s aggregator.Summary) {
	cHeader.Fprintln(w, "Summary")
	rate := cLoss
	if s.WinRate >= 50 {
		rate = cWin
	}
	fmt.Fprintf(w, "  Games %d  |  Wins %d  |  Losses %d  |  Win rate ", s.Games, s.Wins, s.Losses)
	rate.Fprintf(w, "%s%%", num(s.WinRate, 1))
	fmt.Fprintf(w, "  |  Avg %s %s\n\n", s.Metric, num(float64(s.AvgMetric), 2))
}

// PrintInsights prints quick insights, one per line.
func PrintInsights(w io.Writer, ins []aggregator.Insight) {
	if len(ins) == 0 {
		return
	}
	cHeader.Fprintln(w, "Quick insights")
	for _, in := range ins {
		c := cMuted
		switch in.Kind {
		case aggregator.InsightPositive:
			c = cPositive
		case aggregator.InsightWarning:
			c = cWarn
		case aggregator.InsightTip:
			c = cTip
		}
		c.Fprintf(w, "  * %s\n", in.Text)
	}
	fmt.Fprintln(w)
}

// PrintStreak prints the trailing streak and the last results as W/L/?.
func PrintStreak(w io.Writer, s aggregator.Streak) {
	cHeader.Fprint(w, "Last 10: ")
	for _, o := range s.Recent {
		switch o {
		case model.OutcomeWin:
			cWin.Fprint(w, "W ")
		case model.OutcomeLoss:
			cLoss.Fprint(w, "L ")
		default:
			cMuted.Fprint(w, "? ")
		}
	}
	switch {
	case s.Length == 0:
		cMuted.Fprintln(w, " no current streak")
	case s.Kind == model.OutcomeWin:
		cWin.Fprintf(w, " %d WIN STREAK\n", s.Length)
	default:
		cLoss.Fprintf(w, " %d LOSS STREAK\n", s.Length)
	}
	fmt.Fprintln(w)
}

// PrintMatchTable prints one page of the match table.
func PrintMatchTable(w io.Writer, p query.Page) {
	table := newTable(w)
	table.Header("DATE", "MODE", "MAP", "RESULT", "K", "D", "A", "K/D", "EKIA/D", "SKILL", "SCORE", "HS%", "ACC%", "DMG")
	for _, m := range p.Rows {
		result := query.OutcomeLabel(m.Outcome)
		if result == "" {
			result = "-"
		}
		table.Append(
			m.Timestamp.Format(TimeLayout),
			m.GameType,
			m.Map,
			result,
			opt(m.Kills, 0),
			opt(m.Deaths, 0),
			opt(m.Assists, 0),
			opt(m.KDRatio, 2),
			opt(m.EKIAOverD, 2),
			opt(m.Skill, 0),
			opt(m.Score, 0),
			opt(m.HeadshotPct, 1),
			opt(m.AccuracyPct, 1),
			opt(m.DamageDone, 0),
		)
	}
	table.Render()
	cMuted.Fprintf(w, "page %d/%d (%d matches)\n", p.Page, p.TotalPages, p.TotalRows)
}

// PrintMapPerformance prints per-map results, best win rate first.
func PrintMapPerformance(w io.Writer, stats []aggregator.MapStat) {
	table := newTable(w)
	table.Header("RANK", "MAP", "WIN%", "AVG_K/D", "MATCHES", "WINS")
	for i, s := range stats {
		table.Append(
			strconv.Itoa(i+1),
			s.Map,
			pct(s.WinRate),
			num(float64(s.AvgKD), 2),
			strconv.Itoa(s.Matches),
			strconv.Itoa(s.Wins),
		)
	}
	table.Render()
}

// PrintVeto prints the ban/protect recommendation and the per-map scores.
func PrintVeto(w io.Writer, v aggregator.Veto) {
	if len(v.Maps) == 0 {
		cMuted.Fprintln(w, "Play more ranked matches to see map veto recommendations")
		return
	}
	table := newTable(w)
	table.Header("MAP", "MATCHES", "WIN%", "AVG_K/D", "AVG_SCORE", "VETO_SCORE", "MODES")
	for _, m := range v.Maps {
		modes := ""
		for i, ms := range m.Modes {
			if i > 0 {
				modes += "  "
			}
			modes += fmt.Sprintf("%s %s (%d)", ms.Mode, pct(ms.WinRate), ms.Matches)
		}
		table.Append(
			m.Map,
			strconv.Itoa(m.Matches),
			pct(m.WinRate),
			num(float64(m.AvgKD), 2),
			num(float64(m.AvgScore), 0),
			num(m.Score, 1),
			modes,
		)
	}
	table.Render()

	if len(v.Ban) == 0 {
		cMuted.Fprintln(w, "Play more maps to get veto recommendations")
		return
	}
	cLoss.Fprint(w, "BAN:     ")
	for _, m := range v.Ban {
		fmt.Fprintf(w, "%s (%s WR, %s K/D)  ", m.Map, pct(m.WinRate), num(float64(m.AvgKD), 2))
	}
	fmt.Fprintln(w)
	cWin.Fprint(w, "PROTECT: ")
	for _, m := range v.Protect {
		fmt.Fprintf(w, "%s (%s WR, %s K/D)  ", m.Map, pct(m.WinRate), num(float64(m.AvgKD), 2))
	}
	fmt.Fprintln(w)
}

// PrintRanked prints the ranked overview line.
func PrintRanked(w io.Writer, r aggregator.RankedOverview) {
	if r.Matches == 0 {
		cMuted.Fprintln(w, "No ranked matches found")
		return
	}
	fmt.Fprintf(w, "Ranked: %s%% win rate (%dW - %dL), avg K/D %s, %d matches\n",
		num(r.WinRate, 1), r.Record.Wins, r.Record.Losses, num(float64(r.AvgKD), 2), r.Matches)
}

// PrintHours prints performance by hour of day.
func PrintHours(w io.Writer, hours []aggregator.HourStat) {
	table := newTable(w)
	table.Header("HOUR", "MATCHES", "WIN%", "AVG_K/D")
	for _, h := range hours {
		table.Append(
			fmt.Sprintf("%02d:00", h.Hour),
			strconv.Itoa(h.Matches),
			pct(h.WinRate),
			num(float64(h.AvgKD), 2),
		)
	}
	table.Render()
}

// PrintSessions prints session summaries followed by the fatigue curve.
func PrintSessions(w io.Writer, sessions []aggregator.SessionSummary, curve []aggregator.FatiguePoint) {
	if len(sessions) == 0 {
		cMuted.Fprintln(w, "Not enough session data: need at least one session with 3+ games")
		return
	}
	table := newTable(w)
	table.Header("START", "GAMES", "LENGTH", "W", "L", "AVG_K/D")
	for _, s := range sessions {
		table.Append(
			s.Start.Format(TimeLayout),
			strconv.Itoa(s.Games),
			s.Elapsed.Round(time.Minute).String(),
			strconv.Itoa(s.Record.Wins),
			strconv.Itoa(s.Record.Losses),
			num(float64(s.AvgKD), 2),
		)
	}
	table.Render()

	if len(curve) == 0 {
		return
	}
	fmt.Fprintln(w)
	cHeader.Fprintln(w, "K/D by game number in session")
	ft := newTable(w)
	ft.Header("GAME#", "AVG_K/D", "SESSIONS")
	for _, p := range curve {
		ft.Append(strconv.Itoa(p.GameNum), num(float64(p.AvgKD), 2), strconv.Itoa(p.Count))
	}
	ft.Render()
}

// PrintConsistency prints the consistency grade and spreads.
func PrintConsistency(w io.Writer, c aggregator.Consistency) {
	cHeader.Fprint(w, "Consistency grade: ")
	if c.Score100.NaN() {
		cMuted.Fprintln(w, "N/A (insufficient K/D data)")
	} else {
		g := cWin
		switch c.Grade {
		case "B", "C":
			g = cWarn
		case "D":
			g = cLoss
		}
		g.Fprintf(w, "%s", c.Grade)
		fmt.Fprintf(w, "  (%s/100)\n", num(float64(c.Score100), 0))
	}

	table := newTable(w)
	table.Header("METRIC", "N", "MEAN", "MEDIAN", "STD_DEV", "CV%")
	row := func(name string, s aggregator.Spread) {
		table.Append(name, strconv.Itoa(s.N), num(float64(s.Mean), 2), num(float64(s.Median), 2),
			num(s.StdDev, 2), num(s.CV, 1))
	}
	row("K/D", c.KD)
	if c.HasSkill {
		row("Skill", c.Skill)
	}
	row("Score", c.Score)
	table.Render()

	if len(c.Histogram) == 0 {
		return
	}
	peak := 0
	for _, b := range c.Histogram {
		if b.Count > peak {
			peak = b.Count
		}
	}
	fmt.Fprintln(w)
	cHeader.Fprintln(w, "K/D distribution")
	for _, b := range c.Histogram {
		bar := 0
		if peak > 0 {
			bar = b.Count * 40 / peak
		}
		fmt.Fprintf(w, "  %5.2f-%-5.2f %4d ", b.Lo, b.Hi, b.Count)
		cPositive.Fprintln(w, strings.Repeat("#", bar))
	}
}

// PrintCorrelation prints the correlation matrix. Cells without enough
// co-present samples show their sample size instead of r.
func PrintCorrelation(w io.Writer, metrics []string, cm [][]aggregator.Cell) {
	table := newTable(w)
	header := []any{""}
	for _, m := range metrics {
		header = append(header, m)
	}
	table.Header(header...)
	for i, row := range cm {
		cells := []any{metrics[i]}
		for _, c := range row {
			if !c.Reliable {
				cells = append(cells, fmt.Sprintf("n=%d", c.N))
				continue
			}
			cells = append(cells, num(c.R, 2))
		}
		table.Append(cells...)
	}
	table.Render()
}

// PrintGrid prints the map x mode win-rate grid; ranked cells are starred.
func PrintGrid(w io.Writer, grid []aggregator.GridCell) {
	table := newTable(w)
	table.Header("MAP", "MODE", "WIN%", "MATCHES", "RANKED")
	for _, c := range grid {
		ranked := ""
		if c.Ranked {
			ranked = "*"
		}
		table.Append(c.Map, c.Mode, pct(c.WinRate), strconv.Itoa(c.Matches), ranked)
	}
	table.Render()
}

// PrintGameTypes prints the per-game-type averages and the win/loss split.
func PrintGameTypes(w io.Writer, metric string, avgs []aggregator.TypeAverage, d aggregator.Donut) {
	table := newTable(w)
	table.Header("GAME_TYPE", "AVG "+metric, "MATCHES")
	for _, a := range avgs {
		table.Append(a.GameType, num(a.Value, 2), strconv.Itoa(a.Count))
	}
	table.Render()
	if d.Wins+d.Losses == 0 {
		cMuted.Fprintln(w, "No decided matches")
		return
	}
	fmt.Fprintf(w, "Wins %d / Losses %d (%s%% win rate)\n", d.Wins, d.Losses, num(d.WinRate, 1))
}

// PrintLoads prints the ingestion history, newest first.
func PrintLoads(w io.Writer, loads []storage.LoadRecord) {
	if len(loads) == 0 {
		fmt.Fprintln(w, "No loads recorded.")
		return
	}
	table := newTable(w)
	table.Header("ID", "LOADED_AT", "SOURCE", "STATE", "INPUT", "KEPT", "MALFORMED", "INVALID", "ERROR")
	for _, l := range loads {
		table.Append(
			strconv.FormatInt(l.ID, 10),
			l.LoadedAt.Local().Format(TimeLayout),
			l.Source,
			l.State,
			strconv.Itoa(l.Input),
			strconv.Itoa(l.Kept),
			strconv.Itoa(l.Malformed),
			strconv.Itoa(l.Invalid),
			l.Error,
		)
	}
	table.Render()
}

// PrintOptions lists the selector values available for the loaded data.
func PrintOptions(w io.Writer, o query.Options) {
	cHeader.Fprint(w, "Modes:   ")
	fmt.Fprintln(w, strings.Join(o.Gamemodes, ", "))
	cHeader.Fprint(w, "Maps:    ")
	fmt.Fprintln(w, strings.Join(o.Maps, ", "))
	cHeader.Fprint(w, "Metrics: ")
	fmt.Fprintln(w, strings.Join(o.Metrics, ", "))
}
