package query

import (
	"sort"
	"strings"

	"github.com/pable/go-cod-stats/internal/model"
)

// PageSize is the number of rows per match-table page.
const PageSize = 25

// Sortable non-metric table columns.
const (
	ColTimestamp = "timestamp"
	ColGameType  = "gameType"
	ColMap       = "map"
	ColOutcome   = "outcome"
)

// TableQuery selects, orders and pages match-table rows.
type TableQuery struct {
	Search   string `json:"search"`
	GameType string `json:"gameType"`
	Map      string `json:"map"`
	SortBy   string `json:"sortBy"`
	Asc      bool   `json:"asc"`
	Page     int    `json:"page" validate:"gte=0"`
	PageSize int    `json:"pageSize" validate:"gte=0,lte=1000"`
}

// Page is one page of table rows.
type Page struct {
	Rows       []*model.CanonicalMatch `json:"rows"`
	Page       int                     `json:"page"`
	TotalPages int                     `json:"totalPages"`
	TotalRows  int                     `json:"totalRows"`
}

// Table applies tq to all. Page numbers are 1-based; out-of-range pages are
// clamped. Absent values sort after present ones in either direction.
func Table(all []*model.CanonicalMatch, tq TableQuery) Page {
	rows := TableRows(all, tq)

	size := tq.PageSize
	if size <= 0 {
		size = PageSize
	}
	total := (len(rows) + size - 1) / size
	if total == 0 {
		total = 1
	}
	page := tq.Page
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	lo := (page - 1) * size
	hi := lo + size
	if hi > len(rows) {
		hi = len(rows)
	}
	return Page{Rows: rows[lo:hi], Page: page, TotalPages: total, TotalRows: len(rows)}
}

// TableRows returns every row matching tq, sorted, without paging.
func TableRows(all []*model.CanonicalMatch, tq TableQuery) []*model.CanonicalMatch {
	search := strings.ToLower(strings.TrimSpace(tq.Search))
	rows := make([]*model.CanonicalMatch, 0, len(all))
	for _, m := range all {
		if tq.GameType != "" && tq.GameType != model.AllModes && m.GameType != tq.GameType {
			continue
		}
		if !MatchesMap(m.Map, tq.Map) {
			continue
		}
		if search != "" && !matchesSearch(m, search) {
			continue
		}
		rows = append(rows, m)
	}

	sortBy := tq.SortBy
	asc := tq.Asc
	if sortBy == "" {
		sortBy, asc = ColTimestamp, false
	}
	sort.SliceStable(rows, less(rows, sortBy, asc))
	return rows
}

func matchesSearch(m *model.CanonicalMatch, s string) bool {
	return strings.Contains(strings.ToLower(m.GameType), s) ||
		strings.Contains(strings.ToLower(m.Map), s) ||
		strings.Contains(strings.ToLower(OutcomeLabel(m.Outcome)), s)
}

// OutcomeLabel is the table's display text for an outcome.
func OutcomeLabel(o model.Outcome) string {
	switch o {
	case model.OutcomeWin:
		return "Win"
	case model.OutcomeLoss:
		return "Loss"
	default:
		return ""
	}
}

func less(rows []*model.CanonicalMatch, col string, asc bool) func(i, j int) bool {
	cmpStr := func(a, b string) bool {
		if asc {
			return a < b
		}
		return a > b
	}
	switch col {
	case ColTimestamp:
		return func(i, j int) bool {
			if asc {
				return rows[i].Timestamp.Before(rows[j].Timestamp)
			}
			return rows[i].Timestamp.After(rows[j].Timestamp)
		}
	case ColGameType:
		return func(i, j int) bool { return cmpStr(rows[i].GameType, rows[j].GameType) }
	case ColMap:
		return func(i, j int) bool { return cmpStr(rows[i].Map, rows[j].Map) }
	case ColOutcome:
		return func(i, j int) bool {
			return cmpStr(OutcomeLabel(rows[i].Outcome), OutcomeLabel(rows[j].Outcome))
		}
	}
	return func(i, j int) bool {
		a, aok := rows[i].Metric(col)
		b, bok := rows[j].Metric(col)
		switch {
		case !aok || !bok:
			return aok && !bok
		case asc:
			return a < b
		default:
			return a > b
		}
	}
}
