package httpapi

import (
	"net/http"
	"strconv"

	"github.com/pable/go-cod-stats/internal/aggregator"
	"github.com/pable/go-cod-stats/internal/model"
	"github.com/pable/go-cod-stats/internal/query"
)

type healthResponse struct {
	Status  string `json:"status"`
	State   string `json:"state"`
	Ready   bool   `json:"ready"`
	Matches int    `json:"matches"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		State:   s.orch.State().String(),
		Ready:   s.store.Ready(),
		Matches: s.store.Len(),
	})
}

func (s *Server) options(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, query.BuildOptions(s.store.Matches()))
}

type viewResponse struct {
	Query   model.Query             `json:"query"`
	Count   int                     `json:"count"`
	Matches []*model.CanonicalMatch `json:"matches"`
	Values  []float64               `json:"values"`
}

func (s *Server) view(w http.ResponseWriter, r *http.Request) {
	q, data, ok := s.selection(r)
	if !ok {
		s.badSelection(w, q)
		return
	}
	respondJSON(w, http.StatusOK, viewResponse{
		Query:   q,
		Count:   len(data),
		Matches: data,
		Values:  aggregator.Values(data, q.Metric),
	})
}

func (s *Server) matches(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	tq := query.TableQuery{
		Search:   v.Get("search"),
		GameType: v.Get("gameType"),
		Map:      v.Get("map"),
		SortBy:   v.Get("sort"),
		Asc:      v.Get("asc") == "true",
		Page:     intParam(r, "page", 1),
		PageSize: intParam(r, "pageSize", query.PageSize),
	}
	if err := s.validate.Struct(tq); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, query.Table(s.store.Matches(), tq))
}

type summaryResponse struct {
	Query       model.Query               `json:"query"`
	Summary     aggregator.Summary        `json:"summary"`
	Insights    []aggregator.Insight      `json:"insights"`
	Streak      aggregator.Streak         `json:"streak"`
	Ranked      aggregator.RankedOverview `json:"ranked"`
	Consistency aggregator.Consistency    `json:"consistency"`
	GameTypes   []aggregator.TypeAverage  `json:"gameTypes"`
	Donut       aggregator.Donut          `json:"donut"`
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	q, data, ok := s.selection(r)
	if !ok {
		s.badSelection(w, q)
		return
	}
	respondJSON(w, http.StatusOK, summaryResponse{
		Query:       q,
		Summary:     aggregator.SummaryOf(data, q.Metric),
		Insights:    aggregator.Insights(data),
		Streak:      aggregator.CurrentStreak(data),
		Ranked:      aggregator.Ranked(data),
		Consistency: aggregator.ConsistencyOf(data),
		GameTypes:   aggregator.GameTypeAverages(data, q.Metric),
		Donut:       aggregator.WinLossDonut(data, r.URL.Query().Get("rankedOnly") == "true"),
	})
}

type sessionsResponse struct {
	Sessions []aggregator.SessionSummary `json:"sessions"`
	Fatigue  []aggregator.FatiguePoint   `json:"fatigue"`
}

func (s *Server) sessions(w http.ResponseWriter, r *http.Request) {
	q, data, ok := s.selection(r)
	if !ok {
		s.badSelection(w, q)
		return
	}
	sess := aggregator.Sessions(data, s.opts.SessionGap, s.opts.MinSessionSize)
	respondJSON(w, http.StatusOK, sessionsResponse{
		Sessions: aggregator.Summarize(sess),
		Fatigue:  aggregator.FatigueCurve(sess, aggregator.DefaultMinSessionSize),
	})
}

type correlationsResponse struct {
	Metrics []string            `json:"metrics"`
	Cells   [][]aggregator.Cell `json:"cells"`
}

func (s *Server) correlations(w http.ResponseWriter, r *http.Request) {
	q, data, ok := s.selection(r)
	if !ok {
		s.badSelection(w, q)
		return
	}
	respondJSON(w, http.StatusOK, correlationsResponse{
		Metrics: aggregator.HeatmapMetrics,
		Cells:   aggregator.CorrelationMatrix(data, aggregator.HeatmapMetrics),
	})
}

type mapsResponse struct {
	Performance []aggregator.MapStat  `json:"performance"`
	Veto        aggregator.Veto       `json:"veto"`
	Grid        []aggregator.GridCell `json:"grid"`
}

func (s *Server) maps(w http.ResponseWriter, r *http.Request) {
	q, data, ok := s.selection(r)
	if !ok {
		s.badSelection(w, q)
		return
	}
	respondJSON(w, http.StatusOK, mapsResponse{
		Performance: aggregator.MapPerformance(data),
		Veto:        aggregator.VetoGuide(data),
		Grid:        aggregator.WinRateGrid(data),
	})
}

func (s *Server) hours(w http.ResponseWriter, r *http.Request) {
	q, data, ok := s.selection(r)
	if !ok {
		s.badSelection(w, q)
		return
	}
	respondJSON(w, http.StatusOK, aggregator.HourOfDay(data, s.opts.Location))
}

type clearResponse struct {
	State   string `json:"state"`
	Source  string `json:"source"`
	Matches int    `json:"matches"`
	Error   string `json:"error,omitempty"`
}

// clearCache drops the cached slot and ingests again from the sources.
func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	res, err := s.orch.Reload(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "CACHE_ERROR", err.Error())
		return
	}
	out := clearResponse{State: res.State.String(), Source: res.Source.String(), Matches: res.Count}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	respondJSON(w, http.StatusOK, out)
}

func intParam(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
