package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cod-stats/internal/ingest"
	"github.com/pable/go-cod-stats/internal/model"
	"github.com/pable/go-cod-stats/internal/source"
	"github.com/pable/go-cod-stats/internal/storage"
)

// session is one opened cache plus the orchestrator loading into it.
type session struct {
	db     *storage.DB
	client *source.Client
	orch   *ingest.Orchestrator
}

func openSession() (*session, error) {
	db, err := storage.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	s := &session{db: db}
	var api ingest.APIFetcher
	if cfg.API.BaseURL != "" {
		s.client = source.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
		api = s.client
	}
	s.orch = ingest.New(
		ingest.NewStore(),
		storage.NewMatchCache(db, cfg.Cache.Key),
		api,
		source.NewCSVLoader(cfg.CSV.Path),
		ingest.Options{UseAPI: cfg.API.UseAPI, Limit: cfg.API.Limit, Recorder: db},
	)
	return s, nil
}

func (s *session) Close() error {
	return s.db.Close()
}

// load runs ingestion and fails when nothing could be loaded.
func (s *session) load(ctx context.Context) (ingest.Result, error) {
	res := s.orch.Load(ctx)
	if res.State != ingest.StateReady {
		fmt.Fprintln(os.Stderr, ingest.NoDataHint)
		return res, fmt.Errorf("load matches: %w", res.Err)
	}
	return res, nil
}

// selection flags shared by the reporting commands.
type selection struct {
	mode   string
	mapSel string
	metric string
}

func (sel *selection) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sel.mode, "mode", model.AllModes, `game mode: "all", "ranked" or a game type`)
	cmd.Flags().StringVar(&sel.mapSel, "map", model.AllMaps, `map name or "all"`)
	cmd.Flags().StringVar(&sel.metric, "metric", model.DefaultMetric, "metric to chart and average")
}

func (sel *selection) query() (model.Query, error) {
	if !model.IsMetric(sel.metric) {
		return model.Query{}, fmt.Errorf("unknown metric %q (known: %v)", sel.metric, model.MetricNames())
	}
	return model.Query{Gamemode: sel.mode, Map: sel.mapSel, Metric: sel.metric}, nil
}

// loadView opens a session, ingests and returns the filtered view for sel.
// The caller closes the session.
func loadView(ctx context.Context, sel *selection) (*session, model.Query, []*model.CanonicalMatch, error) {
	q, err := sel.query()
	if err != nil {
		return nil, q, nil, err
	}
	s, err := openSession()
	if err != nil {
		return nil, q, nil, err
	}
	if _, err := s.load(ctx); err != nil {
		s.Close()
		return nil, q, nil, err
	}
	store := s.orch.Store()
	q = store.SetQuery(q)
	view := store.View()
	if len(view) == 0 {
		fmt.Fprintln(os.Stdout, "No matches for this selection.")
	}
	return s, q, view, nil
}
