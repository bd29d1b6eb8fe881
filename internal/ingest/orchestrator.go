// Package ingest loads the canonical match set: cache first, then the stats
// API, then the static CSV, and publishes the result to a Store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pable/go-cod-stats/internal/logging"
	"github.com/pable/go-cod-stats/internal/model"
	"github.com/pable/go-cod-stats/internal/normalize"
	"github.com/pable/go-cod-stats/internal/storage"
)

// ErrNoData is reported in Result.Err when every source failed or produced
// no valid matches.
var ErrNoData = errors.New("no match data available")

// NoDataHint tells the user how to leave the empty state.
const NoDataHint = "no match data loaded: upload a CSV export with `codstats upload <file.csv>`, " +
	"or fix the sources and retry with `codstats load --reload` (POST /api/cache/clear when serving)"

// State is the orchestrator's position in the load sequence.
type State int

const (
	StateIdle State = iota
	StateCacheCheck
	StateFetchRemote
	StateFallbackFetch
	StateReady
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCacheCheck:
		return "cache-check"
	case StateFetchRemote:
		return "fetch-remote"
	case StateFallbackFetch:
		return "fallback-fetch"
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	default:
		return "?"
	}
}

// Cache is the persisted match slot.
type Cache interface {
	Load() ([]model.CanonicalMatch, error)
	Save(ms []model.CanonicalMatch) error
	Clear() error
}

// APIFetcher lists raw records from the stats API.
type APIFetcher interface {
	FetchMatches(ctx context.Context, limit int) ([]model.RawAPIRecord, error)
}

// CSVFetcher reads raw rows from the static CSV.
type CSVFetcher interface {
	LoadCSV(ctx context.Context) ([]model.RawCSVRow, error)
}

// Recorder receives one entry per completed load.
type Recorder interface {
	InsertLoad(r storage.LoadRecord) error
}

// Options configure an Orchestrator.
type Options struct {
	// UseAPI selects the API as the primary source. When false, or after the
	// API has failed once, loads go straight to the CSV.
	UseAPI bool
	Limit  int
	// Recorder is optional.
	Recorder Recorder
	Now      func() time.Time
}

// Result describes the outcome of a load. Total failure is a StateEmpty
// result, not an error return.
type Result struct {
	State     State
	Source    model.Source
	FromCache bool
	Count     int
	Stats     normalize.Stats
	Err       error
}

// Orchestrator runs the load sequence. Loads are serialized; only one fetch
// is ever outstanding.
type Orchestrator struct {
	store *Store
	cache Cache
	api   APIFetcher
	csv   CSVFetcher
	opts  Options

	mu       sync.Mutex
	state    atomic.Int32
	fellBack bool
	last     Result
}

// New wires an orchestrator. api may be nil, in which case only the CSV is used.
func New(store *Store, cache Cache, api APIFetcher, csv CSVFetcher, opts Options) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{store: store, cache: cache, api: api, csv: csv, opts: opts}
}

// Store returns the store the orchestrator publishes to.
func (o *Orchestrator) Store() *Store { return o.store }

// State returns the current state. It does not wait for a load in progress.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) setState(st State) {
	o.state.Store(int32(st))
}

// Load runs the sequence unless the session already reached Ready, in which
// case the previous result is returned unchanged.
func (o *Orchestrator) Load(ctx context.Context) Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.State() == StateReady {
		return o.last
	}
	res := o.load(ctx)
	o.setState(res.State)
	o.last = res
	o.record(res)
	return res
}

func (o *Orchestrator) load(ctx context.Context) Result {
	o.setState(StateCacheCheck)
	if ms, ok := o.readCache(); ok {
		o.store.Publish(ms)
		logging.Info().Int("matches", len(ms)).Msg("loaded matches from cache")
		return Result{State: StateReady, FromCache: true, Count: len(ms), Stats: normalize.Stats{Input: len(ms)}}
	}

	o.setState(StateFetchRemote)
	if o.opts.UseAPI && o.api != nil && !o.fellBack {
		ms, st, err := o.fetchAPI(ctx)
		if err == nil {
			return o.publish(ms, model.SourceAPI, st)
		}
		logging.Error().Err(err).Msg("loading from API failed, falling back to CSV")
		o.fellBack = true
		o.setState(StateFallbackFetch)
	}

	ms, st, err := o.fetchCSV(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("loading from CSV failed")
		o.store.Reset()
		return Result{State: StateEmpty, Source: model.SourceCSV, Stats: st, Err: fmt.Errorf("%w: %v", ErrNoData, err)}
	}
	return o.publish(ms, model.SourceCSV, st)
}

// readCache returns the cached set on a hit. An unreadable entry is cleared
// and treated as a miss; so is an empty one.
func (o *Orchestrator) readCache() ([]model.CanonicalMatch, bool) {
	if o.cache == nil {
		return nil, false
	}
	ms, err := o.cache.Load()
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, false
	case err != nil:
		logging.Warn().Err(err).Msg("cached matches unreadable, clearing")
		if cerr := o.cache.Clear(); cerr != nil {
			logging.Warn().Err(cerr).Msg("clear cache")
		}
		return nil, false
	case len(ms) == 0:
		return nil, false
	}
	sortByTime(ms)
	return ms, true
}

func (o *Orchestrator) fetchAPI(ctx context.Context) ([]model.CanonicalMatch, normalize.Stats, error) {
	recs, err := o.api.FetchMatches(ctx, o.opts.Limit)
	if err != nil {
		return nil, normalize.Stats{}, err
	}
	n := o.normalizer(model.SourceAPI)
	ms, st := n.APIBatch(recs)
	return ms, st, nil
}

func (o *Orchestrator) fetchCSV(ctx context.Context) ([]model.CanonicalMatch, normalize.Stats, error) {
	if o.csv == nil {
		return nil, normalize.Stats{}, errors.New("no CSV source configured")
	}
	rows, err := o.csv.LoadCSV(ctx)
	if err != nil {
		return nil, normalize.Stats{}, err
	}
	n := o.normalizer(model.SourceCSV)
	ms, st := n.CSVBatch(rows)
	if len(ms) == 0 {
		return nil, st, fmt.Errorf("csv has no valid matches (%d rows)", st.Input)
	}
	return ms, st, nil
}

func (o *Orchestrator) normalizer(src model.Source) *normalize.Normalizer {
	n := normalize.New(src)
	n.Now = o.opts.Now
	return n
}

// publish persists ms (best effort) and swaps it into the store.
func (o *Orchestrator) publish(ms []model.CanonicalMatch, src model.Source, st normalize.Stats) Result {
	if len(ms) == 0 {
		o.store.Reset()
		return Result{State: StateEmpty, Source: src, Stats: st, Err: ErrNoData}
	}
	o.persist(ms)
	o.store.Publish(ms)
	logging.Info().Str("source", src.String()).Int("matches", len(ms)).
		Int("malformed", st.Malformed).Int("invalid", st.Invalid).Msg("loaded matches")
	return Result{State: StateReady, Source: src, Count: len(ms), Stats: st}
}

func (o *Orchestrator) persist(ms []model.CanonicalMatch) {
	if o.cache == nil {
		return
	}
	if err := o.cache.Save(ms); err != nil {
		logging.Warn().Err(err).Msg("failed to save matches to cache")
	}
}

// ApplyUpload normalizes records returned by the upload endpoint and makes
// them the canonical set.
func (o *Orchestrator) ApplyUpload(recs []model.RawAPIRecord) Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	ms, st := o.normalizer(model.SourceUpload).APIBatch(recs)
	logging.Info().Int("kept", len(ms)).Int("input", st.Input).Msg("processed uploaded matches")
	res := o.publish(ms, model.SourceUpload, st)
	o.setState(res.State)
	o.last = res
	o.record(res)
	return res
}

// Clear removes the cached slot, empties the store and returns to Idle so
// the next Load ingests again.
func (o *Orchestrator) Clear() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.store.Reset()
	o.setState(StateIdle)
	o.last = Result{}
	if o.cache == nil {
		return nil
	}
	if err := o.cache.Clear(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Reload is Clear followed by Load.
func (o *Orchestrator) Reload(ctx context.Context) (Result, error) {
	if err := o.Clear(); err != nil {
		return Result{}, err
	}
	return o.Load(ctx), nil
}

func (o *Orchestrator) record(res Result) {
	if o.opts.Recorder == nil {
		return
	}
	rec := storage.LoadRecord{
		LoadedAt:  o.opts.Now(),
		Source:    res.Source.String(),
		State:     res.State.String(),
		FromCache: res.FromCache,
		Input:     res.Stats.Input,
		Kept:      res.Count,
		Malformed: res.Stats.Malformed,
		Invalid:   res.Stats.Invalid,
	}
	if res.FromCache {
		rec.Source = "cache"
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	if err := o.opts.Recorder.InsertLoad(rec); err != nil {
		logging.Warn().Err(err).Msg("record load history")
	}
}

func sortByTime(ms []model.CanonicalMatch) {
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].Timestamp.Before(ms[j].Timestamp)
	})
}
