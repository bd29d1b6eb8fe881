package ingest

import (
	"sync"

	"github.com/pable/go-cod-stats/internal/model"
	"github.com/pable/go-cod-stats/internal/query"
)

// Store owns the canonical match set and the current query. The set is
// replaced wholesale on Publish and never modified in place, so the slices
// handed to readers stay valid after later publishes.
type Store struct {
	mu      sync.RWMutex
	matches []model.CanonicalMatch
	q       model.Query
	ready   bool
	version uint64
}

// NewStore returns an empty, not-ready store with the default query.
func NewStore() *Store {
	return &Store{q: model.DefaultQuery()}
}

// Publish swaps in a fully ingested set and marks the store ready.
func (s *Store) Publish(ms []model.CanonicalMatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = ms
	s.ready = true
	s.version++
}

// Reset drops the set and marks the store not ready.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = nil
	s.ready = false
	s.version++
}

// Ready reports whether ingestion has completed.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Version increments on every Publish or Reset.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the number of published matches.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// Matches returns references to every published match, oldest first.
// Callers must not modify the records.
func (s *Store) Matches() []*model.CanonicalMatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Refs(s.matches)
}

// Query returns the current selection.
func (s *Store) Query() model.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q
}

// SetQuery replaces the current selection. Empty fields keep their
// previous value.
func (s *Store) SetQuery(q model.Query) model.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.Gamemode != "" {
		s.q.Gamemode = q.Gamemode
	}
	if q.Map != "" {
		s.q.Map = q.Map
	}
	if q.Metric != "" {
		s.q.Metric = q.Metric
	}
	return s.q
}

// View returns the filtered view for the current query.
func (s *Store) View() []*model.CanonicalMatch {
	s.mu.RLock()
	all, q := s.matches, s.q
	s.mu.RUnlock()
	return query.FilteredView(model.Refs(all), q)
}
