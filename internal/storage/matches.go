package storage

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/pable/go-cod-stats/internal/model"
)

// MatchCache persists the canonical match set as one JSON array under a
// fixed key. Timestamps are stored as RFC 3339 strings.
type MatchCache struct {
	db  *DB
	key string
}

// NewMatchCache returns a cache using key as its slot.
func NewMatchCache(db *DB, key string) *MatchCache {
	return &MatchCache{db: db, key: key}
}

// Key returns the slot name.
func (c *MatchCache) Key() string { return c.key }

// Load returns the cached matches. ErrNotFound means the slot is empty; any
// other error means the entry is unreadable.
func (c *MatchCache) Load() ([]model.CanonicalMatch, error) {
	b, err := c.db.Get(c.key)
	if err != nil {
		return nil, err
	}
	var ms []model.CanonicalMatch
	if err := json.Unmarshal(b, &ms); err != nil {
		return nil, fmt.Errorf("decode cached matches: %w", err)
	}
	return ms, nil
}

// Save replaces the slot with ms.
func (c *MatchCache) Save(ms []model.CanonicalMatch) error {
	if ms == nil {
		ms = []model.CanonicalMatch{}
	}
	b, err := json.Marshal(ms)
	if err != nil {
		return fmt.Errorf("encode matches: %w", err)
	}
	return c.db.Put(c.key, b)
}

// Clear removes the slot.
func (c *MatchCache) Clear() error {
	return c.db.Delete(c.key)
}
