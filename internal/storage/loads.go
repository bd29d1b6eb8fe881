package storage

import (
	"fmt"
	"time"
)

// LoadRecord is one row of the ingestion history.
type LoadRecord struct {
	ID        int64
	LoadedAt  time.Time
	Source    string
	State     string
	FromCache bool
	Input     int
	Kept      int
	Malformed int
	Invalid   int
	Error     string
}

// InsertLoad appends an ingestion outcome to the history.
func (db *DB) InsertLoad(r LoadRecord) error {
	_, err := db.conn.Exec(`
		INSERT INTO loads(loaded_at, source, state, from_cache, input, kept, malformed, invalid, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.LoadedAt.UTC().Format(time.RFC3339), r.Source, r.State, boolInt(r.FromCache),
		r.Input, r.Kept, r.Malformed, r.Invalid, r.Error,
	)
	if err != nil {
		return fmt.Errorf("insert load: %w", err)
	}
	return nil
}

// ListLoads returns the most recent loads, newest first.
func (db *DB) ListLoads(limit int) ([]LoadRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id, loaded_at, source, state, from_cache, input, kept, malformed, invalid, error
		FROM loads ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoadRecord
	for rows.Next() {
		var r LoadRecord
		var at string
		var fromCache int
		if err := rows.Scan(&r.ID, &at, &r.Source, &r.State, &fromCache,
			&r.Input, &r.Kept, &r.Malformed, &r.Invalid, &r.Error); err != nil {
			return nil, err
		}
		r.LoadedAt, _ = time.Parse(time.RFC3339, at)
		r.FromCache = fromCache != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
