package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/privacykit/cohortd/internal/db"
)

// Store persists domain mappings in SQLite so manual entries survive
// restarts.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert inserts or replaces the mapping for its domain.
func (s *Store) Upsert(ctx context.Context, m Mapping) error {
	ids, err := json.Marshal(m.TopicIDs)
	if err != nil {
		return fmt.Errorf("marshalling topic ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO domain_mappings (domain, topic_ids, confidence, source, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			topic_ids = excluded.topic_ids,
			confidence = excluded.confidence,
			source = excluded.source,
			last_updated = excluded.last_updated`,
		m.Domain, string(ids), m.Confidence, string(m.Source), m.LastUpdated.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting mapping: %w", err)
	}
	return nil
}

// Delete removes the mapping for the domain.
func (s *Store) Delete(ctx context.Context, domain string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM domain_mappings WHERE domain = ?`, domain)
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}
	return nil
}

// All returns every stored mapping.
func (s *Store) All(ctx context.Context) ([]Mapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, topic_ids, confidence, source, last_updated
		FROM domain_mappings ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("querying mappings: %w", err)
	}
	defer rows.Close()

	var out []Mapping
	for rows.Next() {
		var m Mapping
		var ids, source, updated string
		if err := rows.Scan(&m.Domain, &ids, &m.Confidence, &source, &updated); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}
		if err := json.Unmarshal([]byte(ids), &m.TopicIDs); err != nil {
			return nil, fmt.Errorf("unmarshalling topic ids for %s: %w", m.Domain, err)
		}
		m.Source = Source(source)
		if ts, err := time.Parse(time.RFC3339, updated); err == nil {
			m.LastUpdated = ts
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
