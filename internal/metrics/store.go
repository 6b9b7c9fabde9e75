package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/privacykit/cohortd/internal/db"
)

// timeLayout is fixed-width (zero-padded nanoseconds, literal Z) so the
// TEXT timestamp column compares lexicographically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is the SQLite-backed EventStore.
type Store struct {
	db *db.DB
}

var _ EventStore = (*Store)(nil)

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// StoreEvent inserts a single event.
func (s *Store) StoreEvent(ctx context.Context, e Event) error {
	meta := "{}"
	if len(e.Metadata) > 0 {
		encoded, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling event metadata: %w", err)
		}
		meta = string(encoded)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metrics_events (event_id, event_type, cohort_id, domain, timestamp, metadata)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.EventID, string(e.EventType), e.CohortID, e.Domain,
		e.Timestamp.UTC().Format(timeLayout), meta,
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// GetEvents returns events in the time range, ordered by timestamp. An
// empty cohortIDs slice selects every cohort.
func (s *Store) GetEvents(ctx context.Context, cohortIDs []string, tr TimeRange) ([]Event, error) {
	query := `
		SELECT event_id, event_type, cohort_id, domain, timestamp, metadata
		FROM metrics_events WHERE 1=1`
	var args []any

	if len(cohortIDs) > 0 {
		query += ` AND cohort_id IN (?` + strings.Repeat(",?", len(cohortIDs)-1) + `)`
		for _, id := range cohortIDs {
			args = append(args, id)
		}
	}
	if !tr.Start.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, tr.Start.UTC().Format(timeLayout))
	}
	if !tr.End.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, tr.End.UTC().Format(timeLayout))
	}
	query += ` ORDER BY timestamp`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var evType, meta string
		var ts time.Time
		if err := rows.Scan(&e.EventID, &evType, &e.CohortID, &e.Domain, &ts, &meta); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.EventType = EventType(evType)
		e.Timestamp = ts
		if meta != "" && meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling metadata for %s: %w", e.EventID, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CleanupExpiredEvents deletes events older than the cutoff and reports
// how many were removed.
func (s *Store) CleanupExpiredEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM metrics_events WHERE timestamp < ?`,
		olderThan.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting expired events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted events: %w", err)
	}
	return n, nil
}
