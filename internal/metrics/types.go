package metrics

import (
	"context"
	"fmt"
	"time"
)

// EventType is one of the three recognized advertising event kinds.
type EventType string

const (
	EventImpression EventType = "impression"
	EventClick      EventType = "click"
	EventConversion EventType = "conversion"
)

// Event is one tagged advertising event. Events are immutable once
// recorded.
type Event struct {
	EventID   string         `json:"event_id"`
	EventType EventType      `json:"event_type"`
	CohortID  string         `json:"cohort_id"`
	Domain    string         `json:"domain"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TimeRange selects events with Start <= timestamp <= End.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether ts falls inside the range. A zero Start or End
// leaves that side unbounded.
func (tr TimeRange) Contains(ts time.Time) bool {
	if !tr.Start.IsZero() && ts.Before(tr.Start) {
		return false
	}
	if !tr.End.IsZero() && ts.After(tr.End) {
		return false
	}
	return true
}

// AggregatedMetrics is the per-cohort aggregate returned by a metrics
// query. It is recomputed per query and never persisted.
type AggregatedMetrics struct {
	CohortID            string    `json:"cohort_id"`
	TimeRange           TimeRange `json:"time_range"`
	Impressions         int       `json:"impressions"`
	Clicks              int       `json:"clicks"`
	Conversions         int       `json:"conversions"`
	ClickThroughRate    float64   `json:"click_through_rate"`
	ConversionRate      float64   `json:"conversion_rate"`
	DataPoints          int       `json:"data_points"`
	PrivacyThresholdMet bool      `json:"privacy_threshold_met"`
}

// AttributionReport links a conversion to its nearest preceding impression
// in the same cohort. Reports carry fresh noise on every generation and
// are not stable across calls.
type AttributionReport struct {
	ReportID         string        `json:"report_id"`
	CohortID         string        `json:"cohort_id"`
	SourceEventID    string        `json:"source_event_id"`
	TriggerEventID   string        `json:"trigger_event_id"`
	AttributionDelay time.Duration `json:"attribution_delay"`
	ConversionValue  float64       `json:"conversion_value"`
	PrivacyBudget    float64       `json:"privacy_budget"`
}

// ValidationError reports why an event was rejected by RecordEvent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event: %s %s", e.Field, e.Reason)
}

// EventStore is the persistence collaborator. The engine never stores
// events directly.
type EventStore interface {
	StoreEvent(ctx context.Context, e Event) error
	GetEvents(ctx context.Context, cohortIDs []string, tr TimeRange) ([]Event, error)
	CleanupExpiredEvents(ctx context.Context, olderThan time.Time) (int64, error)
}
