package metrics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Params holds the privacy parameters applied to every aggregation.
type Params struct {
	Epsilon              float64
	Sensitivity          float64
	MinDataPoints        int
	MinCohortSize        int
	SuppressionThreshold int
}

// DefaultParams returns the standard privacy parameters.
func DefaultParams() Params {
	return Params{
		Epsilon:              1.0,
		Sensitivity:          1.0,
		MinDataPoints:        100,
		MinCohortSize:        50,
		SuppressionThreshold: 10,
	}
}

// rateNoiseFactor shrinks the noise scale applied to rates relative to
// the scale applied to counts.
const rateNoiseFactor = 0.1

// Engine validates and aggregates advertising events under differential
// privacy. Aggregates are recomputed per query; noise is fresh on every
// call, so repeated queries are not expected to agree.
type Engine struct {
	store   EventStore
	laplace *Laplace
	params  Params
	now     func() time.Time

	// OnRecord, if set, observes every successfully recorded event.
	OnRecord func(Event)
}

// NewEngine creates an Engine over the given store, parameters and noise
// source.
func NewEngine(store EventStore, params Params, src NoiseSource) *Engine {
	if src == nil {
		src = NewDefaultSource()
	}
	return &Engine{
		store:   store,
		laplace: NewLaplace(src),
		params:  params,
		now:     time.Now,
	}
}

// RecordEvent validates an event, stamps a missing timestamp, and hands
// it to the event store. The stored event is returned.
func (e *Engine) RecordEvent(ctx context.Context, ev Event) (Event, error) {
	if ev.EventID == "" {
		return Event{}, &ValidationError{Field: "event_id", Reason: "is required"}
	}
	if ev.CohortID == "" {
		return Event{}, &ValidationError{Field: "cohort_id", Reason: "is required"}
	}
	if ev.Domain == "" {
		return Event{}, &ValidationError{Field: "domain", Reason: "is required"}
	}
	switch ev.EventType {
	case EventImpression, EventClick, EventConversion:
	default:
		return Event{}, &ValidationError{Field: "event_type", Reason: fmt.Sprintf("%q is not recognized", ev.EventType)}
	}

	if ev.Timestamp.IsZero() {
		ev.Timestamp = e.now().UTC()
	}

	if err := e.store.StoreEvent(ctx, ev); err != nil {
		return Event{}, fmt.Errorf("storing event: %w", err)
	}
	if e.OnRecord != nil {
		e.OnRecord(ev)
	}
	return ev, nil
}

// GetAggregatedMetrics aggregates events per cohort, injects Laplace
// noise, and suppresses cohorts below the privacy thresholds. Results are
// ordered by cohort id.
func (e *Engine) GetAggregatedMetrics(ctx context.Context, cohortIDs []string, tr TimeRange) ([]AggregatedMetrics, error) {
	events, err := e.store.GetEvents(ctx, cohortIDs, tr)
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}

	byCohort := make(map[string][]Event)
	for _, ev := range events {
		byCohort[ev.CohortID] = append(byCohort[ev.CohortID], ev)
	}

	scale := e.params.Sensitivity / e.params.Epsilon
	out := make([]AggregatedMetrics, 0, len(byCohort))
	for cohortID, cohortEvents := range byCohort {
		m := AggregatedMetrics{CohortID: cohortID, TimeRange: tr}
		for _, ev := range cohortEvents {
			switch ev.EventType {
			case EventImpression:
				m.Impressions++
			case EventClick:
				m.Clicks++
			case EventConversion:
				m.Conversions++
			}
		}
		m.DataPoints = len(cohortEvents)
		if m.Impressions > 0 {
			m.ClickThroughRate = float64(m.Clicks) / float64(m.Impressions) * 100
		}
		if m.Clicks > 0 {
			m.ConversionRate = float64(m.Conversions) / float64(m.Clicks) * 100
		}
		m.PrivacyThresholdMet = m.DataPoints >= e.params.MinDataPoints &&
			m.Impressions >= e.params.MinCohortSize

		// Independent noise per cohort and per statistic.
		m.Impressions = e.laplace.noisyCount(m.Impressions, scale)
		m.Clicks = e.laplace.noisyCount(m.Clicks, scale)
		m.Conversions = e.laplace.noisyCount(m.Conversions, scale)
		m.ClickThroughRate = e.laplace.noisyRate(m.ClickThroughRate, scale*rateNoiseFactor)
		m.ConversionRate = e.laplace.noisyRate(m.ConversionRate, scale*rateNoiseFactor)

		// Suppression runs after noise and overrides it.
		if m.DataPoints < e.params.SuppressionThreshold || !m.PrivacyThresholdMet {
			m.Impressions = 0
			m.Clicks = 0
			m.Conversions = 0
			m.ClickThroughRate = 0
			m.ConversionRate = 0
			m.PrivacyThresholdMet = false
		}

		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CohortID < out[j].CohortID })
	return out, nil
}

// CalculateClickThroughRate computes a CTR percentage outside the full
// aggregation pipeline. Volumes below the minimum data-point floor
// report zero.
func (e *Engine) CalculateClickThroughRate(impressions, clicks int) float64 {
	if impressions < e.params.MinDataPoints || impressions == 0 {
		return 0
	}
	return float64(clicks) / float64(impressions) * 100
}

// CalculateConversionRate computes a conversion percentage outside the
// full aggregation pipeline. Click volumes below the suppression
// threshold report zero.
func (e *Engine) CalculateConversionRate(clicks, conversions int) float64 {
	if clicks < e.params.SuppressionThreshold || clicks == 0 {
		return 0
	}
	return float64(conversions) / float64(clicks) * 100
}

// GenerateAttributionReports pairs each conversion with its nearest
// preceding same-cohort impression (last-touch, single-touch). Report
// counts are capped per cohort by the privacy budget; surviving
// conversion values receive fresh Laplace noise.
func (e *Engine) GenerateAttributionReports(ctx context.Context, tr TimeRange) ([]AttributionReport, error) {
	events, err := e.store.GetEvents(ctx, nil, tr)
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}

	byCohort := make(map[string][]Event)
	for _, ev := range events {
		byCohort[ev.CohortID] = append(byCohort[ev.CohortID], ev)
	}

	cohortIDs := make([]string, 0, len(byCohort))
	for id := range byCohort {
		cohortIDs = append(cohortIDs, id)
	}
	sort.Strings(cohortIDs)

	maxPerCohort := int(math.Floor(e.params.Epsilon * 10))
	scale := e.params.Sensitivity / e.params.Epsilon

	var out []AttributionReport
	for _, cohortID := range cohortIDs {
		cohortEvents := byCohort[cohortID]
		sort.Slice(cohortEvents, func(i, j int) bool {
			return cohortEvents[i].Timestamp.Before(cohortEvents[j].Timestamp)
		})

		count := 0
		for i, ev := range cohortEvents {
			if ev.EventType != EventConversion {
				continue
			}
			if count >= maxPerCohort {
				break
			}

			// Nearest impression strictly before the conversion.
			var source *Event
			for j := i - 1; j >= 0; j-- {
				prev := &cohortEvents[j]
				if prev.EventType == EventImpression && prev.Timestamp.Before(ev.Timestamp) {
					source = prev
					break
				}
			}
			if source == nil {
				continue
			}

			value := conversionValue(ev)
			noised := value + e.laplace.Sample(scale)
			if noised < 0 {
				noised = 0
			}

			out = append(out, AttributionReport{
				ReportID:         uuid.New().String(),
				CohortID:         cohortID,
				SourceEventID:    source.EventID,
				TriggerEventID:   ev.EventID,
				AttributionDelay: ev.Timestamp.Sub(source.Timestamp),
				ConversionValue:  math.Round(noised*100) / 100,
				PrivacyBudget:    e.params.Epsilon / 10,
			})
			count++
		}
	}
	return out, nil
}

// conversionValue reads metadata.value, defaulting to 1.
func conversionValue(ev Event) float64 {
	raw, ok := ev.Metadata["value"]
	if !ok {
		return 1
	}
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 1
	}
}

// CleanupExpiredEvents removes events older than the retention window.
func (e *Engine) CleanupExpiredEvents(ctx context.Context, retention time.Duration) (int64, error) {
	return e.store.CleanupExpiredEvents(ctx, e.now().Add(-retention))
}
