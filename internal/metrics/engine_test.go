package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

var engineBase = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

// setupEngine returns an engine over an in-memory store with zero noise
// (uniform source pinned to the distribution midpoint).
func setupEngine(t *testing.T, params Params) *Engine {
	t.Helper()
	store := setupStore(t)
	return NewEngine(store, params, fixedSource(0.5))
}

// seedCohort records counts of each event type for a cohort, spaced one
// second apart starting at engineBase.
func seedCohort(t *testing.T, e *Engine, cohortID string, impressions, clicks, conversions int) {
	t.Helper()
	ctx := context.Background()
	i := 0
	record := func(kind EventType, n int) {
		for j := 0; j < n; j++ {
			_, err := e.RecordEvent(ctx, Event{
				EventID:   fmt.Sprintf("%s-%s-%d", cohortID, kind, j),
				EventType: kind,
				CohortID:  cohortID,
				Domain:    "ads.example",
				Timestamp: engineBase.Add(time.Duration(i) * time.Second),
			})
			if err != nil {
				t.Fatalf("RecordEvent: %v", err)
			}
			i++
		}
	}
	record(EventImpression, impressions)
	record(EventClick, clicks)
	record(EventConversion, conversions)
}

func TestRecordEventValidation(t *testing.T) {
	e := setupEngine(t, DefaultParams())
	ctx := context.Background()

	valid := Event{EventID: "e1", EventType: EventImpression, CohortID: "c1", Domain: "d.example"}

	cases := []struct {
		name   string
		mutate func(*Event)
	}{
		{"empty event id", func(ev *Event) { ev.EventID = "" }},
		{"empty cohort id", func(ev *Event) { ev.CohortID = "" }},
		{"empty domain", func(ev *Event) { ev.Domain = "" }},
		{"unknown event type", func(ev *Event) { ev.EventType = "view" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := valid
			tc.mutate(&ev)
			_, err := e.RecordEvent(ctx, ev)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	if _, err := e.RecordEvent(ctx, valid); err != nil {
		t.Errorf("valid event rejected: %v", err)
	}
}

func TestRecordEventStampsTimestamp(t *testing.T) {
	e := setupEngine(t, DefaultParams())
	e.now = func() time.Time { return engineBase }

	stored, err := e.RecordEvent(context.Background(), Event{
		EventID: "e1", EventType: EventClick, CohortID: "c1", Domain: "d.example",
	})
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if !stored.Timestamp.Equal(engineBase) {
		t.Errorf("Timestamp = %v, want %v", stored.Timestamp, engineBase)
	}
}

func TestRecordEventNotifiesObserver(t *testing.T) {
	e := setupEngine(t, DefaultParams())

	var seen []string
	e.OnRecord = func(ev Event) { seen = append(seen, ev.EventID) }

	_, err := e.RecordEvent(context.Background(), Event{
		EventID: "e1", EventType: EventClick, CohortID: "c1", Domain: "d.example", Timestamp: engineBase,
	})
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if len(seen) != 1 || seen[0] != "e1" {
		t.Errorf("observer saw %v, want [e1]", seen)
	}

	// Invalid events never reach the observer.
	e.RecordEvent(context.Background(), Event{EventType: EventClick})
	if len(seen) != 1 {
		t.Errorf("observer saw %d events, want 1", len(seen))
	}
}

func TestGetAggregatedMetricsComputesRates(t *testing.T) {
	e := setupEngine(t, DefaultParams())
	// 100 impressions, 20 clicks, 5 conversions: 125 data points, over
	// every threshold, zero noise.
	seedCohort(t, e, "big", 100, 20, 5)

	out, err := e.GetAggregatedMetrics(context.Background(), []string{"big"}, TimeRange{})
	if err != nil {
		t.Fatalf("GetAggregatedMetrics: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d aggregates, want 1", len(out))
	}
	m := out[0]
	if m.Impressions != 100 || m.Clicks != 20 || m.Conversions != 5 {
		t.Errorf("counts = %d/%d/%d, want 100/20/5", m.Impressions, m.Clicks, m.Conversions)
	}
	if m.ClickThroughRate != 20 {
		t.Errorf("ClickThroughRate = %v, want 20", m.ClickThroughRate)
	}
	if m.ConversionRate != 25 {
		t.Errorf("ConversionRate = %v, want 25", m.ConversionRate)
	}
	if m.DataPoints != 125 {
		t.Errorf("DataPoints = %d, want 125", m.DataPoints)
	}
	if !m.PrivacyThresholdMet {
		t.Error("PrivacyThresholdMet = false, want true")
	}
}

func TestGetAggregatedMetricsSuppressesSmallCohorts(t *testing.T) {
	e := setupEngine(t, DefaultParams())
	seedCohort(t, e, "small", 5, 2, 1)

	out, err := e.GetAggregatedMetrics(context.Background(), []string{"small"}, TimeRange{})
	if err != nil {
		t.Fatalf("GetAggregatedMetrics: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d aggregates, want 1", len(out))
	}
	m := out[0]
	if m.Impressions != 0 || m.Clicks != 0 || m.Conversions != 0 ||
		m.ClickThroughRate != 0 || m.ConversionRate != 0 {
		t.Errorf("suppressed cohort has non-zero outputs: %+v", m)
	}
	if m.PrivacyThresholdMet {
		t.Error("PrivacyThresholdMet = true for suppressed cohort")
	}
}

func TestSuppressionOverridesNoise(t *testing.T) {
	store := setupStore(t)
	// u=0.99 pushes large positive noise into every statistic.
	e := NewEngine(store, DefaultParams(), fixedSource(0.99))
	seedCohort(t, e, "tiny", 3, 1, 0)

	out, err := e.GetAggregatedMetrics(context.Background(), nil, TimeRange{})
	if err != nil {
		t.Fatalf("GetAggregatedMetrics: %v", err)
	}
	m := out[0]
	if m.Impressions != 0 || m.Clicks != 0 || m.Conversions != 0 {
		t.Errorf("suppression did not override noise: %+v", m)
	}
}

func TestGetAggregatedMetricsBelowPrivacyThreshold(t *testing.T) {
	e := setupEngine(t, DefaultParams())
	// 30 impressions is over the suppression threshold but under the
	// minimum cohort size, so the privacy gate still zeroes everything.
	seedCohort(t, e, "mid", 30, 10, 2)

	out, err := e.GetAggregatedMetrics(context.Background(), nil, TimeRange{})
	if err != nil {
		t.Fatalf("GetAggregatedMetrics: %v", err)
	}
	m := out[0]
	if m.PrivacyThresholdMet || m.Impressions != 0 {
		t.Errorf("cohort under min size not suppressed: %+v", m)
	}
	// The raw data-point count survives for transparency.
	if m.DataPoints != 42 {
		t.Errorf("DataPoints = %d, want 42", m.DataPoints)
	}
}

func TestRateHelpers(t *testing.T) {
	e := setupEngine(t, DefaultParams())

	if got := e.CalculateClickThroughRate(1000, 50); got != 5.0 {
		t.Errorf("CalculateClickThroughRate(1000,50) = %v, want 5.0", got)
	}
	if got := e.CalculateClickThroughRate(0, 10); got != 0 {
		t.Errorf("CalculateClickThroughRate(0,10) = %v, want 0", got)
	}
	if got := e.CalculateClickThroughRate(99, 50); got != 0 {
		t.Errorf("CTR below the data-point floor = %v, want 0", got)
	}
	if got := e.CalculateConversionRate(100, 5); got != 5.0 {
		t.Errorf("CalculateConversionRate(100,5) = %v, want 5.0", got)
	}
	if got := e.CalculateConversionRate(9, 5); got != 0 {
		t.Errorf("conversion rate below the click floor = %v, want 0", got)
	}
}

func TestGenerateAttributionReportsLastTouch(t *testing.T) {
	e := setupEngine(t, DefaultParams())
	ctx := context.Background()

	events := []Event{
		{EventID: "imp-1", EventType: EventImpression, CohortID: "c", Domain: "x", Timestamp: engineBase},
		{EventID: "imp-2", EventType: EventImpression, CohortID: "c", Domain: "x", Timestamp: engineBase.Add(time.Hour)},
		{EventID: "click-1", EventType: EventClick, CohortID: "c", Domain: "x", Timestamp: engineBase.Add(90 * time.Minute)},
		{EventID: "conv-1", EventType: EventConversion, CohortID: "c", Domain: "x", Timestamp: engineBase.Add(2 * time.Hour),
			Metadata: map[string]any{"value": 49.99}},
		// Conversion in a cohort with no prior impression.
		{EventID: "conv-orphan", EventType: EventConversion, CohortID: "other", Domain: "x", Timestamp: engineBase.Add(time.Hour)},
	}
	for _, ev := range events {
		if _, err := e.RecordEvent(ctx, ev); err != nil {
			t.Fatalf("RecordEvent(%s): %v", ev.EventID, err)
		}
	}

	reports, err := e.GenerateAttributionReports(ctx, TimeRange{})
	if err != nil {
		t.Fatalf("GenerateAttributionReports: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	r := reports[0]
	if r.SourceEventID != "imp-2" {
		t.Errorf("SourceEventID = %s, want nearest impression imp-2", r.SourceEventID)
	}
	if r.TriggerEventID != "conv-1" {
		t.Errorf("TriggerEventID = %s, want conv-1", r.TriggerEventID)
	}
	if r.AttributionDelay != time.Hour {
		t.Errorf("AttributionDelay = %v, want 1h", r.AttributionDelay)
	}
	if r.AttributionDelay <= 0 {
		t.Error("AttributionDelay must be positive")
	}
	if r.ConversionValue != 49.99 {
		t.Errorf("ConversionValue = %v, want 49.99 under zero noise", r.ConversionValue)
	}
	if r.PrivacyBudget != 0.1 {
		t.Errorf("PrivacyBudget = %v, want 0.1", r.PrivacyBudget)
	}
	if r.ReportID == "" {
		t.Error("ReportID should be set")
	}
}

func TestGenerateAttributionReportsBudgetCap(t *testing.T) {
	e := setupEngine(t, DefaultParams())
	ctx := context.Background()

	if _, err := e.RecordEvent(ctx, Event{
		EventID: "imp", EventType: EventImpression, CohortID: "c", Domain: "x", Timestamp: engineBase,
	}); err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	for i := 0; i < 14; i++ {
		_, err := e.RecordEvent(ctx, Event{
			EventID:   fmt.Sprintf("conv-%02d", i),
			EventType: EventConversion,
			CohortID:  "c",
			Domain:    "x",
			Timestamp: engineBase.Add(time.Duration(i+1) * time.Minute),
		})
		if err != nil {
			t.Fatalf("RecordEvent: %v", err)
		}
	}

	reports, err := e.GenerateAttributionReports(ctx, TimeRange{})
	if err != nil {
		t.Fatalf("GenerateAttributionReports: %v", err)
	}
	// epsilon=1.0 caps reports at floor(1.0*10) = 10 per cohort.
	if len(reports) != 10 {
		t.Fatalf("got %d reports, want 10", len(reports))
	}
	// Truncation keeps the earliest conversions.
	for i, r := range reports {
		want := fmt.Sprintf("conv-%02d", i)
		if r.TriggerEventID != want {
			t.Errorf("reports[%d].TriggerEventID = %s, want %s", i, r.TriggerEventID, want)
		}
	}
}

func TestGenerateAttributionReportsDefaultValue(t *testing.T) {
	e := setupEngine(t, DefaultParams())
	ctx := context.Background()

	for _, ev := range []Event{
		{EventID: "imp", EventType: EventImpression, CohortID: "c", Domain: "x", Timestamp: engineBase},
		{EventID: "conv", EventType: EventConversion, CohortID: "c", Domain: "x", Timestamp: engineBase.Add(time.Minute)},
	} {
		if _, err := e.RecordEvent(ctx, ev); err != nil {
			t.Fatalf("RecordEvent: %v", err)
		}
	}

	reports, err := e.GenerateAttributionReports(ctx, TimeRange{})
	if err != nil {
		t.Fatalf("GenerateAttributionReports: %v", err)
	}
	if len(reports) != 1 || reports[0].ConversionValue != 1 {
		t.Errorf("reports = %+v, want one report with default value 1", reports)
	}
}

func TestCleanupExpiredEvents(t *testing.T) {
	e := setupEngine(t, DefaultParams())
	e.now = func() time.Time { return engineBase.Add(40 * 24 * time.Hour) }
	ctx := context.Background()

	for _, ev := range []Event{
		{EventID: "old", EventType: EventImpression, CohortID: "c", Domain: "x", Timestamp: engineBase},
		{EventID: "new", EventType: EventImpression, CohortID: "c", Domain: "x", Timestamp: engineBase.Add(35 * 24 * time.Hour)},
	} {
		if _, err := e.RecordEvent(ctx, ev); err != nil {
			t.Fatalf("RecordEvent: %v", err)
		}
	}

	n, err := e.CleanupExpiredEvents(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupExpiredEvents: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d events, want 1", n)
	}
}
