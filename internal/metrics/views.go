package metrics

import (
	"sort"
	"time"
)

// AttributionSummary aggregates attribution reports for one cohort.
type AttributionSummary struct {
	CohortID             string        `json:"cohort_id"`
	ReportCount          int           `json:"report_count"`
	TotalConversionValue float64       `json:"total_conversion_value"`
	AvgAttributionDelay  time.Duration `json:"avg_attribution_delay"`
	PrivacyCompliant     bool          `json:"privacy_compliant"`
}

// FunnelReport is the impression -> click -> conversion funnel for one
// cohort.
type FunnelReport struct {
	CohortID         string  `json:"cohort_id"`
	Impressions      int     `json:"impressions"`
	Clicks           int     `json:"clicks"`
	Conversions      int     `json:"conversions"`
	ClickThroughRate float64 `json:"click_through_rate"`
	ConversionRate   float64 `json:"conversion_rate"`
	PrivacyCompliant bool    `json:"privacy_compliant"`
}

// PerformanceScore blends normalized CTR, conversion rate, and volume
// into a single per-cohort score in [0, 1].
type PerformanceScore struct {
	CohortID         string  `json:"cohort_id"`
	Score            float64 `json:"score"`
	PrivacyCompliant bool    `json:"privacy_compliant"`
}

// Performance blend weights.
const (
	performanceCTRWeight    = 0.4
	performanceConvWeight   = 0.3
	performanceVolumeWeight = 0.3
)

// compliantCohorts indexes the privacy-compliant cohorts in an aggregate
// slice.
func compliantCohorts(aggregates []AggregatedMetrics) map[string]AggregatedMetrics {
	out := make(map[string]AggregatedMetrics)
	for _, m := range aggregates {
		if m.PrivacyThresholdMet {
			out[m.CohortID] = m
		}
	}
	return out
}

// SummarizeAttribution rolls attribution reports up per cohort, keeping
// only cohorts that are privacy-compliant in the supplied aggregates.
func SummarizeAttribution(reports []AttributionReport, aggregates []AggregatedMetrics) []AttributionSummary {
	compliant := compliantCohorts(aggregates)

	byCohort := make(map[string]*AttributionSummary)
	totals := make(map[string]time.Duration)
	for _, r := range reports {
		if _, ok := compliant[r.CohortID]; !ok {
			continue
		}
		s := byCohort[r.CohortID]
		if s == nil {
			s = &AttributionSummary{CohortID: r.CohortID, PrivacyCompliant: true}
			byCohort[r.CohortID] = s
		}
		s.ReportCount++
		s.TotalConversionValue += r.ConversionValue
		totals[r.CohortID] += r.AttributionDelay
	}

	out := make([]AttributionSummary, 0, len(byCohort))
	for id, s := range byCohort {
		s.AvgAttributionDelay = totals[id] / time.Duration(s.ReportCount)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CohortID < out[j].CohortID })
	return out
}

// BuildFunnelReports derives funnel views from aggregated metrics,
// filtered to privacy-compliant cohorts.
func BuildFunnelReports(aggregates []AggregatedMetrics) []FunnelReport {
	var out []FunnelReport
	for _, m := range aggregates {
		if !m.PrivacyThresholdMet {
			continue
		}
		out = append(out, FunnelReport{
			CohortID:         m.CohortID,
			Impressions:      m.Impressions,
			Clicks:           m.Clicks,
			Conversions:      m.Conversions,
			ClickThroughRate: m.ClickThroughRate,
			ConversionRate:   m.ConversionRate,
			PrivacyCompliant: true,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CohortID < out[j].CohortID })
	return out
}

// ScoreCohortPerformance blends each compliant cohort's normalized CTR,
// conversion rate, and impression volume into one score.
func ScoreCohortPerformance(aggregates []AggregatedMetrics) []PerformanceScore {
	var compliant []AggregatedMetrics
	var maxCTR, maxConv float64
	var maxVolume int
	for _, m := range aggregates {
		if !m.PrivacyThresholdMet {
			continue
		}
		compliant = append(compliant, m)
		if m.ClickThroughRate > maxCTR {
			maxCTR = m.ClickThroughRate
		}
		if m.ConversionRate > maxConv {
			maxConv = m.ConversionRate
		}
		if m.Impressions > maxVolume {
			maxVolume = m.Impressions
		}
	}

	out := make([]PerformanceScore, 0, len(compliant))
	for _, m := range compliant {
		var score float64
		if maxCTR > 0 {
			score += performanceCTRWeight * (m.ClickThroughRate / maxCTR)
		}
		if maxConv > 0 {
			score += performanceConvWeight * (m.ConversionRate / maxConv)
		}
		if maxVolume > 0 {
			score += performanceVolumeWeight * (float64(m.Impressions) / float64(maxVolume))
		}
		out = append(out, PerformanceScore{
			CohortID:         m.CohortID,
			Score:            score,
			PrivacyCompliant: true,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CohortID < out[j].CohortID })
	return out
}
