package metrics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RegisterRoutes mounts the metrics API routes.
func RegisterRoutes(r chi.Router, e *Engine) {
	r.Route("/api/events", func(r chi.Router) {
		r.Post("/", handleRecordEvent(e))
	})
	r.Route("/api/metrics", func(r chi.Router) {
		r.Get("/", handleAggregated(e))
		r.Get("/attribution", handleAttribution(e))
		r.Get("/attribution/summary", handleAttributionSummary(e))
		r.Get("/funnel", handleFunnel(e))
		r.Get("/performance", handlePerformance(e))
	})
}

func handleRecordEvent(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if ev.EventID == "" {
			ev.EventID = uuid.NewString()
		}
		stored, err := e.RecordEvent(r.Context(), ev)
		if err != nil {
			status := http.StatusInternalServerError
			var verr *ValidationError
			if errors.As(err, &verr) {
				status = http.StatusBadRequest
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(stored)
	}
}

func handleAggregated(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cohortIDs, tr := queryParams(r)
		out, err := e.GetAggregatedMetrics(r.Context(), cohortIDs, tr)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if out == nil {
			out = []AggregatedMetrics{}
		}
		writeJSON(w, out)
	}
}

func handleAttribution(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, tr := queryParams(r)
		out, err := e.GenerateAttributionReports(r.Context(), tr)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if out == nil {
			out = []AttributionReport{}
		}
		writeJSON(w, out)
	}
}

func handleAttributionSummary(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cohortIDs, tr := queryParams(r)
		aggregates, err := e.GetAggregatedMetrics(r.Context(), cohortIDs, tr)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		reports, err := e.GenerateAttributionReports(r.Context(), tr)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		out := SummarizeAttribution(reports, aggregates)
		if out == nil {
			out = []AttributionSummary{}
		}
		writeJSON(w, out)
	}
}

func handleFunnel(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cohortIDs, tr := queryParams(r)
		aggregates, err := e.GetAggregatedMetrics(r.Context(), cohortIDs, tr)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		out := BuildFunnelReports(aggregates)
		if out == nil {
			out = []FunnelReport{}
		}
		writeJSON(w, out)
	}
}

func handlePerformance(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cohortIDs, tr := queryParams(r)
		aggregates, err := e.GetAggregatedMetrics(r.Context(), cohortIDs, tr)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		out := ScoreCohortPerformance(aggregates)
		if out == nil {
			out = []PerformanceScore{}
		}
		writeJSON(w, out)
	}
}

// queryParams parses the cohorts, start, and end query parameters.
func queryParams(r *http.Request) ([]string, TimeRange) {
	var cohortIDs []string
	if v := r.URL.Query().Get("cohorts"); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cohortIDs = append(cohortIDs, id)
			}
		}
	}
	var tr TimeRange
	if v := r.URL.Query().Get("start"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			tr.Start = ts
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			tr.End = ts
		}
	}
	return cohortIDs, tr
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
