package cohort

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the cohort API routes.
func RegisterRoutes(r chi.Router, e *Engine) {
	r.Route("/api/cohorts", func(r chi.Router) {
		r.Post("/assign", handleAssign(e))
		r.Get("/", handleCurrent(e))
		r.Get("/sharing", handleSharing(e))
		r.Post("/weekly-update", handleWeeklyUpdate(e))
	})
}

func handleAssign(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Visits []DomainVisit `json:"visits"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, e.AssignCohorts(req.Visits))
	}
}

func handleCurrent(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, e.GetCurrentCohorts())
	}
}

func handleSharing(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, e.GetCohortsForSharing())
	}
}

func handleWeeklyUpdate(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, e.UpdateWeeklyCohorts())
	}
}

func writeJSON(w http.ResponseWriter, assignments []Assignment) {
	if assignments == nil {
		assignments = []Assignment{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assignments)
}
