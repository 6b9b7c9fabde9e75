package classifier

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the classification API routes.
func RegisterRoutes(r chi.Router, c *Classifier) {
	r.Route("/api/classify", func(r chi.Router) {
		r.Get("/{domain}", handleClassify(c))
		r.Post("/batch", handleClassifyBatch(c))
	})
	r.Route("/api/mappings", func(r chi.Router) {
		r.Get("/", handleListMappings(c))
		r.Post("/", handleAddMapping(c))
		r.Get("/{domain}", handleGetMapping(c))
		r.Delete("/{domain}", handleRemoveMapping(c))
	})
}

func handleClassify(c *Classifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := c.Classify(chi.URLParam(r, "domain"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleClassifyBatch(c *Classifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Domains []string `json:"domains"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, c.ClassifyBatch(req.Domains))
	}
}

func handleListMappings(c *Classifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.GetAllMappings())
	}
}

func handleAddMapping(c *Classifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Domain     string  `json:"domain"`
			TopicIDs   []int   `json:"topic_ids"`
			Confidence float64 `json:"confidence"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if err := c.AddMapping(r.Context(), req.Domain, req.TopicIDs, req.Confidence); err != nil {
			status := http.StatusInternalServerError
			var topicErr *InvalidTopicError
			if errors.As(err, &topicErr) || errors.Is(err, ErrEmptyDomain) {
				status = http.StatusBadRequest
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, status)
			return
		}
		m, _ := c.GetMapping(req.Domain)
		writeJSON(w, http.StatusCreated, m)
	}
}

func handleGetMapping(c *Classifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := c.GetMapping(chi.URLParam(r, "domain"))
		if !ok {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func handleRemoveMapping(c *Classifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.RemoveMapping(r.Context(), chi.URLParam(r, "domain")); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
