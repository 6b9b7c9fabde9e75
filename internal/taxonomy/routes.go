package taxonomy

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the read-only taxonomy API routes.
func RegisterRoutes(r chi.Router, m *Manager) {
	r.Route("/api/taxonomy", func(r chi.Router) {
		r.Get("/roots", handleRoots(m))
		r.Get("/search", handleSearch(m))
		r.Get("/topics/{id}", handleGetTopic(m))
		r.Get("/topics/{id}/children", handleChildren(m))
		r.Get("/topics/{id}/ancestors", handleAncestors(m))
	})
}

func handleRoots(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tx, err := m.Get(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, tx.GetRoots())
	}
}

func handleSearch(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tx, err := m.Get(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		results := tx.Search(r.URL.Query().Get("q"))
		if results == nil {
			results = []Topic{}
		}
		writeJSON(w, results)
	}
}

func handleGetTopic(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tx, id, ok := taxonomyAndID(w, r, m)
		if !ok {
			return
		}
		t, found := tx.GetByID(id)
		if !found {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, t)
	}
}

func handleChildren(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tx, id, ok := taxonomyAndID(w, r, m)
		if !ok {
			return
		}
		children := tx.GetChildren(id)
		if children == nil {
			children = []Topic{}
		}
		writeJSON(w, children)
	}
}

func handleAncestors(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tx, id, ok := taxonomyAndID(w, r, m)
		if !ok {
			return
		}
		ancestors := tx.GetAncestors(id)
		if ancestors == nil {
			ancestors = []Topic{}
		}
		writeJSON(w, ancestors)
	}
}

func taxonomyAndID(w http.ResponseWriter, r *http.Request, m *Manager) (*Taxonomy, int, bool) {
	tx, err := m.Get(r.Context())
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return nil, 0, false
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid topic id"}`, http.StatusBadRequest)
		return nil, 0, false
	}
	return tx, id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
