// CLAUDE:SUMMARY HTTP surface of the service: clone, health, descriptor and run-history routes.
package maquette

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// Version of the HTTP API, reported by the descriptor endpoint.
const Version = "1.0.0"

// Handler returns the service's HTTP routes. Middleware (security headers,
// body caps, rate limits) is the caller's concern.
func (svc *Service) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]any{
			"message": "maquette website cloning service",
			"version": Version,
			"endpoints": map[string]string{
				"clone":  "POST /clone",
				"health": "GET /health",
				"runs":   "GET /api/runs",
			},
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Post("/clone", func(w http.ResponseWriter, r *http.Request) {
		var req CloneRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, 400, fmt.Errorf("invalid request body: %w", err))
			return
		}
		result, err := svc.Clone(r.Context(), &req)
		if err != nil {
			if errors.Is(err, ErrInvalidRequest) {
				writeError(w, 400, err)
				return
			}
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, result)
	})

	r.Get("/api/frameworks", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]any{"frameworks": svc.Frameworks()})
	})

	r.Get("/api/runs", func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 50)
		runs, err := svc.Runs(r.Context(), limit)
		if err != nil {
			writeError(w, 500, err)
			return
		}
		if runs == nil {
			writeJSON(w, 200, []any{})
			return
		}
		writeJSON(w, 200, runs)
	})

	r.Get("/api/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		run, err := svc.Run(r.Context(), id)
		if err != nil {
			writeError(w, 500, err)
			return
		}
		if run == nil {
			writeError(w, 404, fmt.Errorf("run not found: %s", id))
			return
		}
		writeJSON(w, 200, run)
	})

	r.Get("/api/runs/{id}/events", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		events, err := svc.RunEvents(r.Context(), id)
		if err != nil {
			writeError(w, 500, err)
			return
		}
		if events == nil {
			writeJSON(w, 200, []any{})
			return
		}
		writeJSON(w, 200, events)
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError emits the single failure shape of the API.
func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"detail": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
