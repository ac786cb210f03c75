package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/enrichment"
	"github.com/sells-group/leads-cli/internal/leads"
	"github.com/sells-group/leads-cli/internal/monitoring"
	"github.com/sells-group/leads-cli/internal/store"
)

// maxEnrichBatch caps the people accepted by one synchronous POST /enrich.
const maxEnrichBatch = 500

const defaultLookbackHours = 24

// api holds the dependencies of the HTTP handlers.
type api struct {
	service  *leads.Service
	pipeline *enrichment.Pipeline
	store    store.Store
	log      *zap.Logger
}

type enrichRequest struct {
	People []enrichment.Person `json:"people"`
}

// buildRouter wires the HTTP routes. ctx bounds background discovery runs
// started by POST /leads.
func buildRouter(ctx context.Context, a *api) http.Handler {
	if a.log == nil {
		a.log = zap.L()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/stats", a.stats)
	r.Get("/queries", a.listQueries)
	r.Get("/queries/{id}", a.getQuery)
	r.Get("/leads/{id}", a.listLeads)
	r.Post("/leads", func(w http.ResponseWriter, r *http.Request) {
		a.submitLeads(ctx, w, r)
	})
	r.Post("/enrich", a.enrich)

	return r
}

func (a *api) stats(w http.ResponseWriter, r *http.Request) {
	lookback := defaultLookbackHours
	if v := r.URL.Query().Get("lookback_hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "lookback_hours must be an integer")
			return
		}
		lookback = n
	}

	snap, err := monitoring.NewCollector(a.store).Collect(r.Context(), lookback)
	if err != nil {
		a.serverError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *api) listQueries(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	queries, err := a.store.ListQueries(r.Context(), limit)
	if err != nil {
		a.serverError(w, "list queries", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"queries": queries})
}

func (a *api) getQuery(w http.ResponseWriter, r *http.Request) {
	q, err := a.store.GetQuery(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "query not found")
		return
	}
	if err != nil {
		a.serverError(w, "get query", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (a *api) listLeads(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q, err := a.store.GetQuery(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "query not found")
		return
	}
	if err != nil {
		a.serverError(w, "get query", err)
		return
	}

	found, err := a.store.ListLeads(r.Context(), q.ID)
	if err != nil {
		a.serverError(w, "list leads", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": q, "leads": found})
}

func (a *api) submitLeads(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req leads.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.SicCodes) == 0 && req.Query == "" {
		writeError(w, http.StatusBadRequest, "sic_codes or query is required")
		return
	}

	q, err := a.service.Submit(ctx, req)
	if err != nil {
		a.serverError(w, "submit leads", err)
		return
	}

	a.log.Info("leads query accepted",
		zap.String("query_id", q.ID),
		zap.Strings("sic_codes", q.SicCodes),
	)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":   "accepted",
		"query_id": q.ID,
		"query":    q,
	})
}

func (a *api) enrich(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.People) == 0 {
		writeError(w, http.StatusBadRequest, "people is required")
		return
	}
	if len(req.People) > maxEnrichBatch {
		writeError(w, http.StatusRequestEntityTooLarge, "too many people in one request")
		return
	}

	results, err := a.pipeline.EnrichBulk(r.Context(), req.People)
	if err != nil {
		a.serverError(w, "enrich", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (a *api) serverError(w http.ResponseWriter, action string, err error) {
	a.log.Error("api: "+action, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
