package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yukeru/gelande/internal/recommend"
	"github.com/yukeru/gelande/internal/resort"
)

// maxIngestRecords caps one collector batch; the scrapers push a few dozen
// rows per cycle.
const maxIngestRecords = 500

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	svc Recommender
	log *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(svc Recommender, log *slog.Logger) *Handlers {
	return &Handlers{svc: svc, log: log}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GetRecommendations handles GET /api/v1/recommendations.
// Query params max_travel_minutes, min_score, limit and include_closed
// override the day-trip defaults; malformed values fall back to defaults.
func (h *Handlers) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	opts := recommend.DefaultOptions()
	q := r.URL.Query()

	if v, err := strconv.Atoi(q.Get("max_travel_minutes")); err == nil && v > 0 {
		opts.MaxTravelMinutes = v
	}
	if v, err := strconv.ParseFloat(q.Get("min_score"), 64); err == nil && v >= 0 {
		opts.MinScore = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		opts.Limit = v
	}
	opts.IncludeClosed = q.Get("include_closed") == "true"

	result, err := h.svc.Recommend(r.Context(), opts)
	if err != nil {
		h.log.Error("recommend failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetResort handles GET /api/v1/resorts/{id}.
func (h *Handlers) GetResort(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.svc.ResortDetails(r.Context(), id)
	if err != nil {
		h.log.Error("resort details failed", "resort", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown resort"})
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// GetClosedResorts handles GET /api/v1/resorts/closed.
func (h *Handlers) GetClosedResorts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"resorts": h.svc.ClosedResorts(r.Context()),
	})
}

// PostConditions handles POST /api/v1/conditions — the collector pushing a
// batch of scraped rows.
func (h *Handlers) PostConditions(w http.ResponseWriter, r *http.Request) {
	var records []resort.RawRecord
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(records) > maxIngestRecords {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "batch too large"})
		return
	}

	summary := h.svc.Ingest(r.Context(), records)
	h.log.Info("collector batch ingested",
		"received", summary.Received, "stored", summary.Stored,
		"synthesized", summary.Synthesized, "reopened", summary.Reopened)

	writeJSON(w, http.StatusOK, summary)
}

type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis connectivity.
func HealthHandlerFunc(db dbPinger, redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}

		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
