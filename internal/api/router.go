package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterConfig holds what the debug router serves.
type RouterConfig struct {
	Snapshots   *SnapshotStore
	Metrics     http.Handler // nil = no /metrics route
	CORSOrigins []string
	Log         *zap.Logger
}

// NewRouter builds the debug HTTP router. It starts nothing; the caller owns
// the listener.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	h := &handlers{snaps: cfg.Snapshots, log: cfg.Log}

	r.Get("/healthz", h.health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	r.Route("/islands", func(r chi.Router) {
		r.Get("/", h.islands)
		r.Get("/{id}", h.island)
	})
	return r
}

type handlers struct {
	snaps *SnapshotStore
	log   *zap.Logger
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"tick":   h.snaps.Load().Tick,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handlers) islands(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.snaps.Load())
}

func (h *handlers) island(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid island id"})
		return
	}
	for _, is := range h.snaps.Load().Islands {
		if is.ID == id {
			writeJSON(w, http.StatusOK, is)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "island not loaded"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
