package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/medware/hospital-overbook/internal/overbook"
	"github.com/medware/hospital-overbook/internal/realtime"
	"github.com/medware/hospital-overbook/internal/schedule"
	"github.com/medware/hospital-overbook/pkg/logging"
)

type RouterConfig struct {
	Overbook  *overbook.Service
	Schedules *schedule.Service
	Hub       *realtime.Hub
	PgPool    *pgxpool.Pool
	Redis     *redis.Client
	Logger    *logging.Logger
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(UserIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health and observability endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Realtime UI hint stream
	if cfg.Hub != nil {
		r.Get("/ws", cfg.Hub.ServeHTTP)
	}

	// Public confirmation endpoint (reachable from the emailed claim link)
	r.Get("/overbook/waitlist/confirm", confirmInviteHandler(cfg.Overbook))
	r.Post("/overbook/waitlist/confirm", confirmInviteHandler(cfg.Overbook))

	// Overbooking endpoints
	r.Get("/overbook/suggestions", listSuggestionsHandler(cfg.Overbook))
	r.Post("/overbook/suggestions/generate", generateSuggestionsHandler(cfg.Overbook))
	r.Post("/overbook/suggestions/{id}/accept", acceptSuggestionHandler(cfg.Overbook))
	r.Post("/overbook/suggestions/{id}/decline", declineSuggestionHandler(cfg.Overbook))
	r.Post("/overbook/waitlist", joinWaitlistHandler(cfg.Overbook))
	r.Post("/overbook/waitlist/invite", inviteTopCandidateHandler(cfg.Overbook))
	r.Get("/overbook/config", getConfigHandler(cfg.Overbook))
	r.Patch("/overbook/config", updateConfigHandler(cfg.Overbook))

	// Appointment endpoints (delete triggers auto-backfill)
	r.Get("/appointments", listAppointmentsHandler(cfg.Schedules))
	r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Schedules))

	return r
}
