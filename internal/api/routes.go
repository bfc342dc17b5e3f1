package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/shift-rota/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET    /health
//	GET    /metrics
//	GET    /api/v1/roster
//	GET    /api/v1/assignments/{date}?workers=A,B
//	GET    /api/v1/workers/{worker}/assignments?start=&end=
//	GET    /api/v1/calendar/{month}?workers=A,B
//	GET    /api/v1/calendar/{month}/image?workers=A,B
//	POST   /api/v1/exports                    (API key)
//	GET    /api/v1/exports/{batchID}
//	GET    /api/v1/exports/{batchID}/{exportID}.png
//	DELETE /api/v1/exports/{batchID}          (API key)
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	baseMiddleware := ChainMiddleware(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		MetricsMiddleware(handlers.metrics),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)
	r.Use(baseMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	r.Get("/health", handlers.HealthCheck)
	r.Method(http.MethodGet, "/metrics", handlers.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/roster", handlers.GetRoster)
		r.Get("/assignments/{date}", handlers.GetDayAssignments)
		r.Get("/workers/{worker}/assignments", handlers.GetWorkerAssignments)

		r.Get("/calendar/{month}", handlers.GetCalendar)
		r.Get("/calendar/{month}/image", handlers.GetCalendarImage)

		r.Route("/exports", func(r chi.Router) {
			r.Get("/{batchID}", handlers.GetExportBatch)
			r.Get("/{batchID}/{exportID}.png", handlers.DownloadExport)

			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(cfg, logger))
				r.Post("/", handlers.CreateExports)
				r.Delete("/{batchID}", handlers.DeleteExportBatch)
			})
		})
	})

	return r
}
