package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/brewline/queue-api/internal/config"
	"github.com/brewline/queue-api/internal/handler"
	"github.com/brewline/queue-api/internal/service"
	"github.com/brewline/queue-api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, svc *service.QueueService, hub *ws.Hub, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// WebSocket route: the shared queue_updated topic
	r.Get("/ws/queue", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, logger, w, r)
	})

	// REST boundary
	r.Route("/api", func(r chi.Router) {
		orderHandler := handler.NewOrderHandler(svc, logger)
		orderHandler.RegisterRoutes(r)

		queueHandler := handler.NewQueueHandler(svc)
		queueHandler.RegisterRoutes(r)
	})

	return r
}
