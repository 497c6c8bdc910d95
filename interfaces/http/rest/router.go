package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/services"
	"github.com/jeonghun43/Prism/infrastructure/realtime"
	"github.com/jeonghun43/Prism/interfaces/http/rest/handlers"
	"github.com/jeonghun43/Prism/interfaces/http/rest/middleware"
	"github.com/jeonghun43/Prism/pkg/ratelimit"
)

// Router creates and configures the HTTP router
type Router struct {
	targets       *services.TargetService
	votes         *services.VoteService
	reports       *services.ReportService
	notifications *services.NotificationService
	hub           *realtime.Hub
	limiter       *ratelimit.Limiter
	apiLimit      int
	cronSecret    string
	enableCORS    bool
	logger        *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	targets *services.TargetService,
	votes *services.VoteService,
	reports *services.ReportService,
	notifications *services.NotificationService,
	hub *realtime.Hub,
	limiter *ratelimit.Limiter,
	apiLimit int,
	cronSecret string,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		targets:       targets,
		votes:         votes,
		reports:       reports,
		notifications: notifications,
		hub:           hub,
		limiter:       limiter,
		apiLimit:      apiLimit,
		cronSecret:    cronSecret,
		enableCORS:    enableCORS,
		logger:        logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.CallerKey())

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.prism.app"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	targetHandler := handlers.NewTargetHandler(rt.targets, rt.logger)
	voteHandler := handlers.NewVoteHandler(rt.targets, rt.votes, rt.logger)
	reportHandler := handlers.NewReportHandler(rt.targets, rt.reports, rt.logger)
	notificationHandler := handlers.NewNotificationHandler(rt.targets, rt.notifications, rt.logger)
	streamHandler := handlers.NewStreamHandler(rt.targets, rt.hub, rt.logger)
	adminHandler := handlers.NewAdminHandler(rt.targets, rt.cronSecret, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(rt.limiter, rt.apiLimit))

		r.Route("/targets", func(r chi.Router) {
			r.Post("/", targetHandler.CreateTarget)

			r.Route("/{nickname}", func(r chi.Router) {
				r.Get("/", targetHandler.GetVotingPage)
				r.Post("/votes", voteHandler.SubmitVotes)
				r.Get("/report", reportHandler.GetReport)
				r.Get("/notifications", notificationHandler.ListNotifications)
				r.Post("/notifications/read", notificationHandler.MarkRead)
				r.Get("/stream", streamHandler.Stream)
			})
		})
	})

	// Maintenance endpoints are not rate limited; the scheduler calls them.
	router.Post("/internal/cleanup", adminHandler.Cleanup)

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
