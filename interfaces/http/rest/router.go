// Package rest wires the HTTP surface: router, middleware, handlers.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"taskflow-backend/infrastructure/di"
	"taskflow-backend/interfaces/http/rest/handlers"
	"taskflow-backend/interfaces/http/rest/middleware"
	"taskflow-backend/pkg/auth"
	"taskflow-backend/pkg/common"
	pkgerrors "taskflow-backend/pkg/errors"
)

// Requests per minute per client IP on authenticated routes
const ipRateLimit = 120

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		logger:    container.Logger,
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

	if rt.container.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.container.Config.IsDevelopment())

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		authHandler := handlers.NewAuthHandler(rt.container.AuthService, errorHandler, rt.logger)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			ipLimiter := auth.NewIPRateLimiter(ipRateLimit)
			r.Use(middleware.Authenticate(rt.container.JWTManager, ipLimiter))

			taskHandler := handlers.NewTaskHandler(rt.container.CommandBus, rt.container.QueryBus, errorHandler, rt.logger)
			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.CreateTask)
				r.Get("/", taskHandler.ListTasks)
				r.Get("/{taskID}", taskHandler.GetTask)
				r.Put("/{taskID}", taskHandler.UpdateTask)
				r.Patch("/{taskID}/toggle", taskHandler.ToggleTask)
				r.Delete("/{taskID}", taskHandler.DeleteTask)
			})

			chatHandler := handlers.NewChatHandler(rt.container.Orchestrator, errorHandler, rt.logger)
			r.Post("/chat", chatHandler.Chat)

			conversationHandler := handlers.NewConversationHandler(rt.container.QueryBus, errorHandler, rt.logger)
			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", conversationHandler.ListConversations)
				r.Get("/{conversationID}/messages", conversationHandler.GetMessages)
			})
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	if rt.container.DB != nil {
		if err := rt.container.DB.PingContext(r.Context()); err != nil {
			common.RespondError(w, http.StatusServiceUnavailable, common.StandardErrorCodes.InternalError, "database unavailable")
			return
		}
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
