package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mira/workspace-hub/internal/api/handlers"
	"github.com/mira/workspace-hub/internal/api/middleware"
	"github.com/mira/workspace-hub/internal/config"
	"github.com/mira/workspace-hub/internal/ratelimit"
	"github.com/mira/workspace-hub/internal/service"
	"github.com/mira/workspace-hub/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	adjustmentLimiter := ratelimit.New(cfg.AdjustmentRateLimit, cfg.AdjustmentRateWindow)

	authHandler := handlers.NewAuthHandler(services.Auth)
	workspaceHandler := handlers.NewWorkspaceHandler(services.Workspace)
	sessionHandler := handlers.NewSessionHandler(services.Schedule, services.Slot, services.Permission)
	activityHandler := handlers.NewActivityHandler(services.Activity, services.Permission)
	quotaHandler := handlers.NewQuotaHandler(services.Quota, services.Permission, adjustmentLimiter)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	// Activity feed websocket (token via query parameter)
	r.Get("/ws/activity", wsHandler.Feed)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Protected workspace routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Post("/workspaces", workspaceHandler.Create)

			r.Route("/workspaces/{workspaceID}", func(r chi.Router) {
				// Roles, members and quota definitions
				r.Get("/roles", workspaceHandler.ListRoles)
				r.Post("/roles", workspaceHandler.CreateRole)
				r.Put("/roles/{roleID}", workspaceHandler.UpdateRole)
				r.Get("/members", workspaceHandler.ListMembers)
				r.Post("/members", workspaceHandler.AddMember)
				r.Post("/quotas", workspaceHandler.CreateQuota)

				// Sessions
				r.Route("/sessions", func(r chi.Router) {
					r.Post("/", sessionHandler.CreateUnscheduled)
					r.Post("/{sessionID}/slots", sessionHandler.ClaimSlot)
					r.Delete("/{sessionID}/slots", sessionHandler.ReleaseSlot)
					r.Post("/{sessionID}/start", sessionHandler.Start)
					r.Post("/{sessionID}/end", sessionHandler.End)
				})
				// Session types and schedules
				r.Get("/session-types", sessionHandler.ListSessionTypes)
				r.Post("/session-types", sessionHandler.CreateSessionType)
				r.Post("/schedules/{scheduleID}/sessions", sessionHandler.Materialize)
				r.Put("/schedules/{scheduleID}", sessionHandler.UpdateSchedule)
				r.Delete("/schedules/{scheduleID}", sessionHandler.DeleteSchedule)

				// Live activity
				r.Route("/activity", func(r chi.Router) {
					r.Post("/", activityHandler.Open)
					r.Post("/{activityID}/close", activityHandler.Close)
					r.Post("/{activityID}/message", activityHandler.Message)
					r.Get("/{activityID}/overlaps", activityHandler.Overlaps)
				})

				// Quotas and history
				r.Post("/adjustments", quotaHandler.CreateAdjustment)
				r.Get("/effective-minutes", quotaHandler.EffectiveMinutes)
				r.Get("/quota-report", quotaHandler.Report)
				r.Post("/close-period", quotaHandler.ClosePeriod)
			})
		})
	})

	return r
}
