package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sydo/sydo-reviews/internal/config"
	"github.com/sydo/sydo-reviews/internal/handlers"
	"github.com/sydo/sydo-reviews/internal/middleware"
	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/internal/services"
	"github.com/sydo/sydo-reviews/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	db := models.GetDB()

	// Rate limiter for public write routes: guests can create identities
	// and feedback without an account, so these are abuse-prone.
	publicLimiter := middleware.NewRateLimiter(10, 20)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	// Stored blobs: uploaded PDFs and feedback screenshots
	r.Static(services.FilesRoutePrefix, cfg.Storage.Dir)

	projectHandler := handlers.NewProjectHandler(db, svc.storage)
	grainHandler := handlers.NewGrainHandler(db, svc.storage)
	guestHandler := handlers.NewGuestHandler(db, cfg.JWT.GuestExpireHour)
	feedbackHandler := handlers.NewFeedbackHandler(db, svc.storage)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// The review surface is public: anyone holding the project link can
		// read it and, with a guest session, leave feedback.
		public := api.Group("")
		public.Use(middleware.OptionalAuth(), middleware.GuestSession())
		{
			public.GET("/projects/:id", projectHandler.Get)
			public.GET("/projects/:id/guests", guestHandler.ListByProject)
			public.GET("/projects/:id/feedbacks", feedbackHandler.ListByProject)
			public.GET("/projects/:id/feedback-authors", feedbackHandler.Authors)
			public.GET("/grains/:id", grainHandler.Get)
			public.GET("/grains/:id/feedbacks", feedbackHandler.ListByGrain)
			public.GET("/guests/session", guestHandler.Session)

			// Live updates for open review pages
			eventsHandler := handlers.NewEventsHandler(services.GetEventHub())
			public.GET("/events", eventsHandler.Stream)

			// Public writes, rate limited per IP
			limited := public.Group("", publicLimiter.Middleware())
			{
				limited.POST("/guests", guestHandler.Create)
				limited.POST("/guests/:id/select", guestHandler.Select)
				limited.POST("/feedbacks", feedbackHandler.Create)
				limited.PUT("/feedbacks/:id", feedbackHandler.Update)
				limited.DELETE("/feedbacks/:id", feedbackHandler.Delete)
			}
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Dashboard
			dashboardHandler := handlers.NewDashboardHandler(db)
			protected.GET("/dashboard/stats", dashboardHandler.Stats)

			// Projects
			protected.GET("/projects", projectHandler.List)
			protected.POST("/projects", projectHandler.Create)
			protected.PUT("/projects/:id", projectHandler.Update)
			protected.POST("/projects/:id/archive", projectHandler.Archive)
			protected.POST("/projects/:id/reactivate", projectHandler.Reactivate)
			protected.POST("/projects/:id/favorite", projectHandler.ToggleFavorite)
			protected.DELETE("/projects/:id", projectHandler.Delete)

			// Clients
			clientHandler := handlers.NewClientHandler(db)
			protected.GET("/clients", clientHandler.List)
			protected.POST("/clients", clientHandler.Create)
			protected.DELETE("/clients/:id", clientHandler.Delete)

			// Grains
			protected.POST("/grains", grainHandler.Create)
			protected.POST("/grains/pdf", grainHandler.UploadPDF)
			protected.PUT("/grains/:id", grainHandler.Update)
			protected.DELETE("/grains/:id", grainHandler.Delete)

			// Guests (owner-side management)
			protected.DELETE("/guests/:id", guestHandler.Delete)

			// Tasks
			taskHandler := handlers.NewTaskHandler(db)
			protected.GET("/tasks", taskHandler.List)
			protected.POST("/tasks", taskHandler.Create)
			protected.PUT("/tasks/:id", taskHandler.Update)
			protected.POST("/tasks/:id/reorder", taskHandler.Reorder)
			protected.POST("/tasks/:id/archive", taskHandler.Archive)
			protected.DELETE("/tasks/:id", taskHandler.Delete)

			// Resources
			resourceHandler := handlers.NewResourceHandler(db)
			protected.GET("/projects/:id/resources", resourceHandler.ListByProject)
			protected.POST("/resources", resourceHandler.Create)
			protected.PUT("/resources/:id", resourceHandler.Update)
			protected.DELETE("/resources/:id", resourceHandler.Delete)
		}

		// Admin only routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			userHandler := handlers.NewUserHandler(db)
			admin.GET("/users", userHandler.List)
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Delete)

			systemLogHandler := handlers.NewSystemLogHandler(db)
			admin.GET("/system-logs", systemLogHandler.List)
			admin.GET("/system-logs/modules", systemLogHandler.GetModules)
			admin.POST("/system-logs/cleanup", systemLogHandler.Cleanup)
		}
	}
}
