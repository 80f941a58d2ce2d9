package main

import (
	"github.com/devfolio/backend/internal/config"
	"github.com/devfolio/backend/internal/middleware"
	"github.com/devfolio/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	r.Use(middleware.RequestID())
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Credential endpoints get a tight per-IP budget; token refresh a
	// looser one since clients refresh on a timer.
	credentialLimiter := middleware.NewRateLimiter(1, 5)
	refreshLimiter := middleware.NewRateLimiter(5, 20)

	r.GET("/health", svc.healthHandler.Check)

	api := r.Group("/api")
	{
		api.GET("/health", svc.healthHandler.Check)

		auth := api.Group("/auth")
		{
			auth.POST("/register", credentialLimiter.Middleware(), svc.authHandler.Register)
			auth.POST("/login", credentialLimiter.Middleware(), svc.authHandler.Login)
			auth.POST("/refresh", refreshLimiter.Middleware(), svc.authHandler.Refresh)
		}

		// Public reads. The optional guard fills in per-user fields
		// (likedByMe) when a valid token is presented.
		public := api.Group("")
		public.Use(middleware.OptionalAuth(svc.db, svc.codec))
		{
			public.GET("/posts", svc.postHandler.List)
			public.GET("/posts/:id", svc.postHandler.Get)
			public.GET("/posts/:id/comments", svc.commentHandler.List)
			public.GET("/comments/:id/replies", svc.commentHandler.ListReplies)
			public.GET("/tags", svc.tagHandler.List)
			public.GET("/projects", svc.projectHandler.List)
			public.GET("/projects/:slug", svc.projectHandler.Get)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthRequired(svc.db, svc.codec))
		{
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/logout-all", svc.authHandler.LogoutAll)
			protected.GET("/auth/me", svc.authHandler.Me)

			protected.POST("/posts", svc.postHandler.Create)
			protected.PUT("/posts/:id", svc.postHandler.Update)
			protected.DELETE("/posts/:id", svc.postHandler.Delete)
			protected.POST("/posts/:id/like", svc.postHandler.Like)
			protected.DELETE("/posts/:id/like", svc.postHandler.Unlike)

			protected.POST("/posts/:id/comments", svc.commentHandler.Create)
			protected.DELETE("/comments/:id", svc.commentHandler.Delete)
		}

		admin := api.Group("")
		admin.Use(middleware.AuthRequired(svc.db, svc.codec), middleware.AdminRequired())
		{
			admin.POST("/projects", svc.projectHandler.Create)
			admin.PUT("/projects/:slug", svc.projectHandler.Update)
			admin.DELETE("/projects/:slug", svc.projectHandler.Delete)

			admin.GET("/users", svc.userHandler.List)
			admin.GET("/users/:id", svc.userHandler.Get)
			admin.PUT("/users/:id", svc.userHandler.Update)
			admin.DELETE("/users/:id", svc.userHandler.Delete)

			admin.POST("/image-ai/generate-prompt", svc.imageAIHandler.GeneratePrompt)
			admin.POST("/image-ai/generate-image", svc.imageAIHandler.GenerateImage)
		}
	}
}
