package main

import (
	"context"

	"github.com/devfolio/backend/internal/config"
	"github.com/devfolio/backend/internal/handlers"
	"github.com/devfolio/backend/internal/models"
	"github.com/devfolio/backend/internal/services"
	"github.com/devfolio/backend/internal/utils"
	"github.com/devfolio/backend/pkg/logger"
	"gorm.io/gorm"
)

// appServices holds the wired dependency graph: database, token codec,
// services, handlers and background jobs.
type appServices struct {
	db           *gorm.DB
	codec        *utils.JWTCodec
	tokenCleanup *services.TokenCleanup

	authHandler    *handlers.AuthHandler
	postHandler    *handlers.PostHandler
	commentHandler *handlers.CommentHandler
	tagHandler     *handlers.TagHandler
	projectHandler *handlers.ProjectHandler
	userHandler    *handlers.UserHandler
	imageAIHandler *handlers.ImageAIHandler
	healthHandler  *handlers.HealthHandler
}

// bootstrap initializes all application dependencies.
func bootstrap(cfg *config.Config) *appServices {
	db, err := models.InitDB(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	codec := utils.NewJWTCodec(cfg.JWT.Secret, cfg.AccessTTL())

	authService := services.NewAuthService(db, codec, cfg)
	if err := authService.CreateAdminIfNotExists(&cfg.Admin); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed admin account")
	}

	imageAIService, err := services.NewImageAIService(context.Background(), &cfg.Gemini)
	if err != nil {
		logger.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	if !imageAIService.Enabled() {
		logger.Warn().Msg("GEMINI_API_KEY not set, image AI endpoints disabled")
	}

	tokenCleanup := services.NewTokenCleanup(authService)
	if err := tokenCleanup.Start(); err != nil {
		logger.Fatalf("Failed to start token cleanup scheduler: %v", err)
	}

	return &appServices{
		db:           db,
		codec:        codec,
		tokenCleanup: tokenCleanup,

		authHandler:    handlers.NewAuthHandler(authService),
		postHandler:    handlers.NewPostHandler(services.NewPostService(db)),
		commentHandler: handlers.NewCommentHandler(services.NewCommentService(db)),
		tagHandler:     handlers.NewTagHandler(services.NewTagService(db)),
		projectHandler: handlers.NewProjectHandler(services.NewProjectService(db)),
		userHandler:    handlers.NewUserHandler(services.NewUserService(db)),
		imageAIHandler: handlers.NewImageAIHandler(imageAIService),
		healthHandler:  handlers.NewHealthHandler(db),
	}
}
