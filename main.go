package main

import (
	"database/sql"
	"log"
	"time"

	"inventaris/internal/config"
	"inventaris/internal/database"
	"inventaris/internal/email"
	"inventaris/internal/gateway"
	"inventaris/internal/handlers"
	"inventaris/internal/logger"
	"inventaris/internal/middleware"

	"github.com/gin-gonic/gin"
)

const cleanupInterval = 30 * time.Minute

func main() {
	cfg := config.Load()
	logger.Initialize(logger.ParseLevel(cfg.LogLevel), cfg.IsDevelopment())

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	go cleanupLoop(db)

	emailService := email.NewService(cfg)
	if emailService.IsEnabled() {
		logger.Info("Email service enabled with Mailgun")
	} else {
		logger.Info("Email service disabled - Mailgun not configured")
	}

	api := gateway.New(cfg.APIBaseURL, cfg.RequestTimeout)
	logger.Info("Using backing API", "base_url", cfg.APIBaseURL)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.SetFuncMap(handlers.TemplateFuncs())
	r.LoadHTMLGlob("templates/*.html")

	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg))

	handlers.SetupRoutes(r, db, cfg, api, emailService)

	logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
	log.Fatal(r.Run(":" + cfg.Port))
}

func cleanupLoop(db *sql.DB) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		if err := database.CleanupExpiredSessions(db); err != nil {
			logger.Error("Failed to clean up sessions", "error", err)
		}
		if err := database.CleanupExpiredCSRFTokens(db); err != nil {
			logger.Error("Failed to clean up CSRF tokens", "error", err)
		}
	}
}
