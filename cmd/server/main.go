package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/mycampus/assistant/internal/adapter/ai"
	"github.com/mycampus/assistant/internal/adapter/auth"
	"github.com/mycampus/assistant/internal/adapter/calendar"
	"github.com/mycampus/assistant/internal/adapter/store"
	"github.com/mycampus/assistant/internal/handler"
	"github.com/mycampus/assistant/internal/middleware"
	"github.com/mycampus/assistant/internal/service"
	"github.com/mycampus/assistant/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting Campus Assistant",
		"port", cfg.Port,
		"embedding_dimension", cfg.EmbeddingDimension,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	if err := pgStore.InitSchema(context.Background(), cfg.EmbeddingDimension); err != nil {
		slog.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	vectorStore := store.NewVectorStore(pgStore, cfg.EmbeddingDimension)

	// ── Adapters ─────────────────────────────────────────────────────────
	googleAuth := auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	googleCalendar := calendar.NewGoogleProvider()

	gemini := ai.NewGeminiProvider(ai.DefaultConfig(cfg.GeminiAPIKey, cfg.GeminiEmbedURL, cfg.GeminiGenURL))

	// ── Services ─────────────────────────────────────────────────────────
	syncService := service.NewSyncService(gemini, vectorStore)
	calendarService := service.NewCalendarService(googleCalendar, pgStore)
	authService := service.NewAuthService(googleAuth, pgStore, syncService, cfg)
	ragService := service.NewRAGService(gemini, gemini, vectorStore, pgStore, cfg.AnswerLanguage)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	// ── Public Routes ────────────────────────────────────────────────────
	authHandler := handler.NewAuthHandler(authService, cfg.FrontendURL)
	authHandler.Register(app)

	ragHandler := handler.NewRAGHandler(ragService, pgStore)
	ragHandler.RegisterPublic(app)

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	// ── Protected Routes ─────────────────────────────────────────────────
	jwtMiddleware := middleware.JWTMiddleware(middleware.JWTConfig{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		ExpiresIn: time.Duration(cfg.JWTExpiration) * time.Hour,
	})

	api := app.Group("/api/v1", jwtMiddleware)

	userHandler := handler.NewUserHandler(pgStore, syncService, calendarService)
	userHandler.Register(api)

	todoHandler := handler.NewTodoHandler(pgStore, syncService, calendarService)
	todoHandler.Register(api)

	scheduleHandler := handler.NewScheduleHandler(pgStore, syncService, calendarService)
	scheduleHandler.Register(api)

	activityHandler := handler.NewActivityHandler(pgStore, syncService)
	activityHandler.Register(api)

	ragHandler.Register(api)

	auditHandler := handler.NewAuditHandler(pgStore)
	auditHandler.Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
