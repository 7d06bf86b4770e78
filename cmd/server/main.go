package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatekeep-backend/config"
	"gatekeep-backend/internal/auth"
	"gatekeep-backend/internal/blacklist"
	"gatekeep-backend/internal/database"
	"gatekeep-backend/internal/handlers"
	"gatekeep-backend/internal/middleware"
	"gatekeep-backend/internal/password"
	"gatekeep-backend/internal/repository"
	"gatekeep-backend/internal/scheduler"
	"gatekeep-backend/internal/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var cfg *config.Config

func init() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Configure zerolog based on config
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logLevel, err := zerolog.ParseLevel(cfg.Logger.Level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	output := os.Stdout
	if cfg.Logger.OutputPath != "" {
		file, err := os.OpenFile(cfg.Logger.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			output = file
		}
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
	})
}

func main() {
	// Initialize database connection
	if err := database.Initialize(&cfg.Database); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer database.Close()

	// Run database migrations after database initialization
	if err := database.RunMigrations(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Select the revoked-token store backend
	var revoked auth.Blacklist
	switch cfg.Blacklist.Backend {
	case "redis":
		client, err := database.NewRedis(&cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer client.Close()
		revoked = blacklist.NewRedisStore(client)
	default:
		repo := repository.NewBlacklistRepository(database.GetDB())
		scheduler.Initialize(repo)
		defer scheduler.Stop()
		revoked = repo
	}
	log.Info().Str("backend", cfg.Blacklist.Backend).Msg("Blacklist store ready")

	codec := token.NewCodec(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTokenTTL)*time.Second,
		time.Duration(cfg.Auth.RefreshTokenTTL)*time.Second,
	)

	userRepo := repository.NewUserRepository(database.GetDB())
	authService := auth.NewAuthService(
		userRepo,
		revoked,
		codec,
		password.NewBcryptHasher(),
		password.NewZxcvbnChecker(),
	)
	authHandler := handlers.NewAuthHandler(authService)

	// Create new Fiber instance
	app := fiber.New(fiber.Config{
		AppName:      "Gatekeep API",
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Error().Err(err).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Error handling request")

			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			return c.Status(code).JSON(fiber.Map{
				"message": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
	}))

	// Health check routes
	app.Get("/health", healthCheck)
	app.Get("/ready", readinessCheck)

	// Auth routes
	v1 := app.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/verify", authHandler.Verify)
	authGroup.Post("/revoke", authHandler.Revoke)
	authGroup.Get("/me", middleware.Protected(codec), authHandler.GetMe)

	// Start server in a goroutine
	serverAddr := cfg.Server.Host + ":" + cfg.Server.Port
	go func() {
		if err := app.Listen(serverAddr); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
}

// Health check handler
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// Readiness check handler
func readinessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}
