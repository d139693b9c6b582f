// Package main is the entrypoint for the CastPro API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/castpro/castpro/internal/auth"
	"github.com/castpro/castpro/internal/cache"
	"github.com/castpro/castpro/internal/config"
	"github.com/castpro/castpro/internal/handler"
	"github.com/castpro/castpro/internal/metrics"
	"github.com/castpro/castpro/internal/middleware"
	"github.com/castpro/castpro/internal/openai"
	"github.com/castpro/castpro/internal/repository"
	"github.com/castpro/castpro/internal/server"
	"github.com/castpro/castpro/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Apply schema
	if err := repo.Migrate(ctx); err != nil {
		logger.Error("failed to apply schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	tokenIssuer := auth.NewTokenIssuer(cfg.SecretKey)
	openaiClient := openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	if !openaiClient.Configured() {
		logger.Warn("OpenAI API key not configured; chat endpoint will reject requests")
	}

	userService := service.NewUserService(repo, tokenIssuer, cfg.AccessTokenTTL, metricsRecorder)
	itemService := service.NewItemService(repo, metricsRecorder)
	chatService := service.NewChatService(openaiClient, logger, metricsRecorder)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)
	authHandler := handler.NewAuthHandler(userService, logger)
	itemHandler := handler.NewItemHandler(itemService, logger)
	userHandler := handler.NewUserHandler()
	chatHandler := handler.NewChatHandler(chatService, logger)

	// Setup router
	r := setupRouter(routerDeps{
		handler: h,
		health:  healthHandler,
		metrics: metricsHandler,
		auth:    authHandler,
		items:   itemHandler,
		users:   userHandler,
		chat:    chatHandler,
		tokens:  tokenIssuer,
		repo:    repo,
		cache:   cacheClient,
		cfg:     cfg,
		logger:  logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"token_ttl", cfg.AccessTokenTTL.String(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routerDeps bundles everything the router needs.
type routerDeps struct {
	handler *handler.Handler
	health  *handler.HealthHandler
	metrics *handler.MetricsHandler
	auth    *handler.AuthHandler
	items   *handler.ItemHandler
	users   *handler.UserHandler
	chat    *handler.ChatHandler
	tokens  *auth.TokenIssuer
	repo    *repository.Repository
	cache   *cache.Cache
	cfg     *config.Config
	logger  *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = deps.cfg.IsDevelopment()
	r.Use(middleware.Security(securityCfg))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = deps.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	// Unauthenticated endpoints
	r.Get("/", deps.handler.Hello)
	r.Get("/health", deps.health.Health)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", deps.auth.Register)
		r.Post("/login", deps.auth.Login)
	})

	// Chat proxy requires no authentication
	r.Post("/chat/fishing-assistant", deps.chat.FishingAssistant)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger: deps.logger,
		Tokens: deps.tokens,
		Users:  deps.repo,
		Cache:  deps.cache,
	}

	// Authenticated endpoints
	r.Route("/items", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		r.Get("/", deps.items.List)
		r.Post("/", deps.items.Create)
		r.Get("/{id}", deps.items.Get)
		r.Put("/{id}", deps.items.Update)
		r.Delete("/{id}", deps.items.Delete)
	})

	r.With(middleware.Auth(authCfg)).Get("/users/me", deps.users.Me)

	// 404 and 405 handlers
	r.NotFound(deps.handler.NotFound)
	r.MethodNotAllowed(deps.handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
