// Package main is the entrypoint for the Pictoria API server.
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

	"github.com/pictoria/pictoria/internal/analytics"
	"github.com/pictoria/pictoria/internal/cache"
	"github.com/pictoria/pictoria/internal/config"
	"github.com/pictoria/pictoria/internal/events"
	"github.com/pictoria/pictoria/internal/generation"
	"github.com/pictoria/pictoria/internal/handler"
	"github.com/pictoria/pictoria/internal/metrics"
	"github.com/pictoria/pictoria/internal/middleware"
	"github.com/pictoria/pictoria/internal/payment"
	"github.com/pictoria/pictoria/internal/repository"
	"github.com/pictoria/pictoria/internal/server"
)

func main() {
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

	// Metrics and domain services
	recorder := metrics.NewInMemory()
	engine := analytics.NewEngine()
	publisher := events.NewPublisher(cacheClient.Client(), logger, recorder)
	generationClient := generation.NewClient(cfg.GenerationAPIURL, cfg.GenerationAPIToken, cfg.GenerationTimeout)
	gateway := payment.NewClient(cfg.RazorpayAPIURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	// Handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	galleryHandler := handler.NewGalleryHandler(logger, repo, cacheClient, publisher, recorder)
	analyticsHandler := handler.NewAnalyticsHandler(logger, repo, cacheClient, engine, recorder)
	generationHandler := handler.NewGenerationHandler(logger, generationClient, recorder)
	paymentHandler := handler.NewPaymentHandler(logger, repo, gateway, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret)
	apiTokenHandler := handler.NewAPITokenHandler(logger, repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(recorder)

	// Router
	r := setupRouter(routerDeps{
		hello:      h,
		health:     healthHandler,
		gallery:    galleryHandler,
		analytics:  analyticsHandler,
		generation: generationHandler,
		payment:    paymentHandler,
		apiTokens:  apiTokenHandler,
		metrics:    metricsHandler,
		repo:       repo,
		cache:      cacheClient,
		cfg:        cfg,
		logger:     logger,
	})

	// Create server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Event worker keeps the tag vocabulary cache warm and invalidates
	// cached analytics summaries after mutations.
	worker := events.NewWorker(cacheClient.Client(), repo, cacheClient, logger, events.NewConsumerID(), recorder)
	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()
	go func() {
		if err := worker.Run(workerCtx); err != nil && err != context.Canceled {
			logger.Error("event worker stopped", "error", err)
		}
	}()
	srv.OnShutdown("event-worker", worker.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
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

// routerDeps bundles everything setupRouter needs.
type routerDeps struct {
	hello      *handler.Handler
	health     *handler.HealthHandler
	gallery    *handler.GalleryHandler
	analytics  *handler.AnalyticsHandler
	generation *handler.GenerationHandler
	payment    *handler.PaymentHandler
	apiTokens  *handler.APITokenHandler
	metrics    *handler.MetricsHandler
	repo       *repository.Repository
	cache      *cache.Cache
	cfg        *config.Config
	logger     *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      deps.cfg.IsDevelopment(),
		MaxRequestBodySize: deps.cfg.MaxRequestBodySize,
	}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = deps.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.hello.Hello)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:     deps.logger,
		Repository: deps.repo,
		Cache:      deps.cache,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:         deps.logger,
		Cache:          deps.cache,
		APIEnabled:     deps.cfg.RateLimitAPIEnabled,
		WebhookEnabled: deps.cfg.RateLimitWebhookEnabled,
		WebhookRPS:     deps.cfg.RateLimitWebhookRPS,
		WebhookBurst:   deps.cfg.RateLimitWebhookBurst,
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Gateway webhook: authenticated by signature, not API token, so
		// it sits outside the auth chain behind IP rate limiting.
		r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/billing/webhook", deps.payment.HandleWebhook)

		// Everything else requires an API token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RateLimitAPI(rateLimitCfg))

			// Gallery
			r.Route("/images", func(r chi.Router) {
				r.With(middleware.RequireRead()).Get("/", deps.gallery.ListImages)
				r.With(middleware.RequireRead()).Get("/{id}", deps.gallery.GetImage)
				r.With(middleware.RequireWrite()).Post("/", deps.gallery.SaveImage)
				r.With(middleware.RequireWrite()).Post("/batch", deps.gallery.SaveImageBatch)
				r.With(middleware.RequireWrite()).Patch("/{id}", deps.gallery.UpdateImage)
				r.With(middleware.RequireWrite()).Delete("/{id}", deps.gallery.DeleteImage)
			})
			r.With(middleware.RequireRead()).Get("/tags", deps.gallery.ListTags)

			// Analytics
			r.With(middleware.RequireRead()).Get("/analytics", deps.analytics.GetSummary)

			// Generation
			r.With(middleware.RequireWrite()).Post("/generations", deps.generation.Generate)

			// Billing
			r.With(middleware.RequireRead()).Get("/billing/plans", deps.payment.ListPlans)
			r.With(middleware.RequireWrite()).Post("/billing/orders", deps.payment.CreateOrder)
			r.With(middleware.RequireWrite()).Post("/billing/verify", deps.payment.VerifyCheckout)
			r.With(middleware.RequireRead()).Get("/billing/invoices", deps.payment.ListInvoices)

			// API token management (requires admin scope for mutations)
			r.Route("/api-tokens", func(r chi.Router) {
				r.With(middleware.RequireRead()).Get("/", deps.apiTokens.ListAPITokens)
				r.With(middleware.RequireAdmin()).Post("/", deps.apiTokens.CreateAPIToken)
				r.With(middleware.RequireAdmin()).Delete("/{token_id}", deps.apiTokens.RevokeAPIToken)
			})

			// Metrics snapshot
			r.With(middleware.RequireAdmin()).Get("/metrics", deps.metrics.Metrics)
		})
	})

	// 404 and 405 handlers
	r.NotFound(deps.hello.NotFound)
	r.MethodNotAllowed(deps.hello.MethodNotAllowed)

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
