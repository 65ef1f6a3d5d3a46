package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/nidrosoft/rizzer-sub001/internal/app"
	"github.com/nidrosoft/rizzer-sub001/internal/config"
	"github.com/nidrosoft/rizzer-sub001/internal/handlers"
	"github.com/nidrosoft/rizzer-sub001/internal/logger"
	"github.com/nidrosoft/rizzer-sub001/internal/metrics"
	"github.com/nidrosoft/rizzer-sub001/internal/middleware"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
	"github.com/nidrosoft/rizzer-sub001/internal/queue"
	"github.com/nidrosoft/rizzer-sub001/internal/services/authn"
	"github.com/nidrosoft/rizzer-sub001/internal/telemetry"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const serviceName = "gift-suggestions-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for prompt and response logging")
	openAPIFlag := flag.String("openapi", filepath.Join("api", "openapi.yaml"), "Path to the OpenAPI document")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger("server", debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("ai_model", cfg.AIModel),
		zap.Int("min_quality_score", cfg.MinQualityScore),
		zap.Bool("auth_enabled", cfg.SupabaseJWTSecret != ""),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracingOn := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else if tp, err := telemetry.InitTracer(ctx, serviceName, cfg.OTELEndpoint); err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			tracingOn = true
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	a, err := app.New(ctx, cfg, zapLogger, debugMode)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_app", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			zapLogger.Warn("failed_to_close_connections", zap.Error(err))
		}
	}()

	healthChecker := handlers.NewHealthChecker(a.DB)
	if a.Redis != nil {
		healthChecker.WithCheck("redis", func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		})
	}
	if cfg.RabbitMQURL != "" {
		jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Warn("rabbitmq_unavailable_health_check_degraded", zap.Error(err))
			healthChecker.WithCheck("rabbitmq", func(context.Context) error { return err })
		} else {
			defer func() { _ = jobQueue.Close() }()
			healthChecker.WithCheck("rabbitmq", jobQueue.HealthCheck)
		}
	}

	r := mux.NewRouter()

	// mux runs middleware in registration order, first registered outermost
	if tracingOn {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.Audit(zapLogger))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	handlers.NewOpenAPIHandler(*openAPIFlag).RegisterRoutes(r)

	giftRouter := r.PathPrefix("/").Subrouter()
	giftRouter.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	giftRouter.Use(middleware.ContentType)
	giftRouter.Use(middleware.Timeout(cfg.RequestTimeout))
	if cfg.SupabaseJWTSecret != "" {
		verifier, err := authn.NewVerifier(cfg.SupabaseJWTSecret)
		if err != nil {
			zapLogger.Fatal("failed_to_create_token_verifier", zap.Error(err))
		}
		giftRouter.Use(middleware.Auth(verifier, zapLogger))
	}

	var rateLimitReloader *middleware.RateLimitReloader
	if a.Redis != nil {
		store, err := redisstore.NewStore(a.Redis)
		if err != nil {
			zapLogger.Warn("failed_to_create_rate_limit_store", zap.Error(err))
		} else {
			rateLimitReloader = middleware.NewRateLimitReloader(store, a.Repos.Ratelimit, models.RatelimitScopeGenerate, cfg.RateLimit, zapLogger, time.Minute)
			giftRouter.Use(rateLimitReloader.Middleware())
		}
	}

	handlers.NewGiftHandler(a.Generator, a.Batch, a.Repos.Suggestions, zapLogger).RegisterRoutes(giftRouter)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           middleware.CORS()(r),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	if rateLimitReloader != nil {
		go rateLimitReloader.Start(ctx)
	}

	go func() {
		zapLogger.Info("server_listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("server_failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLogger.Info("server_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
		os.Exit(1)
	}

	zapLogger.Info("server_exited")
}
