package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appledger "github.com/erp/stocksync/internal/application/ledger"
	"github.com/erp/stocksync/internal/bootstrap"
	"github.com/erp/stocksync/internal/infrastructure/auth"
	"github.com/erp/stocksync/internal/infrastructure/config"
	"github.com/erp/stocksync/internal/infrastructure/logger"
	"github.com/erp/stocksync/internal/infrastructure/scheduler"
	"github.com/erp/stocksync/internal/infrastructure/telemetry"
	"github.com/erp/stocksync/internal/interfaces/http/handler"
	"github.com/erp/stocksync/internal/interfaces/http/middleware"
	"github.com/erp/stocksync/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/erp/stocksync/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Stocksync API
//	@version		1.0
//	@description	Order and stock reconciliation between the ledger and the WooCommerce storefront

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting stocksync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry: traces, metrics and, optionally, logs over OTLP
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	if cfg.Telemetry.LogsEnabled {
		otelCore := providers.LogCore(logger.ParseLevel(cfg.Log.Level))
		log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, otelCore)
		}))
	}

	profiler, err := telemetry.StartProfiler(cfg.Telemetry.ProfilingServer, cfg.App.Name, cfg.Telemetry.ProfilingEnabled, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if providers.IsEnabled() {
		profiler.EnableSpanProfiles()
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	// Database, storefront, locks, archive and the services over them
	services, err := bootstrap.Build(ctx, cfg, providers.Meter("stocksync"), log)
	if err != nil {
		log.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer func() {
		if err := services.Close(); err != nil {
			log.Error("Error closing connections", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Post-commit stock pushes run on their own worker pool
	dispatcher, err := scheduler.NewDispatcher[appledger.PushTask]("stock_push", scheduler.DispatcherConfig{
		Workers:     cfg.Push.Workers,
		QueueSize:   cfg.Push.QueueSize,
		TaskTimeout: cfg.Push.TaskTimeout,
	}, services.Push.HandlePushTask, log)
	if err != nil {
		log.Fatal("Failed to create push dispatcher", zap.Error(err))
	}
	if err := dispatcher.Start(ctx); err != nil {
		log.Fatal("Failed to start push dispatcher", zap.Error(err))
	}
	defer func() {
		if err := dispatcher.Stop(context.Background()); err != nil {
			log.Error("Error stopping push dispatcher", zap.Error(err))
		}
	}()
	services.Ledger.SetPushDispatcher(dispatcher)
	log.Info("Push dispatcher started",
		zap.Int("workers", cfg.Push.Workers),
		zap.Int("queue_size", cfg.Push.QueueSize),
	)

	// Scheduled order pull (if enabled)
	if cfg.Sync.PullEnabled {
		trigger := scheduler.NewPullTrigger(cfg.Sync.PullInterval, 0, func(ctx context.Context) error {
			_, err := services.Pull.Pull(ctx)
			return err
		}, log)
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start pull trigger", zap.Error(err))
		}
		defer func() {
			if err := trigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping pull trigger", zap.Error(err))
			}
		}()
		log.Info("Scheduled order pull started", zap.Duration("interval", cfg.Sync.PullInterval))
	}

	// Initialize HTTP handlers
	systemHandler := handler.NewSystemHandler(version)
	systemHandler.AddCheck("database", services.Database.Ping)
	handlers := router.Handlers{
		Orders:    handler.NewOrderHandler(services.Ledger, services.Push, cfg.Push.UpdateRemoteDate),
		Inventory: handler.NewInventoryHandler(services.Ledger),
		Sync:      handler.NewSyncHandler(services.Pull, services.Push, services.Runs),
		System:    systemHandler,
	}

	engine, err := newEngine(cfg, providers, log)
	if err != nil {
		log.Fatal("Failed to set up HTTP engine", zap.Error(err))
	}

	// Liveness and readiness stay outside authentication
	router.RegisterHealth(engine, systemHandler)

	// Swagger documentation endpoint
	docsAccess := middleware.DocsAccess{Enabled: cfg.Swagger.Enabled}
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	var writeGuard gin.HandlerFunc
	if cfg.JWT.Enabled {
		jwtService, err := auth.NewJWTService(cfg.JWT)
		if err != nil {
			log.Fatal("Failed to initialize JWT validation", zap.Error(err))
		}
		jwtConfig := middleware.DefaultJWTConfig(jwtService)
		jwtConfig.Logger = log
		r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))
		writeGuard = middleware.RequireRole(auth.RoleOperator)
		docsAccess.Auth = middleware.JWTAuthMiddleware(jwtService)
	} else {
		log.Warn("JWT authentication disabled, the API is open")
	}
	router.RegisterSwagger(engine, docsAccess)

	for _, group := range handlers.DomainGroups(writeGuard) {
		r.Register(group)
	}
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newEngine builds the gin engine with the global middleware stack:
// request id, panic recovery, request logging, tracing, metrics, security
// headers, CORS and the body size limit.
func newEngine(cfg *config.Config, providers *telemetry.Providers, log *zap.Logger) (*gin.Engine, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(providers.Meter("stocksync.http"))
	if err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     providers.IsEnabled(),
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(httpMetrics)
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(cfg.HTTP))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	return engine, nil
}

// Interface checks for the wiring above
var (
	_ appledger.PushDispatcher = (*scheduler.Dispatcher[appledger.PushTask])(nil)
	_ handler.LedgerService    = (*appledger.Service)(nil)
	_ handler.InventoryService = (*appledger.Service)(nil)
)
