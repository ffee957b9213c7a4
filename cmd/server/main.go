package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditapp "github.com/erp/realestate/internal/application/audit"
	equityapp "github.com/erp/realestate/internal/application/equity"
	inventoryapp "github.com/erp/realestate/internal/application/inventory"
	notificationapp "github.com/erp/realestate/internal/application/notification"
	partyapp "github.com/erp/realestate/internal/application/party"
	projectapp "github.com/erp/realestate/internal/application/project"
	realtyapp "github.com/erp/realestate/internal/application/realty"
	salesapp "github.com/erp/realestate/internal/application/sales"
	settlementapp "github.com/erp/realestate/internal/application/settlement"
	treasuryapp "github.com/erp/realestate/internal/application/treasury"
	"github.com/erp/realestate/internal/infrastructure/auth"
	"github.com/erp/realestate/internal/infrastructure/cache"
	"github.com/erp/realestate/internal/infrastructure/config"
	"github.com/erp/realestate/internal/infrastructure/event"
	"github.com/erp/realestate/internal/infrastructure/logger"
	"github.com/erp/realestate/internal/infrastructure/persistence"
	"github.com/erp/realestate/internal/infrastructure/scheduler"
	"github.com/erp/realestate/internal/infrastructure/telemetry"
	"github.com/erp/realestate/internal/interfaces/http/handler"
	"github.com/erp/realestate/internal/interfaces/http/middleware"
	"github.com/erp/realestate/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting real estate ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(rootCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	// Log export rides on the same collector as traces
	logsProvider, err := telemetry.NewLoggerProvider(rootCtx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = logsProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	unitRepo := persistence.NewGormUnitRepository(db.DB)
	contractRepo := persistence.NewGormContractRepository(db.DB)
	installmentPaymentRepo := persistence.NewGormInstallmentPaymentRepository(db.DB)
	safeRepo := persistence.NewGormSafeRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptVoucherRepository(db.DB)
	paymentVoucherRepo := persistence.NewGormPaymentVoucherRepository(db.DB)
	partnerRepo := persistence.NewGormPartnerRepository(db.DB)
	groupRepo := persistence.NewGormPartnersGroupRepository(db.DB)
	shareRepo := persistence.NewGormShareEntryRepository(db.DB)
	settlementRepo := persistence.NewGormSettlementRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	moveRepo := persistence.NewGormStockMoveRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	customerService := partyapp.NewCustomerService(customerRepo, contractRepo)
	supplierService := partyapp.NewSupplierService(supplierRepo, paymentVoucherRepo)
	unitService := realtyapp.NewUnitService(unitRepo, groupRepo, contractRepo)
	contractService := salesapp.NewContractService(txScope, contractRepo, installmentPaymentRepo, customerRepo, log)
	contractService.SetLateFeePercent(cfg.Treasury.LateFeePercent)
	paymentService := treasuryapp.NewPaymentService(txScope, contractRepo, log)
	safeService := treasuryapp.NewSafeService(safeRepo, partnerRepo, receiptRepo, paymentVoucherRepo)
	treasuryService := treasuryapp.NewTreasuryService(txScope, safeRepo, receiptRepo, paymentVoucherRepo, log)
	voucherService := treasuryapp.NewVoucherService(txScope, receiptRepo, paymentVoucherRepo, log)
	balanceService := equityapp.NewBalanceService(partnerRepo, safeRepo, shareRepo, settlementRepo, treasuryService)
	groupService := equityapp.NewGroupService(groupRepo, partnerRepo, contractRepo, settlementRepo, log)
	partnerService := equityapp.NewPartnerService(txScope, partnerRepo, groupRepo, safeRepo, receiptRepo, paymentVoucherRepo, log)
	settlementService := settlementapp.NewSettlementService(txScope, settlementRepo, groupRepo, paymentVoucherRepo, log)
	projectService := projectapp.NewProjectService(projectRepo, paymentVoucherRepo, moveRepo)
	itemService := inventoryapp.NewItemService(itemRepo, moveRepo, supplierRepo)
	stockService := inventoryapp.NewStockService(txScope, itemRepo, moveRepo, projectRepo, log)
	notificationService := notificationapp.NewNotificationService(
		notificationRepo, contractRepo, customerRepo, settlementRepo, stockService, projectService, log,
	)
	auditService := auditapp.NewAuditService(
		contractRepo, safeRepo, groupRepo, partnerRepo, treasuryService, stockService, balanceService, log,
	)

	// Balance cache: Redis when configured, in-memory otherwise
	balanceCache := cache.NewBalanceCache(cfg.Redis, cfg.Treasury.BalanceCacheTTL, log)
	defer func() {
		if err := balanceCache.Close(); err != nil {
			log.Error("Error closing balance cache", zap.Error(err))
		}
	}()
	treasuryService.SetBalanceCache(balanceCache)
	voucherService.SetBalanceCache(balanceCache)
	paymentService.SetBalanceCache(balanceCache)
	settlementService.SetBalanceCache(balanceCache)

	// Event bus with in-process handlers, forwarded to the broker when configured
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(notificationapp.NewContractCreatedHandler(notificationService, log))
	eventBus.Subscribe(notificationapp.NewReceiptPostedHandler(notificationService, receiptRepo, log))

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Registerer:    prometheus.DefaultRegisterer,
		Logger:        log,
		StockProvider: stockService,
	})
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}
	eventBus.Subscribe(businessMetrics)
	businessMetrics.StartPeriodicCollection(rootCtx, db, time.Minute)
	defer businessMetrics.Stop()

	if cfg.Messaging.URL != "" {
		serializer := event.NewEventSerializer()
		event.RegisterAllEvents(serializer)
		amqpPublisher, err := event.NewAMQPPublisher(cfg.Messaging, serializer, log)
		if err != nil {
			log.Warn("Broker unavailable, events stay in-process", zap.Error(err))
		} else {
			eventBus.Forward(amqpPublisher)
			defer func() {
				if err := amqpPublisher.Close(); err != nil {
					log.Error("Error closing AMQP publisher", zap.Error(err))
				}
			}()
		}
	}

	contractService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	treasuryService.SetEventPublisher(eventBus)
	voucherService.SetEventPublisher(eventBus)
	settlementService.SetEventPublisher(eventBus)

	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Nightly maintenance
	var jobScheduler *scheduler.Scheduler
	var cronTrigger *scheduler.CronTrigger
	if cfg.Scheduler.Enabled {
		retention := time.Duration(cfg.Notification.RetentionDays) * 24 * time.Hour
		executor := scheduler.NewLedgerExecutor(contractService, notificationService, auditService, retention, log)
		jobScheduler = scheduler.NewScheduler(cfg.Scheduler, executor, log)
		if err := jobScheduler.Start(rootCtx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}

		triggerCfg, err := scheduler.ParseDailySchedule(cfg.Scheduler.DailyCronSchedule)
		if err != nil {
			log.Fatal("Invalid daily schedule", zap.Error(err))
		}
		cronTrigger = scheduler.NewCronTrigger(triggerCfg, jobScheduler, db, log)
		if err := cronTrigger.Start(rootCtx); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
	}

	// HTTP
	middleware.SetupValidator()
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	metricsMiddleware, err := middleware.HTTPMetrics(middleware.DefaultHTTPMetricsConfig(prometheus.DefaultRegisterer))
	if err != nil {
		log.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanErrorMarker(),
		metricsMiddleware,
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders:    middleware.DefaultCORSConfig().ExposeHeaders,
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
	}

	engine.GET("/health", healthHandler(db))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	jwtService := auth.NewJWTService(cfg.JWT)
	authConfig := middleware.DefaultJWTConfig(jwtService)
	authConfig.Logger = log

	router.NewRouter(engine).
		Use(middleware.JWTAuthMiddlewareWithConfig(authConfig), middleware.TracingAttributeInjector()).
		Register(router.LedgerRoutes(router.Handlers{
			System:       handler.NewSystemHandler(cfg.App.Name, version),
			Customer:     handler.NewCustomerHandler(customerService),
			Supplier:     handler.NewSupplierHandler(supplierService),
			Unit:         handler.NewUnitHandler(unitService),
			Contract:     handler.NewContractHandler(contractService, paymentService),
			Installment:  handler.NewInstallmentHandler(contractService, paymentService),
			Safe:         handler.NewSafeHandler(safeService, treasuryService),
			Voucher:      handler.NewVoucherHandler(voucherService),
			Partner:      handler.NewPartnerHandler(partnerService, balanceService, treasuryService),
			PartnerGroup: handler.NewPartnerGroupHandler(groupService),
			Settlement:   handler.NewSettlementHandler(settlementService),
			Project:      handler.NewProjectHandler(projectService),
			Item:         handler.NewItemHandler(itemService, stockService),
			StockMove:    handler.NewStockMoveHandler(stockService),
			Notification: handler.NewNotificationHandler(notificationService),
			Audit:        handler.NewAuditHandler(auditService),
		})...).
		Setup()

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if cronTrigger != nil {
		if err := cronTrigger.Stop(ctx); err != nil {
			log.Error("Error stopping cron trigger", zap.Error(err))
		}
	}
	if jobScheduler != nil {
		if err := jobScheduler.Stop(ctx); err != nil {
			log.Error("Error stopping scheduler", zap.Error(err))
		}
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	stopBackground()
	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logsProvider.Shutdown(ctx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports database reachability and pool usage
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body := gin.H{"time": time.Now().Format(time.RFC3339)}
		if stats, err := db.Stats(); err == nil {
			body["db_open"] = stats.OpenConnections
			body["db_in_use"] = stats.InUse
		}
		if err := db.Ping(ctx); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			body["status"], body["database"] = "unhealthy", "error"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["status"], body["database"] = "healthy", "ok"
		c.JSON(http.StatusOK, body)
	}
}
