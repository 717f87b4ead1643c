package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/nikolaygtitov/hotel-ops/internal/config"
	"github.com/nikolaygtitov/hotel-ops/internal/database"
	"github.com/nikolaygtitov/hotel-ops/internal/handler"
	"github.com/nikolaygtitov/hotel-ops/internal/middleware"
	"github.com/nikolaygtitov/hotel-ops/internal/queue"
	"github.com/nikolaygtitov/hotel-ops/internal/repository"
	"github.com/nikolaygtitov/hotel-ops/internal/router"
	"github.com/nikolaygtitov/hotel-ops/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	db, err := database.Open(cfg.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.WithField("driver", cfg.DB.Driver).Info("Database connection established")

	if cfg.DB.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			logger.Fatalf("Failed to migrate schema: %v", err)
		}
		logger.Info("Schema migrated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stay events are optional; the engine runs without a publisher.
	var publisher service.Publisher
	if cfg.Queue.Enabled {
		p := queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Name, logger)
		defer p.Close()
		publisher = p

		consumer := &queue.Consumer{URL: cfg.Queue.URL, Queue: cfg.Queue.Name, LogDir: cfg.Queue.LogDir, Logger: logger}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("stay consumer stopped")
			}
		}()
	}

	store := repository.NewSQLStore(db)
	staffing := service.NewStaffingService(store, service.StaffingPolicy{
		Roles:      cfg.Staffing.DedicatedRoles,
		Categories: cfg.Staffing.DedicatedCategories,
	}, logger)
	billing := service.NewBillingService(store, cfg.Billing.HotelCardDiscountBP, logger)
	reservations := service.NewReservationService(store, staffing, billing, publisher, logger)
	reports := service.NewReportService(store)

	// Redis backs the report cache and the rate limiter; both pass
	// requests through when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("Redis unavailable; report cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))

	router.RegisterRoutes(e, store)
	cacheCfg := config.LoadCacheConfig()
	v1 := e.Group("/v1",
		middleware.RateLimit(config.LoadRateLimitConfig(), rdb, logger),
		middleware.InvalidateReports(cacheCfg, rdb, logger))
	router.RegisterReservations(v1,
		handler.NewReservationHandler(reservations, billing, logger),
		handler.NewStaffHandler(staffing, logger))
	router.RegisterReports(v1,
		handler.NewReportHandler(reports, logger),
		middleware.ReportCache(cacheCfg, rdb, logger))
	router.RegisterTables(v1, repository.NewGateway(db), logger)

	addr := ":" + cfg.Port
	go func() {
		logger.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("Server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server exited")
}
