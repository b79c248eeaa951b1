package main

import (
	"context"
	"database/sql"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/laundry-pos/internal/catalog"
	"github.com/wichananm65/laundry-pos/internal/config"
	"github.com/wichananm65/laundry-pos/internal/health"
	"github.com/wichananm65/laundry-pos/internal/logging"
	"github.com/wichananm65/laundry-pos/internal/metrics"
	"github.com/wichananm65/laundry-pos/internal/order"
	"go.uber.org/zap"
)

func main() {
	cfg, cfgErr := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	if cfgErr != nil {
		logger.Warn("using defaults for invalid settings", zap.Error(cfgErr))
	}

	// money goes out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	setupCORS(app)

	m := metrics.New("api")
	app.Use(logging.Middleware(logger))
	app.Use(m.Middleware())
	app.Get("/metrics", m.Handler())

	var (
		catalogRepo catalog.Repository
		orderRepo   order.Repository
		pinger      health.Pinger
	)
	if cfg.DatabaseURL != "" {
		db := mustOpenDB(cfg.DatabaseURL)
		defer db.Close()
		for _, schema := range []string{catalog.Schema, order.Schema} {
			if _, err := db.Exec(schema); err != nil {
				logger.Fatal("schema setup failed", zap.Error(err))
			}
		}
		catalogRepo = catalog.NewPostgresRepository(db)
		orderRepo = order.NewPostgresRepository(db)
		pinger = db
		logger.Info("using postgres storage")
	} else {
		catalogRepo = catalog.NewInMemoryRepository(nil)
		orderRepo = order.NewInMemoryRepository()
		logger.Info("DATABASE_URL not set, using in-memory storage")
	}

	catalogService := catalog.NewService(catalogRepo)
	seedCatalog(catalogService, logger)

	health.NewHandler(pinger, logger).RegisterRoutes(app)
	catalog.NewHandler(catalogService, logger).RegisterRoutes(app)
	order.NewHandler(order.NewService(orderRepo, catalogRepo), logger, m).RegisterRoutes(app)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Addr))
		errc <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errc:
		if err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Idempotency-Key",
	}))
}

func mustOpenDB(dbURL string) *sql.DB {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}

// seedCatalog fills an empty catalog with the default services.
func seedCatalog(s *catalog.Service, logger *zap.Logger) {
	items, err := s.List()
	if err != nil || len(items) > 0 {
		return
	}
	seed := []catalog.Item{
		{Name: "Wash & Fold", Category: "Laundry", BasePrice: decimal.NewFromInt(200), Unit: "kg", IsActive: true},
		{Name: "Ironing", Category: "Laundry", BasePrice: decimal.NewFromInt(150), Unit: "piece", IsActive: true},
		{Name: "Dry Cleaning", Category: "Dry Clean", BasePrice: decimal.NewFromInt(500), Unit: "piece", IsActive: true},
		{Name: "Duvet Wash", Category: "Bedding", BasePrice: decimal.NewFromInt(800), Unit: "piece", IsActive: true},
	}
	for _, it := range seed {
		if _, err := s.Create(it); err != nil {
			logger.Warn("seed service failed", zap.String("name", it.Name), zap.Error(err))
		}
	}
}
