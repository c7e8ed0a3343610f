package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/veriscan/backend/internal/ai"
	"github.com/veriscan/backend/internal/api/handlers"
	cacheredis "github.com/veriscan/backend/internal/cache/redis"
	"github.com/veriscan/backend/internal/evidence"
	"github.com/veriscan/backend/internal/evidence/factcheck"
	"github.com/veriscan/backend/internal/intake"
	"github.com/veriscan/backend/internal/metrics"
	"github.com/veriscan/backend/internal/middleware/ratelimit"
	"github.com/veriscan/backend/internal/middleware/security"
	"github.com/veriscan/backend/internal/middleware/validation"
	"github.com/veriscan/backend/internal/resolver"
	"github.com/veriscan/backend/internal/storage/sqlite"
	"github.com/veriscan/backend/internal/worker"
	"github.com/veriscan/backend/pkg/config"
	appLogger "github.com/veriscan/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Veriscan verification API server")

	metrics.Init()

	store, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer store.Close()

	err = store.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	queue := intake.NewQueue()

	hashes, err := store.LoadContentHashes()
	if err != nil {
		appLogger.Warn("Failed to reload content hashes", zap.Error(err))
	} else {
		queue.MarkSeen(hashes)
		appLogger.Info("Content hashes reloaded", zap.Int("count", len(hashes)))
	}

	var contentCache resolver.ContentCache
	if cfg.Redis.Enabled {
		redisClient, err := cacheredis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLHours)*time.Hour,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, content cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			contentCache = redisClient
		}
	}

	strategies := []resolver.Strategy{resolver.NewDirectStrategy(cfg.Resolver.TimeoutSec)}
	if cfg.Resolver.GNewsKey != "" {
		strategies = append(strategies, resolver.NewGNewsStrategy(cfg.Resolver.GNewsKey, cfg.Resolver.TimeoutSec))
	}
	if cfg.Resolver.NewsAPIKey != "" {
		strategies = append(strategies, resolver.NewNewsAPIStrategy(cfg.Resolver.NewsAPIKey, cfg.Resolver.TimeoutSec))
	}
	contentResolver := resolver.NewResolver(contentCache, strategies...)

	factCheckClient := factcheck.NewClient(cfg.FactCheck.APIKey, cfg.FactCheck.BaseURL, cfg.FactCheck.TimeoutSec)
	aggregator := evidence.NewAggregator(factCheckClient, cfg.FactCheck.PageSize)

	aiClient := ai.NewClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.TimeoutSec)

	resultHub := handlers.NewResultHub()

	w := worker.New(queue, aggregator, aiClient, store, resultHub)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	go w.Run(workerCtx)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(validation.Middleware(validation.Config{
		MaxContentLength: cfg.Server.BodyLimit,
		Logger:           appLogger.GetLogger(),
	}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.Server.RateLimit,
		Logger:               appLogger.GetLogger(),
	})

	analyzeHandler := handlers.NewAnalyzeHandler(queue, contentResolver)
	historyHandler := handlers.NewHistoryHandler(store, queue)

	api := app.Group("/api")

	api.Post("/analyze", limiter.Middleware(), analyzeHandler.HandleAnalyze)
	api.Get("/stats", historyHandler.GetStats)
	api.Get("/history", historyHandler.GetHistory)
	api.Get("/latest_result", historyHandler.GetLatest)
	api.Delete("/history/:id", historyHandler.DeleteItem)
	api.Post("/clear_history", historyHandler.ClearHistory)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
			"queued": queue.Depth(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/results", websocket.New(resultHub.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	stopWorker()
	appLogger.Info("Server stopped")
}
