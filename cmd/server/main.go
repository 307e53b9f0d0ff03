package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"studyhub/internal/handler"
	"studyhub/internal/httpserver"
	"studyhub/internal/notify"
	"studyhub/internal/repository"
	"studyhub/internal/service"
	"studyhub/internal/ws"
	"studyhub/pkg/config"
	"studyhub/pkg/db"
	"studyhub/pkg/logger"
	"studyhub/pkg/mq"
	"studyhub/pkg/redis"
)

func main() {
	cfg, err := config.Load(config.GetConfigEnv(), config.GetEnv("CONFIG_DIR", "config"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logger.NewLogger()
	defer zlog.Sync()

	zlog.Info("Starting studyhub server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("port", cfg.Server.Port),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, zlog)
	if err != nil {
		zlog.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Repositories
	userRepo := repository.NewUserRepository(dbConn, zlog)
	groupRepo := repository.NewGroupRepository(dbConn, zlog)
	taskRepo := repository.NewTaskRepository(dbConn, zlog)
	chatRepo := repository.NewChatRepository(dbConn, zlog)
	resourceRepo := repository.NewResourceRepository(dbConn, zlog)

	// Fan-out hub and notifier
	hub := notify.NewHub(zlog)
	notifier := notify.NewNotifier(hub, zlog)

	// Optional MQ relay
	var publisher *mq.Publisher
	if cfg.MQ.URL != "" {
		publisher, err = mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			zlog.Fatal("Failed to init MQ publisher", zap.Error(err))
		}
		defer publisher.Close()
		notifier = notifier.WithRelay(publisher)
		zlog.Info("Notification relay enabled", zap.String("exchange", mq.ExchangeName))
	}

	// Dedup tracker: in-memory by default, redis when configured
	var tracker notify.Tracker = notify.NewMemoryTracker()
	if cfg.Notify.DedupBackend == "redis" {
		if cfg.Redis.Addr == "" {
			zlog.Fatal("dedup_backend is redis but redis.addr is empty")
		}
		rdb, err := redis.NewClient(cfg.Redis)
		if err != nil {
			zlog.Fatal("Failed to init redis", zap.Error(err))
		}
		defer rdb.Close()
		tracker = notify.NewRedisTracker(rdb, cfg.Notify.DedupTTL(), zlog)
		zlog.Info("Redis dedup tracker enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// Deadline scanner
	scanner := notify.NewScanner(taskRepo, tracker, notifier, notify.ScannerConfig{
		Interval:   cfg.Notify.ScanInterval(),
		Lookahead:  cfg.Notify.Lookahead(),
		Thresholds: cfg.Notify.DefaultThresholds,
	}, zlog)

	scanCtx, scanCancel := context.WithCancel(context.Background())
	defer scanCancel()
	go scanner.Run(scanCtx)
	zlog.Info("Deadline scanner started",
		zap.Duration("interval", cfg.Notify.ScanInterval()),
		zap.Duration("lookahead", cfg.Notify.Lookahead()),
	)

	// Handlers
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret)
	authHandler := handler.NewAuthHandler(authService, zlog)
	groupHandler := handler.NewGroupHandler(groupRepo, userRepo, notifier, zlog)
	taskHandler := handler.NewTaskHandler(taskRepo, groupRepo, notifier, zlog)
	chatHandler := handler.NewChatHandler(chatRepo, groupRepo, zlog)
	resourceHandler := handler.NewResourceHandler(resourceRepo, groupRepo, notifier, zlog)
	wsHandler := ws.NewHandler(hub, cfg.Notify.SendTimeout(), zlog)

	router := httpserver.NewRouter(
		authHandler,
		groupHandler,
		taskHandler,
		chatHandler,
		resourceHandler,
		wsHandler,
		cfg.JWT.Secret,
		dbConn,
		zlog,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		zlog.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	zlog.Info("studyhub server is fully initialized and running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down studyhub server gracefully...")

	scanCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("HTTP server shutdown error", zap.Error(err))
	}

	zlog.Info("studyhub server shutdown complete")
}
