package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"foodhub/internal/account"
	"foodhub/internal/auth"
	"foodhub/internal/commons"
	"foodhub/internal/httpx"
	"foodhub/internal/infrastructure/logger"
	"foodhub/internal/infrastructure/mysql"
	"foodhub/internal/menu"
	"foodhub/internal/order"
	"foodhub/internal/order/usecase"
	"foodhub/internal/realtime"
	"foodhub/internal/review"
	"foodhub/internal/server"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	configPath := os.Getenv("FOODHUB_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := commons.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, "foodhub")
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = mysql.Migrate(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		zapLogger.Fatal("migrating schema", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	validator := httpx.NewValidator()
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	hub := realtime.NewRouter(zapLogger)
	var notifier usecase.Notifier = hub
	if cfg.Realtime.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:                  cfg.Realtime.RedisAddr,
			DialTimeout:           2 * time.Second,
			ReadTimeout:           2 * time.Second,
			WriteTimeout:          2 * time.Second,
			ContextTimeoutEnabled: true,
		})
		defer client.Close()

		bridge := realtime.NewRedisBridge(client, cfg.Realtime.RedisChannel, hub, zapLogger)
		go bridge.Run(ctx)
		notifier = bridge
		zapLogger.Info("realtime fan-out via redis", zap.String("addr", cfg.Realtime.RedisAddr))
	}

	menuModule := menu.NewModule(db, validator, zapLogger)
	orderModule, err := order.NewModule(db, cfg, menuModule.Service, notifier, validator, zapLogger)
	if err != nil {
		zapLogger.Fatal("wiring order module", zap.Error(err))
	}
	reviewCtrl := review.NewModule(db, orderModule.Repository, cfg.Order.CreateTxTimeout, validator, zapLogger)
	accountCtrl := account.NewModule(db, tokens, cfg.Order.CreateTxTimeout, validator, zapLogger)

	wsHandler := realtime.NewHandler(hub, cfg.Realtime, tokens, zapLogger)

	router := server.NewRouter(server.Controllers{
		Account:  accountCtrl,
		Menu:     menuModule.Controller,
		Order:    orderModule.Controller,
		Review:   reviewCtrl,
		Realtime: wsHandler,
	}, tokens, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)
	srv.OnShutdown(wsHandler.CloseAll)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}
	cancel()

	zapLogger.Info("server stopped gracefully")
}
