package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourorg/stocksim/internal/config"
	"github.com/yourorg/stocksim/internal/quotes"
	pgRepo "github.com/yourorg/stocksim/internal/repository/postgres"
	redisRepo "github.com/yourorg/stocksim/internal/repository/redis"
	"github.com/yourorg/stocksim/internal/trading"
	"github.com/yourorg/stocksim/internal/web"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	db, err := pgRepo.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	if err := pgRepo.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}
	logger.Info("migrations applied")

	redisClient, err := redisRepo.Connect(cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	logger.Info("redis connected")

	userRepo := pgRepo.NewUserRepo(db)
	txnRepo := pgRepo.NewTransactionRepo(db)
	sessions := redisRepo.NewSessionStore(redisClient, cfg.SessionTTL)
	quoteCache := redisRepo.NewQuoteCache(redisClient)

	quoteClient := quotes.NewClient(cfg.QuoteAPIURL, cfg.APIKey, quoteCache, logger)
	tradingSvc := trading.NewService(db, userRepo, txnRepo, quoteClient)

	renderer, err := web.NewRenderer(logger)
	if err != nil {
		logger.Error("failed to parse templates", "err", err)
		os.Exit(1)
	}

	handlers := web.NewHandlers(renderer, userRepo, tradingSvc, quoteClient, sessions, logger)
	router := web.NewRouter(handlers, sessions)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	logger.Info("server stopped")
}
