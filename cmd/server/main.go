package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yourorg/broker-ledger/internal/auth"
	"github.com/yourorg/broker-ledger/internal/execution"
	"github.com/yourorg/broker-ledger/internal/gateway"
	"github.com/yourorg/broker-ledger/internal/query"
	pgRepo "github.com/yourorg/broker-ledger/internal/repository/postgres"
	redisRepo "github.com/yourorg/broker-ledger/internal/repository/redis"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	dbURL := os.Getenv("DATABASE_URL")
	redisURL := os.Getenv("REDIS_URL")
	jwtSecret := os.Getenv("JWT_SECRET")
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	origins := strings.Split(os.Getenv("CORS_ORIGINS"), ",")
	if len(origins) == 1 && origins[0] == "" {
		origins = []string{"http://localhost:3000", "http://localhost:3001", "http://localhost:3002"}
	}

	db, err := pgRepo.Connect(dbURL)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	if err := pgRepo.RunMigrations(dbURL, "migrations"); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}
	logger.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := redisRepo.Connect(ctx, redisURL)
	if err != nil {
		logger.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	logger.Info("redis connected")

	userRepo := pgRepo.NewUserRepo(db)
	holdingRepo := pgRepo.NewHoldingRepo(db)
	orderRepo := pgRepo.NewOrderRepo(db)
	quoteRepo := redisRepo.NewQuoteRepo(redisClient)

	jwtSvc := auth.NewJWTService(jwtSecret)
	engine := execution.NewEngine(pgRepo.NewStore(db), quoteRepo, logger)
	querySvc := query.NewService(holdingRepo)

	hub := gateway.NewHub(quoteRepo, logger)
	handlers := gateway.NewHandlers(userRepo, orderRepo, querySvc, engine, jwtSvc, logger)
	router := gateway.NewRouter(handlers, hub, jwtSvc, origins)

	go hub.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", port)
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
