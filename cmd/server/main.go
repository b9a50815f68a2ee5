package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"campus-booking/internal/app"
	"campus-booking/internal/config"
	"campus-booking/internal/repository"
	"campus-booking/internal/server"
	"campus-booking/internal/service"
	"campus-booking/internal/token"
	"campus-booking/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, migrations.FS)
	if err != nil {
		logger.Fatal("failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	userRepo := repository.NewUserRepository(pool)
	resourceRepo := repository.NewResourceRepository(pool)
	slotRepo := repository.NewSlotRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	tokens := token.NewManager(cfg.JWTSecret)

	authService := service.NewAuthService(userRepo, tokens, logger)
	resourceService := service.NewResourceService(pool, resourceRepo, slotRepo, bookingRepo, logger)
	bookingService := service.NewBookingService(pool, slotRepo, bookingRepo, logger)

	srv := server.New(server.Config{
		Auth:        authService,
		Resources:   resourceService,
		Bookings:    bookingService,
		Tokens:      tokens,
		Logger:      logger,
		StaticDir:   cfg.StaticDir,
		Environment: cfg.Environment,
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}
}
