package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"slotwise/core/cache"
	"slotwise/core/config"
	"slotwise/core/database"
	"slotwise/core/logger"
	"slotwise/core/middleware"
	"slotwise/core/workers"
	"slotwise/modules/auth"
	"slotwise/modules/availability"
	"slotwise/modules/booking"
	providerrepo "slotwise/modules/provider/repository"
	providersvc "slotwise/modules/provider/service"
)

const shutdownTimeout = 10 * time.Second

// Run boots the whole service: config, logging, postgres, redis, the
// provider adapter, the background worker, and the HTTP surface. It blocks
// until SIGINT/SIGTERM and then drains in-flight requests.
func Run() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := config.Get()
	logger.Init(cfg.LogLevel)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	redisCache, err := cache.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}

	credRepo := providerrepo.NewCredentialRepository(&db)
	provider := providersvc.NewGoogleProvider(credRepo, cfg.GoogleAPI)

	workerClient := workers.NewClient(cfg.Redis)
	defer workerClient.Close()

	workerServer := workers.NewServer(cfg.Redis, provider)
	if err := workerServer.Start(); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}
	defer workerServer.Shutdown()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	mw := middleware.NewMiddleware()
	e.Use(mw.RequestLogger())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	auth.Init(e, credRepo)
	availability.Init(e, provider, mw)
	booking.Init(e, &db, provider, redisCache, workerClient, mw)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("Server:Run:Listening", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Run:StartFailed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server:Run:ShuttingDown")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
