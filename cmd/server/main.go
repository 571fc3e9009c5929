package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pos-nfc-api/internal/adapters/primary/http/handlers"
	"pos-nfc-api/internal/adapters/primary/http/middleware"
	"pos-nfc-api/internal/app"
	"pos-nfc-api/internal/config"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	app.InitLogger(cfg.Logger)

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer a.Close()

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(a.Cards, a.Logs, a.Models)

	// Setup router
	router := gin.New()
	router.Use(middleware.Chain(a.Metrics, cfg.Server.RateLimit, cfg.Server.RateBurst)...)
	if a.Metrics != nil {
		router.GET("/metrics", gin.WrapH(a.Metrics.Handler()))
	}
	if cfg.Server.RateLimit > 0 {
		log.Infof("rate limiting enabled: %.1f req/s, burst %d", cfg.Server.RateLimit, cfg.Server.RateBurst)
	}

	h.RegisterRoutes(router)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := a.Pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}
