// Package main provides the HTTP server for the golf fortune API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"golf-fortune-engine/internal/config"
	"golf-fortune-engine/internal/handlers"
	"golf-fortune-engine/internal/services/pipeline"
	"golf-fortune-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.Named("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services := pipeline.Setup(ctx, cfg)
	defer services.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%s", cfg.Port),
		Handler:           newRouter(cfg, services),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.LLMTimeout*time.Duration(cfg.LLMMaxRetries+1) + 30*time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Golf Fortune API server listening",
		zap.String("addr", srv.Addr),
		zap.String("stage", cfg.Stage),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func newRouter(cfg *config.Config, services *pipeline.Services) http.Handler {
	var db handlers.HealthChecker
	if services.DB != nil {
		db = services.DB
	}
	health := handlers.NewHealthHandler(cfg, db)

	mux := http.NewServeMux()
	mux.Handle("/api/analyze-user", handlers.NewAnalyzeHandler(services.Pipeline))
	mux.Handle("/health", health)
	mux.Handle("/api/health", health)
	mux.Handle("/api/test-env", handlers.EnvHandler(cfg))
	mux.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}
