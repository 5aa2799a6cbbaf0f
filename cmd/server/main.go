package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/unemployed-avengers/backend/internal/metrics"
	"github.com/anonto42/unemployed-avengers/backend/internal/router"
	"github.com/anonto42/unemployed-avengers/backend/pkg/config"
	"github.com/anonto42/unemployed-avengers/backend/pkg/firebase"
	"github.com/anonto42/unemployed-avengers/backend/pkg/logger"
	"github.com/anonto42/unemployed-avengers/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	ctx := context.Background()

	// Initialize Firebase
	var fb *firebase.App
	if cfg.NeedsFirebase() {
		fb, err = firebase.InitFirebase(ctx, firebase.Options{
			CredentialsPath: cfg.FirebaseCredentialsPath,
			ProjectID:       cfg.FirebaseProjectID,
			APIKey:          cfg.FirebaseAPIKey,
			WithFirestore:   cfg.StoreBackend == config.StoreFirestore,
		})
		if err != nil {
			logger.Log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		defer fb.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	deps, err := router.BuildDeps(ctx, cfg, db, fb, m)
	if err != nil {
		logger.Log.Fatalf("Failed to build dependencies: %v", err)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, m)
	router.SetupRoutes(e, deps)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Log.WithField("port", cfg.MetricsPort).Info("Metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Error("Metrics server stopped")
		}
	}()

	go func() {
		logger.Log.WithFields(map[string]interface{}{"port": cfg.Port, "env": cfg.Env}).Info("Server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server shutdown failed")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Metrics server shutdown failed")
	}
}
