package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tabletap/internal/api"
	"tabletap/internal/config"
	"tabletap/internal/database"
	"tabletap/internal/images"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	port       = flag.Int("port", 0, "API server port (overrides config)")
	configFile = flag.String("config", "", "Path to configuration file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log, err := newLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := database.InitDB(cfg.Database); err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.CloseDB()

	db := database.GetDB()
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	store, err := images.NewStore(cfg.Images.Dir)
	if err != nil {
		log.Fatal("failed to initialize image store", zap.Error(err))
	}

	server := api.NewServer(cfg, db, store, log)

	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics, log)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router(),
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	log.Info("starting API server", zap.Int("port", cfg.Server.Port))
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("API server error", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func startMetricsServer(cfg config.MetricsConfig, log *zap.Logger) {
	gin.SetMode(gin.ReleaseMode)
	metricsRouter := gin.New()
	metricsRouter.GET(cfg.Path, gin.WrapH(promhttp.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: metricsRouter,
	}

	log.Info("starting metrics server", zap.Int("port", cfg.Port))
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Error("metrics server error", zap.Error(err))
	}
}
