package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourusername/ecsworld/internal/domain/ecs"
	"github.com/yourusername/ecsworld/internal/infrastructure/logging"
	"github.com/yourusername/ecsworld/internal/infrastructure/monitoring"
	"github.com/yourusername/ecsworld/internal/infrastructure/server"
)

var (
	port        = flag.String("port", "8080", "Server port")
	metricsPort = flag.String("metrics-port", "9090", "Metrics port for Prometheus")
	logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	env         = flag.String("env", "development", "Environment (development, production)")
)

func main() {
	flag.Parse()

	logConfig := &logging.LoggerConfig{
		Level:      parseLogLevel(*logLevel),
		Console:    true,
		JSON:       *env == "production",
		TimeFormat: time.RFC3339,
		Context: map[string]interface{}{
			"environment": *env,
			"service":     "ecsworld-server",
		},
	}

	logManagerConfig := &logging.LogManagerConfig{
		LogDir:          "./logs",
		MaxFileSize:     100 * 1024 * 1024, // 100MB
		MaxBackups:      10,
		MaxAge:          30,
		Compress:        true,
		BufferSize:      1000,
		FlushInterval:   time.Second,
		RotationTime:    24 * time.Hour,
		FileNamePattern: "ecsworld-%s.log",
	}

	if err := logging.Initialize(logConfig, logManagerConfig); err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
	defer logging.Close()

	logging.Info("starting ecsworld server")
	logging.WithFields(map[string]interface{}{
		"port":         *port,
		"metrics_port": *metricsPort,
		"environment":  *env,
	}).Info("server configuration")

	metricsCollector := monitoring.NewMetricsCollector()

	metricsPortInt := 9090
	if _, err := fmt.Sscanf(*metricsPort, "%d", &metricsPortInt); err != nil {
		log.Printf("invalid metrics port, using default 9090: %v", err)
	}
	if err := metricsCollector.StartServer(metricsPortInt); err != nil {
		logging.WithError(err).Error("failed to start metrics server")
	}
	logging.Infof("metrics server started on port %d", metricsPortInt)

	world := ecs.NewWorld(ecs.DefaultConfig(), nil)

	sampler := monitoring.NewWorldSampler(metricsCollector, world)
	sampler.Start(10 * time.Second)
	defer sampler.Stop()

	worldServer := server.NewWorldServer(world, fmt.Sprintf(":%s", *port))

	go func() {
		logging.Infof("serving world introspection on :%s (env: %s)", *port, *env)
		if err := worldServer.Start(); err != nil {
			logging.WithError(err).Fatal("server failed to start")
		}
	}()

	go tickLoop(world)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := worldServer.Shutdown(ctx); err != nil {
		logging.WithError(err).Error("server forced to shutdown")
	}

	if err := metricsCollector.StopServer(); err != nil {
		logging.WithError(err).Error("error stopping metrics server")
	}

	logging.Info("server exited")
}

// tickLoop drives the world at a fixed cadence, standing in for the host
// scene-graph's per-frame tick when this binary runs headless.
func tickLoop(world *ecs.World) {
	const tickRate = 60
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	delta := 1.0 / float64(tickRate)
	for range ticker.C {
		if err := world.Process(delta, ""); err != nil {
			logging.WithError(err).Error("tick failed")
		}
	}
}

func parseLogLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.DebugLevel
	case "info":
		return logging.InfoLevel
	case "warn":
		return logging.WarnLevel
	case "error":
		return logging.ErrorLevel
	default:
		return logging.InfoLevel
	}
}
