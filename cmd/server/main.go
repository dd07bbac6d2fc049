package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/brewline/queue-api/internal/archive"
	"github.com/brewline/queue-api/internal/config"
	"github.com/brewline/queue-api/internal/notify"
	"github.com/brewline/queue-api/internal/router"
	"github.com/brewline/queue-api/internal/service"
	"github.com/brewline/queue-api/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("resolve analytics timezone", zap.Error(err))
	}

	ctx := context.Background()

	// WebSocket hub: the shared queue_updated topic.
	hub := ws.NewHub(logger)
	go hub.Run()

	sinks := []notify.Sink{notify.NewHubSink(hub)}

	// Optional postgres history archive.
	if cfg.Database.URL != "" {
		pool, err := archive.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal("connect to postgres", zap.Error(err))
		}
		defer pool.Close()

		recorder := archive.New(pool)
		if err := recorder.EnsureSchema(ctx); err != nil {
			logger.Fatal("ensure archive schema", zap.Error(err))
		}
		sinks = append(sinks, notify.NewArchiveSink(recorder))
		logger.Info("order history archive enabled")
	}

	// Optional RabbitMQ update publisher.
	if cfg.AMQP.URL != "" {
		amqpSink, err := notify.DialAMQP(cfg.AMQP.URL)
		if err != nil {
			logger.Fatal("connect to RabbitMQ", zap.Error(err))
		}
		defer amqpSink.Close()

		sinks = append(sinks, amqpSink)
		logger.Info("amqp update publisher enabled")
	}

	dispatcher := notify.NewDispatcher(logger, sinks...)
	go dispatcher.Run()
	defer dispatcher.Close()

	svc := service.New(service.Options{
		DefaultPrepTime: cfg.DefaultPrep(),
		PageSize:        cfg.Queue.PageSize,
		RecentCapacity:  cfg.Analytics.RecentCapacity,
		Location:        loc,
	}, dispatcher, logger)

	r := router.New(cfg, svc, hub, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.Server.Port))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
