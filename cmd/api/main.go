package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"example.com/signup/internal/api"
	"example.com/signup/internal/config"
	"example.com/signup/internal/domain"
	"example.com/signup/internal/logging"
	"example.com/signup/internal/observability"
	"example.com/signup/internal/outbox"
	"example.com/signup/internal/seed"
	httptransport "example.com/signup/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	catalog := seed.Default()
	if cfg.SeedFile != "" {
		catalog, err = seed.LoadFile(cfg.SeedFile)
		if err != nil {
			logger.Fatal("seed catalog load failed", zap.Error(err))
		}
	}

	directory, err := domain.NewDirectory(catalog, domain.WithCapacityEnforcement(cfg.EnforceCapacity))
	if err != nil {
		logger.Fatal("invalid seed catalog", zap.Error(err))
	}
	for _, activity := range directory.List() {
		observability.SetRosterSize(activity.Name, len(activity.Participants))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var publisher domain.EventPublisher = outbox.NoopPublisher{}
	var dispatcher *outbox.Dispatcher
	if cfg.EventsEnabled() {
		producer := outbox.NewKafkaProducer(outbox.ProducerConfig{Brokers: cfg.KafkaBrokers})
		defer producer.Close()

		dispatcher = outbox.NewDispatcher(producer, cfg.RosterTopic, cfg.OutboxBufferSize, logger.Named("outbox"))
		go dispatcher.Start(ctx)
		publisher = dispatcher
		logger.Info("roster events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.RosterTopic))
	}

	service := domain.NewService(directory, publisher, logger.Named("domain"))

	handler := api.NewHandler(service, logger.Named("api"))
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	mux.Handle("GET /metrics", promhttp.Handler())

	server := httptransport.NewServer(
		httptransport.DefaultServerConfig(cfg.HTTPAddress),
		httptransport.Chain(mux,
			httptransport.RequestLogger(logger.Named("http")),
			httptransport.CORS(cfg.CORSAllowedOrigin),
		),
	)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("signup-service listening",
			zap.String("address", cfg.HTTPAddress),
			zap.Int("activities", len(catalog)),
			zap.Bool("enforce_capacity", cfg.EnforceCapacity),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-shutdownCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	// Requests have drained, so the dispatcher can flush and stop.
	cancel()
	if dispatcher != nil {
		dispatcher.Wait()
	}
}
