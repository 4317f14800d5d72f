package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/rocketshoes-cart/internal/catalog"
	"github.com/fjod/rocketshoes-cart/internal/config"
	"github.com/fjod/rocketshoes-cart/internal/events"
	h "github.com/fjod/rocketshoes-cart/internal/http"
	"github.com/fjod/rocketshoes-cart/internal/logger"
	"github.com/fjod/rocketshoes-cart/internal/metrics"
	"github.com/fjod/rocketshoes-cart/internal/notify"
	"github.com/fjod/rocketshoes-cart/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "cartd"}).Error(context.Background(), "invalid configuration", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "cartd",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "cartd stopped with error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Warn(context.Background(), "repository close failed", err)
		}
	}()

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		logCtx := log.WithField(ctx, "brokers", cfg.KafkaBrokers)
		log.Info(logCtx, "publishing cart events to kafka")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn(context.Background(), "event publisher close failed", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store, err := service.NewCartStore(ctx, service.Dependencies{
		Catalog:  catalog.NewHTTPClient(cfg.CatalogURL, cfg.CatalogTimeout),
		Repo:     repo,
		Notifier: notify.NewLogNotifier(log),
		Events:   publisher,
		Metrics:  metrics.NewCartMetrics(reg),
		Logger:   log,
	})
	if err != nil {
		return err
	}

	router := h.NewRouter(h.RouterConfig{
		Cart:           h.NewCartHandler(store, cfg.RequestTimeout, log),
		Ready:          store.CatalogLoaded(),
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "cartd"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logCtx := log.WithField(ctx, "port", cfg.HTTPPort)
		log.Info(logCtx, "cartd starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info(context.Background(), "server exited")
	return nil
}
