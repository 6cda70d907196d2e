package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/centerfuze/organization-service/pkg/config"
	"github.com/centerfuze/organization-service/pkg/events"
	"github.com/centerfuze/organization-service/pkg/modules"
	"github.com/centerfuze/organization-service/pkg/observability"
	"github.com/centerfuze/organization-service/pkg/orgs"
	"github.com/centerfuze/organization-service/pkg/storage/postgres"
	"github.com/centerfuze/organization-service/pkg/transport"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout).
		WithField("service", cfg.Service.Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenTelemetry (optional)
	var otelProviders *observability.OTelProviders
	if cfg.Observability.OTelEnabled {
		otelProviders, err = observability.InitOTel(ctx, observability.OTelConfig{
			Enabled:        true,
			Endpoint:       cfg.Observability.OTelEndpoint,
			ServiceName:    cfg.Observability.OTelServiceName,
			ServiceVersion: cfg.Observability.OTelServiceVersion,
			Insecure:       cfg.Observability.OTelInsecure,
		}, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to initialize OpenTelemetry")
			os.Exit(1)
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	// Database
	pgCfg := postgres.DefaultConfig(cfg.Postgres.URL)
	pgCfg.MaxConns = cfg.Postgres.MaxConns
	pgCfg.MinConns = cfg.Postgres.MinConns
	pgCfg.Timeout = cfg.Postgres.Timeout

	db, err := postgres.Connect(ctx, pgCfg)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		logger.WithError(err).Error("Failed to ensure database schema")
		os.Exit(1)
	}
	logger.Info("Database ready")

	// Message bus
	natsOpts := []nats.Option{
		nats.Name(cfg.Service.Name),
		nats.ReconnectWait(cfg.NATS.ReconnectWait),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.WithError(err).Warn("Disconnected from message bus")
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			logger.WithField("url", conn.ConnectedUrl()).Info("Reconnected to message bus")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			l := logger.WithError(err)
			if sub != nil {
				l = l.WithField("subject", sub.Subject)
			}
			l.Error("Message bus error")
		}),
	}
	if cfg.NATS.User != "" {
		natsOpts = append(natsOpts, nats.UserInfo(cfg.NATS.User, cfg.NATS.Password))
	}

	nc, err := nats.Connect(cfg.NATS.URL, natsOpts...)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to message bus")
		os.Exit(1)
	}
	defer nc.Close()
	logger.WithField("url", nc.ConnectedUrl()).Info("Connected to message bus")

	// Services
	publisher := events.NewNATSPublisher(nc, cfg.Service.Name, cfg.NATS.SubjectPrefix, logger, metrics)
	catalog := modules.DefaultCatalog()

	orgService := orgs.NewPostgresService(db, publisher, logger)
	moduleService := modules.NewPostgresService(db, catalog, publisher, logger)
	syncer := modules.NewSyncer(moduleService, publisher, logger)

	// Transport
	health := observability.NewHealthChecker(db, nc)
	server := transport.NewServer(nc, orgService, moduleService, syncer,
		health, logger, metrics,
		cfg.NATS.SubjectPrefix, cfg.NATS.QueueGroup)
	if err := server.Start(); err != nil {
		logger.WithError(err).Error("Failed to start transport server")
		os.Exit(1)
	}

	// Health and metrics HTTP server
	router := mux.NewRouter()
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, health)
	router.PathPrefix("/health").Handler(healthMux)
	if cfg.Observability.MetricsEnabled {
		router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.HealthPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("port", cfg.Server.HealthPort).Info("Health server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	if metrics != nil {
		g.Go(func() error {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					stats := db.Stats()
					metrics.DBConnectionsActive.Set(float64(stats.InUse))
					metrics.DBConnectionsIdle.Set(float64(stats.Idle))
				}
			}
		})
	}

	// Graceful shutdown on SIGINT/SIGTERM
	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return server.Drain()
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		nc.Close()
		return nil
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return db.Close()
	})
	if otelProviders != nil {
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
			return observability.ShutdownOTel(ctx, otelProviders, logger)
		})
	}

	logger.Info("Organization service started")
	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("Shutdown completed with errors")
	}
	cancel()
	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Background worker exited with error")
	}
	logger.Info("Organization service stopped")
}
