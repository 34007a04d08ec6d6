// Command audit-archiver copies the audit stream into the audit store of a
// separate database, so the trail survives loss of the primary.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"handover/internal/platform/config"
	"handover/internal/platform/httpserver"
	"handover/internal/platform/kafka"
	"handover/internal/platform/logger"
	"handover/internal/platform/postgres"
	audit "handover/pkg/platform/audit"
	"handover/pkg/platform/audit/consumer"
	auditpg "handover/pkg/platform/audit/store/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL required for the audit archive")
	}
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	store := auditpg.New(db)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate audit schema: %w", err)
	}

	client, err := kafka.NewGroupConsumer(cfg.Kafka, cfg.Kafka.ArchiveGroup)
	if err != nil {
		return err
	}
	defer client.Close()

	m := consumer.NewMetrics()
	archive := consumer.NewArchiveHandler(store, log)
	router := consumer.NewRouter(log, archive)
	router.Register(audit.CategorySecurity, consumer.NewSecurityHandler(archive, log, m))
	c := consumer.New(client, router, consumer.WithLogger(log), consumer.WithMetrics(m))

	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := kafka.Ping(r.Context(), client); err != nil {
			http.Error(w, "kafka unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httpserver.New(cfg.Kafka.ArchiveAddr, mux)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.InfoContext(ctx, "starting audit archiver",
			"topic", cfg.Kafka.AuditTopic,
			"group", cfg.Kafka.ArchiveGroup,
		)
		if err := c.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error { return httpserver.Run(gctx, srv, 5*time.Second, log) })

	err = g.Wait()
	log.Info("audit archiver stopped")
	return err
}
