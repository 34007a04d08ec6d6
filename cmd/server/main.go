package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"handover/internal/identity"
	jwttoken "handover/internal/jwt_token"
	"handover/internal/offline"
	"handover/internal/platform/config"
	"handover/internal/platform/httpserver"
	"handover/internal/platform/kafka"
	"handover/internal/platform/logger"
	"handover/internal/platform/metrics"
	"handover/internal/platform/postgres"
	"handover/internal/platform/redis"
	"handover/internal/ratelimit"
	"handover/internal/transfer/handler"
	transfermetrics "handover/internal/transfer/metrics"
	"handover/internal/transfer/service"
	"handover/internal/transfer/store/memory"
	transferpg "handover/internal/transfer/store/postgres"
	audit "handover/pkg/platform/audit"
	"handover/pkg/platform/audit/publishers/compliance"
	"handover/pkg/platform/audit/publishers/security"
	"handover/pkg/platform/audit/publishers/stream"
	auditmemory "handover/pkg/platform/audit/store/memory"
	auditpg "handover/pkg/platform/audit/store/postgres"
	"handover/pkg/platform/audit/worker"
	"handover/pkg/platform/middleware/auth"
	request "handover/pkg/platform/middleware/request"
	"handover/pkg/platform/middleware/requesttime"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type stores struct {
	transfers service.TransferStore
	steps     service.StepStore
	disputes  service.DisputeStore
	audit     audit.Store
	tx        service.TxRunner
	close     func() error
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer st.close()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	roles, err := roleProvider(cfg, redisClient, log)
	if err != nil {
		return err
	}

	securityMetrics := security.NewMetrics()
	denied := security.New(security.WithLogger(log), security.WithMetrics(securityMetrics))

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(transfermetrics.New()),
		service.WithTx(st.tx),
		service.WithAudit(
			compliance.New(st.audit, compliance.WithLogger(log), compliance.WithMetrics(compliance.NewMetrics())),
			st.audit,
		),
		service.WithDeniedPublisher(denied),
		service.WithReviewThreshold(cfg.Transfer.ReviewThreshold),
		service.WithGPSRadius(cfg.Transfer.GPSRadiusMeters),
	}
	kafkaClient, err := kafka.NewClient(cfg.Kafka)
	if err != nil {
		return err
	}
	if kafkaClient != nil {
		defer kafkaClient.Close()
		if err := kafka.EnsureTopic(ctx, kafkaClient, cfg.Kafka.AuditTopic, cfg.Kafka.Partitions); err != nil {
			log.WarnContext(ctx, "audit topic bootstrap failed", "log_type", "ops", "error", err)
		}
		opts = append(opts, service.WithStreamPublisher(
			stream.New(kafkaClient, cfg.Kafka.AuditTopic, stream.WithLogger(log), stream.WithMetrics(stream.NewMetrics())),
		))
	}
	svc := service.New(st.transfers, st.steps, st.disputes, roles, opts...)

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	httpMetrics := metrics.New()

	router := chi.NewRouter()
	router.Use(request.Middleware, requesttime.Middleware, httpMetrics.Middleware)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtService.Middleware(), log))
		if cfg.RateLimit.PerWindow > 0 {
			r.Use(rateLimiter(cfg.RateLimit, redisClient, log).Handler)
		}
		handler.New(svc, log).Register(r)
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	g, gctx := errgroup.WithContext(ctx)

	deniedWorker := worker.NewWorker(denied, st.audit,
		worker.WithLogger(log),
		worker.WithFailureRecorder(securityMetrics),
	)
	g.Go(func() error { return ignoreCancel(deniedWorker.Run(gctx)) })

	if cfg.Offline.OutboxPath != "" {
		outbox, err := offline.Open(ctx, cfg.Offline.OutboxPath)
		if err != nil {
			return err
		}
		defer outbox.Close()
		drainer := offline.NewDrainer(outbox, svc,
			offline.WithLogger(log),
			offline.WithMetrics(offline.NewMetrics()),
		)
		g.Go(func() error { return ignoreCancel(drainer.Run(gctx, cfg.Offline.DrainInterval)) })
	}

	g.Go(func() error {
		log.InfoContext(ctx, "starting handover", "addr", cfg.Server.Addr)
		return httpserver.Run(gctx, srv, 10*time.Second, log)
	})

	err = g.Wait()
	log.Info("handover stopped")
	return err
}

// openStores uses Postgres when a database URL is configured and in-memory
// stores otherwise.
func openStores(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*stores, error) {
	if cfg.URL == "" {
		log.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
		return &stores{
			transfers: memory.NewTransferStore(),
			steps:     memory.NewStepStore(),
			disputes:  memory.NewDisputeStore(),
			audit:     auditmemory.NewInMemoryStore(),
			tx:        memory.NewShardedTx(),
			close:     func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	auditStore := auditpg.New(db)
	if err := migrate(ctx, db, auditStore); err != nil {
		db.Close()
		return nil, err
	}
	return &stores{
		transfers: transferpg.NewTransferStore(db),
		steps:     transferpg.NewStepStore(db),
		disputes:  transferpg.NewDisputeStore(db),
		audit:     auditStore,
		tx:        transferpg.NewTx(db),
		close:     db.Close,
	}, nil
}

func migrate(ctx context.Context, db *sql.DB, auditStore *auditpg.Store) error {
	if err := transferpg.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate transfer schema: %w", err)
	}
	if err := auditStore.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate audit schema: %w", err)
	}
	return nil
}

// roleProvider serves the configured role seed, behind the Redis cache when
// Redis is configured.
func roleProvider(cfg config.Config, client *redis.Client, log *slog.Logger) (identity.Provider, error) {
	seed, err := identity.ParseAssignments(cfg.Transfer.RoleSeed)
	if err != nil {
		return nil, fmt.Errorf("HANDOVER_ROLES: %w", err)
	}
	provider := identity.NewStaticProvider(seed)
	if client == nil {
		return provider, nil
	}
	return identity.NewCachedProvider(provider, client.Client,
		identity.WithTTL(cfg.Transfer.RoleCacheTTL),
		identity.WithLogger(log),
	), nil
}

// rateLimiter shares counters through Redis when available.
func rateLimiter(cfg config.RateLimitConfig, client *redis.Client, log *slog.Logger) *ratelimit.Middleware {
	var store ratelimit.Store = ratelimit.NewInMemoryStore()
	if client != nil {
		store = ratelimit.NewRedisStore(client.Client)
	}
	return ratelimit.NewMiddleware(store, cfg.PerWindow, cfg.Window, log)
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
