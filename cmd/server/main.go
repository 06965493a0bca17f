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
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	jwttoken "malpot/internal/jwt_token"
	landhandler "malpot/internal/land/handler"
	landservice "malpot/internal/land/service"
	landstore "malpot/internal/land/store"
	"malpot/internal/platform/config"
	"malpot/internal/platform/httpserver"
	"malpot/internal/platform/logger"
	"malpot/internal/platform/metrics"
	"malpot/internal/platform/postgres"
	platformredis "malpot/internal/platform/redis"
	transferhandler "malpot/internal/transfer/handler"
	transfermetrics "malpot/internal/transfer/metrics"
	transferservice "malpot/internal/transfer/service"
	transferstore "malpot/internal/transfer/store"
	"malpot/internal/users/cache"
	userstore "malpot/internal/users/store"
	"malpot/pkg/platform/audit"
	"malpot/pkg/platform/audit/outbox"
	"malpot/pkg/platform/audit/publishers/compliance"
	auditmemory "malpot/pkg/platform/audit/store/memory"
	auditpostgres "malpot/pkg/platform/audit/store/postgres"
	"malpot/pkg/platform/retry"
	"malpot/pkg/platform/tx"
)

const (
	shutdownTimeout = 10 * time.Second
	requestTimeout  = 30 * time.Second
)

// main wires dependencies and runs the HTTP server and, with PostgreSQL and
// Kafka configured, the audit outbox relay. Business logic lives in the
// internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

type stores struct {
	lands interface {
		landservice.Store
		transferservice.LandStore
	}
	transfers transferservice.TransferStore
	users     cache.Store
	audit     audit.Store
	runner    tx.Runner
	db        *sql.DB
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := metrics.NewRegistry()
	httpMetrics := metrics.New(reg)

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var cacheClient goredis.Cmdable
	if redisClient != nil {
		defer redisClient.Close()
		cacheClient = redisClient.Client
		log.Info("reviewer cache enabled", "ttl", cfg.Redis.ReviewerCacheTTL)
	}
	reviewers := cache.NewDirectory(st.users, cacheClient, cfg.Redis.ReviewerCacheTTL, log)

	publisher := compliance.New(st.audit,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics(reg)),
	)
	readRetry := retry.DefaultPolicy().WithMaxRetries(cfg.Transfer.ReadRetries)

	lands := landservice.New(st.lands, st.runner,
		landservice.WithLogger(log),
		landservice.WithAuditPublisher(publisher),
		landservice.WithMetrics(httpMetrics),
		landservice.WithRetryPolicy(readRetry),
	)
	transfers := transferservice.New(st.lands, st.transfers, st.runner,
		transferservice.WithLogger(log),
		transferservice.WithAuditPublisher(publisher),
		transferservice.WithMetrics(transfermetrics.New(reg)),
		transferservice.WithRetryPolicy(readRetry),
		transferservice.WithReviewerDirectory(reviewers),
		transferservice.WithRejectPolicy(transferservice.RejectPolicy(cfg.Transfer.RejectPolicy)),
	)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer)
	router := newRouter(routerDeps{
		log:       log,
		registry:  reg,
		metrics:   httpMetrics,
		validator: jwttoken.NewJWTServiceAdapter(jwtService),
		health:    healthCheck(st.db, redisClient),
		handlers: []interface{ Register(chi.Router) }{
			landhandler.New(lands, log),
			transferhandler.New(transfers, log),
		},
	})
	srv := httpserver.New(cfg.Addr, router)

	var relay *outbox.Relay
	if st.db != nil && len(cfg.Kafka.Brokers) > 0 {
		var closeKafka func()
		relay, closeKafka, err = newRelay(ctx, cfg, st.db, reg, log)
		if err != nil {
			return err
		}
		defer closeKafka()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting malpot", "addr", cfg.Addr, "environment", cfg.Environment,
			"reject_policy", cfg.Transfer.RejectPolicy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if relay != nil {
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}

	return g.Wait()
}

// openStores selects PostgreSQL when DATABASE_URL is set and in-memory
// stores otherwise.
func openStores(ctx context.Context, cfg config.Server, log *slog.Logger) (*stores, error) {
	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		return &stores{
			lands:     landstore.NewInMemory(),
			transfers: transferstore.NewInMemory(),
			users:     userstore.NewInMemory(),
			audit:     auditmemory.NewInMemoryStore(),
			runner:    tx.NewMemory(tx.WithMemoryTimeout(cfg.Transfer.TxTimeout)),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("connected to postgres", "max_open_conns", cfg.Database.MaxOpenConns)
	return &stores{
		lands:     landstore.NewPostgres(db),
		transfers: transferstore.NewPostgres(db),
		users:     userstore.NewPostgres(db),
		audit:     auditpostgres.New(db),
		runner:    tx.NewSQL(db, tx.WithTimeout(cfg.Transfer.TxTimeout)),
		db:        db,
	}, nil
}

func newRelay(ctx context.Context, cfg config.Server, db *sql.DB, reg prometheus.Registerer, log *slog.Logger) (*outbox.Relay, func(), error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Kafka.Brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka client: %w", err)
	}
	if err := outbox.EnsureTopic(ctx, kadm.NewClient(client), cfg.Kafka.AuditTopic, 3, 1); err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info("audit outbox relay enabled", "topic", cfg.Kafka.AuditTopic, "brokers", cfg.Kafka.Brokers)

	relay := outbox.New(db, client, cfg.Kafka.AuditTopic,
		outbox.WithInterval(cfg.Kafka.PollInterval),
		outbox.WithLogger(log),
		outbox.WithMetrics(outbox.NewMetrics(reg)),
	)
	return relay, client.Close, nil
}

func healthCheck(db *sql.DB, redisClient *platformredis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
}
