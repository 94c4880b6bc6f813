package main

import (
	"context"
	"fmt"
	"log/slog"

	"renterverify/internal/platform/config"
	"renterverify/internal/platform/kafka"
	"renterverify/internal/platform/postgres"
	"renterverify/internal/platform/redis"
	"renterverify/internal/registry/models"
	"renterverify/internal/registry/service"
	"renterverify/internal/registry/store"
	"renterverify/pkg/platform/audit"
	"renterverify/pkg/platform/audit/publisher"
	kafkaaudit "renterverify/pkg/platform/audit/store/kafka"
	auditmemory "renterverify/pkg/platform/audit/store/memory"
)

const auditBufferSize = 1024

type pinger interface {
	Ping(ctx context.Context) error
}

// backends holds the backends chosen from configuration. Unset URLs fall back
// to in-process implementations.
type backends struct {
	store   service.Store
	cache   *store.RedisCache
	audit   *publisher.Publisher
	checks  map[string]pinger
	closers []func()
}

func buildBackends(ctx context.Context, cfg config.Config, admin models.Identity, log *slog.Logger) (*backends, error) {
	in := &backends{checks: map[string]pinger{}}
	fail := func(err error) (*backends, error) {
		in.Close()
		return nil, err
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return fail(err)
	}
	if db != nil {
		in.closers = append(in.closers, func() { _ = db.Close() })
		pg := store.NewPostgres(db)
		if err := pg.Migrate(ctx); err != nil {
			return fail(err)
		}
		if err := pg.EnsureAdmin(ctx, admin); err != nil {
			return fail(err)
		}
		in.store = pg
		in.checks["postgres"] = pg
		log.Info("registry ledger: postgres")
	} else {
		mem := store.NewInMemory(admin)
		in.store = mem
		in.checks["ledger"] = mem
		log.Warn("DATABASE_URL not set, registry ledger is in memory")
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fail(err)
	}
	if rdb != nil {
		in.closers = append(in.closers, func() { _ = rdb.Close() })
		in.cache = store.NewRedisCache(rdb, in.store, cfg.Registry.CacheTTL)
		in.checks["redis"] = pingFunc(rdb.Health)
		log.Info("record cache: redis", "ttl", cfg.Registry.CacheTTL)
	}

	auditStore, err := buildAuditStore(ctx, cfg.Kafka, in, log)
	if err != nil {
		return fail(err)
	}
	in.audit = publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	// Drain the audit buffer before the clients it writes to close.
	in.closers = append([]func(){in.audit.Close}, in.closers...)
	return in, nil
}

func buildAuditStore(ctx context.Context, cfg config.KafkaConfig, in *backends, log *slog.Logger) (audit.Store, error) {
	client, err := kafka.New(cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Warn("KAFKA_BROKERS not set, audit events are kept in memory")
		return auditmemory.NewInMemoryStore(), nil
	}
	in.closers = append(in.closers, client.Close)
	if err := kafka.EnsureTopic(ctx, client, cfg.AuditTopic, 3, 1); err != nil {
		return nil, err
	}
	in.checks["kafka"] = pingFunc(func(ctx context.Context) error {
		return kafka.Health(ctx, client)
	})
	log.Info("audit sink: kafka", "topic", cfg.AuditTopic)
	return kafkaaudit.New(client, cfg.AuditTopic), nil
}

// Health pings every configured backend.
func (in *backends) Health(ctx context.Context) map[string]string {
	out := make(map[string]string, len(in.checks))
	for name, p := range in.checks {
		if err := p.Ping(ctx); err != nil {
			out[name] = fmt.Sprintf("error: %v", err)
			continue
		}
		out[name] = "ok"
	}
	return out
}

func (in *backends) Close() {
	for _, closeFn := range in.closers {
		closeFn()
	}
	in.closers = nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
