package main

import (
	"context"
	"fmt"
	"log/slog"

	"consentd/internal/consent/service"
	memorystore "consentd/internal/consent/store/memory"
	pgstore "consentd/internal/consent/store/postgres"
	redisstore "consentd/internal/consent/store/redis"
	"consentd/internal/platform/config"
	"consentd/internal/platform/kafka"
	"consentd/internal/platform/logger"
	"consentd/internal/platform/postgres"
	redisplatform "consentd/internal/platform/redis"
	"consentd/pkg/platform/audit"
	"consentd/pkg/platform/audit/publisher"
	kafkastore "consentd/pkg/platform/audit/store/kafka"
	"consentd/pkg/platform/audit/store/logstore"
	auditmemory "consentd/pkg/platform/audit/store/memory"
)

// loadConfig reads and validates the environment and builds the logger.
func loadConfig() (config.Server, *slog.Logger, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Server{}, nil, err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	return cfg, log, nil
}

// openMemoryStore connects the configured consent memory backend. The
// returned close func is never nil.
func openMemoryStore(ctx context.Context, cfg config.Server, log *slog.Logger) (service.MemoryStore, func(), error) {
	switch cfg.Memory.Backend {
	case "redis":
		client, err := redisplatform.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("consent memory backend", "backend", "redis")
		return redisstore.New(client.Client), func() { _ = client.Close() }, nil
	case "postgres":
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info("consent memory backend", "backend", "postgres")
		return pgstore.New(db), func() { _ = db.Close() }, nil
	default:
		log.Info("consent memory backend", "backend", "memory")
		return memorystore.New(cfg.Memory.SweepInterval), func() {}, nil
	}
}

// openAuditPublisher builds the audit sink. Kafka publishing is buffered so
// a slow broker never holds up a consent redirect.
func openAuditPublisher(ctx context.Context, cfg config.Server, log *slog.Logger) (*publisher.Publisher, func(), error) {
	switch cfg.Audit.Backend {
	case "kafka":
	case "memory":
		log.Warn("audit backend keeps every event in process memory; use it for local runs only", "backend", "memory")
		pub := publisher.NewPublisher(auditmemory.NewInMemoryStore(), publisher.WithLogger(log))
		return pub, pub.Close, nil
	default:
		pub := publisher.NewPublisher(logstore.New(log), publisher.WithLogger(log))
		log.Info("audit backend", "backend", "log")
		return pub, pub.Close, nil
	}

	client, err := kafka.New(ctx, cfg.Audit)
	if err != nil {
		return nil, nil, err
	}
	if err := kafkastore.EnsureTopic(ctx, client, cfg.Audit.Topic, -1, -1); err != nil {
		client.Close()
		return nil, nil, err
	}
	var store audit.Store = kafkastore.New(client, cfg.Audit.Topic)
	pub := publisher.NewPublisher(store,
		publisher.WithAsyncBuffer(cfg.Audit.BufferSize),
		publisher.WithLogger(log),
	)
	log.Info("audit backend", "backend", "kafka", "topic", cfg.Audit.Topic)
	return pub, func() {
		pub.Close()
		client.Close()
	}, nil
}
