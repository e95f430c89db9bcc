package consumers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"eventhub/internal/cache"
	"eventhub/internal/config"
	"eventhub/internal/database"
	"eventhub/internal/messaging"
	"eventhub/internal/models"
	"eventhub/internal/repository"
	"eventhub/internal/search"

	"github.com/nats-io/stan.go"
)

const queueGroup = "eventhub-consumers"

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	cache    *cache.ValkeyClient
	handlers *Handlers
	subs     []stan.Subscription
}

// NewConsumerService connects to Postgres, NATS Streaming and the optional
// Valkey and Elasticsearch backends.
func NewConsumerService(ctx context.Context, cfg *config.Config) (*ConsumerService, error) {
	if cfg.StorageDriver != config.StorageDriverPostgres {
		return nil, fmt.Errorf("consumers need STORAGE_DRIVER=%s, got %q", config.StorageDriverPostgres, cfg.StorageDriver)
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	cs := &ConsumerService{db: db, nats: natsClient}
	repos := repository.NewRepositories(db)

	var indexer Indexer
	if cfg.Elasticsearch.Enabled() {
		es, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch)
		if err != nil {
			cs.close()
			return nil, err
		}
		indexer = es
	}

	var invalidator Invalidator
	if cfg.Redis.Enabled() {
		vc, err := cache.NewValkeyClient(ctx, cfg.Redis)
		if err != nil {
			cs.close()
			return nil, err
		}
		cs.cache = vc
		invalidator = vc
	}

	cs.handlers = NewHandlers(repos.Events, repos.Venues, indexer, invalidator)
	return cs, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	routes := []struct {
		subject string
		handle  func(ctx context.Context, data []byte) error
	}{
		{models.SubjectEventCreated, cs.handlers.EventChanged},
		{models.SubjectEventUpdated, cs.handlers.EventChanged},
		{models.SubjectEventDeleted, cs.handlers.EventDeleted},
		{models.SubjectTicketPurchased, cs.handlers.TicketPurchased},
	}

	for _, r := range routes {
		sub, err := cs.nats.SubscribeQueue(r.subject, queueGroup, ackOnSuccess(r.subject, r.handle))
		if err != nil {
			return err
		}
		cs.subs = append(cs.subs, sub)
	}

	slog.Info("All consumers started successfully", "subscriptions", len(cs.subs))
	return nil
}

// Shutdown closes subscriptions without unsubscribing so durable queues
// resume where they stopped.
func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	for _, sub := range cs.subs {
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}

	done := make(chan error, 1)
	go func() { done <- cs.close() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (cs *ConsumerService) close() error {
	var errs []error
	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
			errs = append(errs, err)
		}
	}
	if cs.cache != nil {
		if err := cs.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
