// Package app connects the configured backends and assembles the services.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"eventhub/internal/api"
	"eventhub/internal/auth"
	"eventhub/internal/cache"
	"eventhub/internal/clock"
	"eventhub/internal/config"
	"eventhub/internal/database"
	"eventhub/internal/messaging"
	"eventhub/internal/repository"
	"eventhub/internal/repository/memstore"
	"eventhub/internal/search"
	"eventhub/internal/service"
)

type App struct {
	Services *service.Services
	Tokens   *auth.TokenIssuer
	Search   *search.ElasticsearchClient
	Checks   map[string]api.HealthCheck
	closers  []io.Closer
}

// Build connects every enabled backend. On error, whatever was already
// connected is closed.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Checks: make(map[string]api.HealthCheck)}
	if err := a.build(ctx, cfg); err != nil {
		if cerr := a.Close(); cerr != nil {
			slog.Error("Failed to release backends", "error", cerr)
		}
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, cfg *config.Config) error {
	stores, err := a.connectStorage(ctx, cfg)
	if err != nil {
		return err
	}

	publisher, err := a.connectMessaging(cfg)
	if err != nil {
		return err
	}

	var statsCache service.StatsCache
	if cfg.Redis.Enabled() {
		vc, err := cache.NewValkeyClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, vc)
		a.Checks["cache"] = vc.Ping
		statsCache = vc
	}

	if cfg.Elasticsearch.Enabled() {
		es, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch)
		if err != nil {
			return err
		}
		a.Search = es
		a.Checks["search"] = es.HealthCheck
	}

	clk := clock.NewSystem()
	a.Tokens = auth.NewTokenIssuer(cfg.JWT, clk)
	a.Services = service.NewServices(service.Deps{
		Stores:    stores,
		Clock:     clk,
		Publisher: publisher,
		Cache:     statsCache,
		Hasher:    auth.NewPasswordHasher(cfg.BcryptCost),
		Tokens:    a.Tokens,
	})
	return nil
}

func (a *App) connectStorage(ctx context.Context, cfg *config.Config) (service.Stores, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		slog.Warn("Using in-memory storage, data is lost on restart")
		repos := memstore.New()
		return service.Stores{Users: repos.Users, Venues: repos.Venues, Events: repos.Events, Tickets: repos.Tickets}, nil

	case config.StorageDriverPostgres:
		db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return service.Stores{}, err
		}
		a.closers = append(a.closers, db)
		if err := db.RunMigrations(ctx); err != nil {
			return service.Stores{}, fmt.Errorf("run migrations: %w", err)
		}
		a.Checks["database"] = func(ctx context.Context) error {
			if hc := db.HealthCheck(ctx); hc.Status != "healthy" {
				return errors.New(hc.Error)
			}
			db.WarnOnPoolPressure()
			return nil
		}
		repos := repository.NewRepositories(db)
		return service.Stores{Users: repos.Users, Venues: repos.Venues, Events: repos.Events, Tickets: repos.Tickets}, nil

	default:
		return service.Stores{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func (a *App) connectMessaging(cfg *config.Config) (service.Publisher, error) {
	switch cfg.MessagingDriver {
	case config.MessagingDriverNATS:
		nc, err := messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, nc)
		return nc, nil

	case config.MessagingDriverRabbitMQ:
		rp, err := messaging.NewRabbitPublisher(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rp)
		return rp, nil

	default:
		return messaging.Noop{}, nil
	}
}

// Dependencies returns what the HTTP server needs.
func (a *App) Dependencies() api.Dependencies {
	deps := api.Dependencies{
		Services: a.Services,
		Tokens:   a.Tokens,
		Checks:   a.Checks,
		Closers:  []io.Closer{a},
	}
	if a.Search != nil {
		deps.Search = a.Search
	}
	return deps
}

// Close releases backends in reverse order of connection.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
