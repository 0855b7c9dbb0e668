package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/appointment-scheduler/internal/config"
	"github.com/jwalitptl/appointment-scheduler/internal/repository"
	"github.com/jwalitptl/appointment-scheduler/internal/repository/bolt"
	"github.com/jwalitptl/appointment-scheduler/internal/repository/cached"
	"github.com/jwalitptl/appointment-scheduler/internal/repository/mongodb"
	"github.com/jwalitptl/appointment-scheduler/internal/repository/postgres"
	"github.com/jwalitptl/appointment-scheduler/pkg/cache"
	"github.com/jwalitptl/appointment-scheduler/pkg/metrics"
)

// openRepository connects the configured store and wraps it with metrics
// and, unless disabled, a read-through cache for single appointments.
func openRepository(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (repository.AppointmentRepository, error) {
	var repo repository.AppointmentRepository

	switch cfg.Database.Driver {
	case config.DriverMongo:
		db, err := mongodb.Open(ctx, cfg.Database.MongoURI)
		if err != nil {
			return nil, err
		}
		repo = mongodb.NewAppointmentRepository(db)
	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		repo = postgres.NewAppointmentRepository(db)
	case config.DriverBolt:
		db, err := bolt.NewDB(cfg.Database.BoltPath)
		if err != nil {
			return nil, err
		}
		repo = bolt.NewAppointmentRepository(db)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	repo = repository.WithMetrics(repo, m)

	var c cache.Cache
	switch cfg.Cache.Driver {
	case config.CacheMemory:
		c = cache.NewMemory(cfg.Cache.TTL, 2*cfg.Cache.TTL)
	case config.CacheRedis:
		rc, err := cache.NewRedis(ctx, cache.RedisConfig{
			URL:    cfg.Cache.RedisURL,
			Prefix: "appointment-scheduler:",
		})
		if err != nil {
			// fall back to the uncached store
			log.Warn().Err(err).Msg("redis unavailable, continuing without cache")
			return repo, nil
		}
		c = rc
	default:
		return repo, nil
	}

	return cached.NewAppointmentRepository(repo, c, cfg.Cache.TTL, m), nil
}
