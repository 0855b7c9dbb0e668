// Package cached keeps single appointments in a cache in front of the store.
package cached

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/appointment-scheduler/internal/model"
	"github.com/jwalitptl/appointment-scheduler/internal/repository"
	"github.com/jwalitptl/appointment-scheduler/pkg/cache"
	"github.com/jwalitptl/appointment-scheduler/pkg/metrics"
)

const keyPrefix = "appointment:"

type appointmentRepository struct {
	next    repository.AppointmentRepository
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics

	// mu orders cache fills against invalidations. generation changes on
	// every write so a fill that raced a write is dropped.
	mu         sync.Mutex
	generation uint64
}

// NewAppointmentRepository caches Get by id. Entries are filled on read
// misses and dropped after every write reaches the store; cache failures are
// logged and the store answers instead.
//
// Invalidation is local to the process: with a shared cache, other
// instances may serve an entry until its ttl expires.
func NewAppointmentRepository(next repository.AppointmentRepository, c cache.Cache, ttl time.Duration, m *metrics.Metrics) repository.AppointmentRepository {
	return &appointmentRepository{next: next, cache: c, ttl: ttl, metrics: m}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return r.next.Create(ctx, appointment)
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	var cached model.Appointment
	found, err := r.cache.Get(ctx, keyPrefix+id, &cached)
	if err != nil {
		log.Warn().Err(err).Str("appointment_id", id).Msg("cache lookup failed")
	}
	if found {
		r.count("hit")
		return &cached, nil
	}
	r.count("miss")

	r.mu.Lock()
	generation := r.generation
	r.mu.Unlock()

	appointment, err := r.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.fill(ctx, appointment, generation)
	return appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	err := r.next.Update(ctx, appointment)
	r.invalidate(ctx, appointment.ID)
	return err
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	err := r.next.Delete(ctx, id)
	r.invalidate(ctx, id)
	return err
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return r.next.List(ctx, filters)
}

func (r *appointmentRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

func (r *appointmentRepository) Close(ctx context.Context) error {
	if err := r.cache.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close cache")
	}
	return r.next.Close(ctx)
}

// fill caches appointment unless a write happened since generation was read
func (r *appointmentRepository) fill(ctx context.Context, appointment *model.Appointment, generation uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != generation {
		return
	}
	if err := r.cache.Set(ctx, keyPrefix+appointment.ID, appointment, r.ttl); err != nil {
		log.Warn().Err(err).Str("appointment_id", appointment.ID).Msg("cache write failed")
	}
}

func (r *appointmentRepository) invalidate(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	if err := r.cache.Delete(ctx, keyPrefix+id); err != nil {
		log.Warn().Err(err).Str("appointment_id", id).Msg("cache eviction failed")
	}
}

func (r *appointmentRepository) count(result string) {
	if r.metrics != nil {
		r.metrics.CacheRequests.WithLabelValues(result).Inc()
	}
}
