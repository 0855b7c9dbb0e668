package repository

import (
	"context"
	"time"

	"github.com/jwalitptl/appointment-scheduler/internal/model"
	"github.com/jwalitptl/appointment-scheduler/pkg/errors"
	"github.com/jwalitptl/appointment-scheduler/pkg/metrics"
)

type instrumentedRepository struct {
	next    AppointmentRepository
	metrics *metrics.Metrics
}

// WithMetrics records the outcome and latency of every store operation
func WithMetrics(next AppointmentRepository, m *metrics.Metrics) AppointmentRepository {
	return &instrumentedRepository{next: next, metrics: m}
}

func (r *instrumentedRepository) observe(operation string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.IsNotFound(err):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	r.metrics.DatabaseOperations.WithLabelValues(operation, status).Inc()
	r.metrics.DatabaseLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (r *instrumentedRepository) Create(ctx context.Context, appointment *model.Appointment) (err error) {
	defer func(start time.Time) { r.observe("create", start, err) }(time.Now())
	return r.next.Create(ctx, appointment)
}

func (r *instrumentedRepository) Get(ctx context.Context, id string) (apt *model.Appointment, err error) {
	defer func(start time.Time) { r.observe("get", start, err) }(time.Now())
	return r.next.Get(ctx, id)
}

func (r *instrumentedRepository) Update(ctx context.Context, appointment *model.Appointment) (err error) {
	defer func(start time.Time) { r.observe("update", start, err) }(time.Now())
	return r.next.Update(ctx, appointment)
}

func (r *instrumentedRepository) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { r.observe("delete", start, err) }(time.Now())
	return r.next.Delete(ctx, id)
}

func (r *instrumentedRepository) List(ctx context.Context, filters *model.AppointmentFilters) (apts []*model.Appointment, err error) {
	defer func(start time.Time) { r.observe("list", start, err) }(time.Now())
	return r.next.List(ctx, filters)
}

func (r *instrumentedRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

func (r *instrumentedRepository) Close(ctx context.Context) error {
	return r.next.Close(ctx)
}
