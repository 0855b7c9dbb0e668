package repository

import (
	"context"

	"github.com/jwalitptl/appointment-scheduler/internal/model"
)

type (
	// AppointmentRepository persists appointment documents. Get, Update and
	// Delete return an errors.ErrNotFound AppError for unknown ids.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id string) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id string) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		Ping(ctx context.Context) error
		Close(ctx context.Context) error
	}
)
