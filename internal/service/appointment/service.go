package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/appointment-scheduler/internal/model"
	"github.com/jwalitptl/appointment-scheduler/internal/repository"
)

type Service struct {
	repo repository.AppointmentRepository
	now  func() time.Time
}

func NewService(repo repository.AppointmentRepository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// timestamp returns the current time at the precision every store keeps
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	apt, fieldErrs := req.ToAppointment()
	if err := apt.Validate(fieldErrs...); err != nil {
		return nil, err
	}

	now := s.timestamp()
	apt.ID = uuid.NewString()
	apt.CreatedAt = now
	apt.UpdatedAt = now

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	log.Ctx(ctx).Info().Str("appointment_id", apt.ID).Msg("appointment created")
	return apt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// UpdateAppointment replaces the supplied fields of an existing appointment.
// Concurrent updates are not detected; the last write wins.
func (s *Service) UpdateAppointment(ctx context.Context, id string, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	fieldErrs := req.ApplyTo(apt)
	if err := apt.Validate(fieldErrs...); err != nil {
		return nil, err
	}

	apt.ID = id
	apt.UpdatedAt = s.timestamp()
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	log.Ctx(ctx).Info().Str("appointment_id", apt.ID).Msg("appointment updated")
	return apt, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	log.Ctx(ctx).Info().Str("appointment_id", id).Msg("appointment deleted")
	return nil
}
