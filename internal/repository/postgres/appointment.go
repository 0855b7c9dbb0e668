package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/appointment-scheduler/internal/model"
	"github.com/jwalitptl/appointment-scheduler/internal/repository"
	apperrors "github.com/jwalitptl/appointment-scheduler/pkg/errors"
)

// appointmentRepository keeps each appointment as a JSONB document
type appointmentRepository struct {
	db *sqlx.DB
}

type appointmentRow struct {
	ID  string `db:"id"`
	Doc []byte `db:"doc"`
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	doc, err := json.Marshal(appointment)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to encode appointment: %w", err))
	}

	query := `
		INSERT INTO appointments (id, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = r.db.ExecContext(ctx, query,
		appointment.ID,
		doc,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to create appointment: %w", err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	query := `
		SELECT id, doc
		FROM appointments
		WHERE id = $1
	`
	var row appointmentRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get appointment: %w", err))
	}
	return decode(row)
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	doc, err := json.Marshal(appointment)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to encode appointment: %w", err))
	}

	query := `
		UPDATE appointments
		SET doc = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, doc, appointment.UpdatedAt, appointment.ID)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to update appointment: %w", err))
	}

	return checkAffected(result)
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM appointments
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to delete appointment: %w", err))
	}

	return checkAffected(result)
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, doc
		FROM appointments
		WHERE TRUE
	`
	var args []interface{}
	argCount := 1

	if filters != nil {
		if filters.Status != "" {
			query += fmt.Sprintf(" AND doc->>'status' = $%d", argCount)
			args = append(args, string(filters.Status))
			argCount++
		}

		if filters.DoctorName != "" {
			query += fmt.Sprintf(" AND doc->>'doctorName' ILIKE $%d", argCount)
			args = append(args, "%"+escapeLike(filters.DoctorName)+"%")
			argCount++
		}

		if filters.Date != nil {
			query += fmt.Sprintf(" AND doc->>'appointmentDate' = $%d", argCount)
			args = append(args, filters.Date.String())
			argCount++
		}
	}

	query += " ORDER BY doc->>'appointmentDate' ASC, doc->>'appointmentTime' ASC, created_at ASC"

	var rows []appointmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list appointments: %w", err))
	}

	appointments := make([]*model.Appointment, 0, len(rows))
	for _, row := range rows {
		apt, err := decode(row)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, apt)
	}
	return appointments, nil
}

func (r *appointmentRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *appointmentRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func decode(row appointmentRow) (*model.Appointment, error) {
	var apt model.Appointment
	if err := json.Unmarshal(row.Doc, &apt); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to decode appointment %s: %w", row.ID, err))
	}
	apt.ID = row.ID
	return &apt, nil
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
