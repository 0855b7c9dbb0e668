// Package specs holds behavioural specs every AppointmentRepository
// implementation must satisfy.
package specs

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/appointment-scheduler/internal/model"
	"github.com/jwalitptl/appointment-scheduler/internal/repository"
	"github.com/jwalitptl/appointment-scheduler/pkg/errors"
)

// AppointmentRepositorySpec runs the CRUD and filter specs against a fresh,
// empty repository returned by Subject.
type AppointmentRepositorySpec struct {
	Subject func(t *testing.T) repository.AppointmentRepository
}

func (spec AppointmentRepositorySpec) Test(t *testing.T) {
	t.Run(`CREATE`, spec.testCreate)
	t.Run(`READ`, spec.testRead)
	t.Run(`UPDATE`, spec.testUpdate)
	t.Run(`DELETE`, spec.testDelete)
	t.Run(`LIST`, spec.testList)
}

// NewAppointment returns a random, valid, unsaved appointment
func NewAppointment() *model.Appointment {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.Appointment{
		ID:              uuid.NewString(),
		PatientName:     randomdata.FullName(randomdata.RandomGender),
		PatientEmail:    randomdata.Email(),
		PatientPhone:    fmt.Sprintf("555-%04d", randomdata.Number(0, 9999)),
		DoctorName:      "Dr. " + randomdata.SillyName(),
		AppointmentDate: model.NewDate(2024, time.Month(randomdata.Number(1, 13)), randomdata.Number(1, 29)),
		AppointmentTime: fmt.Sprintf("%02d:%02d", randomdata.Number(8, 18), randomdata.Number(0, 60)),
		Reason:          randomdata.Paragraph(),
		Status:          model.AppointmentStatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// AssertSameAppointment compares two appointments by their wire form
func AssertSameAppointment(t *testing.T, expected, actual *model.Appointment) {
	t.Helper()

	want, err := json.Marshal(expected)
	require.NoError(t, err)
	got, err := json.Marshal(actual)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func (spec AppointmentRepositorySpec) testCreate(t *testing.T) {
	ctx := context.Background()
	repo := spec.Subject(t)

	apt := NewAppointment()
	apt.Notes = "bring previous lab results"
	require.NoError(t, repo.Create(ctx, apt))

	stored, err := repo.Get(ctx, apt.ID)
	require.NoError(t, err)
	AssertSameAppointment(t, apt, stored)
}

func (spec AppointmentRepositorySpec) testRead(t *testing.T) {
	ctx := context.Background()
	repo := spec.Subject(t)

	_, err := repo.Get(ctx, uuid.NewString())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	_, err = repo.Get(ctx, "not-an-id")
	assert.True(t, errors.IsNotFound(err))
}

func (spec AppointmentRepositorySpec) testUpdate(t *testing.T) {
	ctx := context.Background()
	repo := spec.Subject(t)

	apt := NewAppointment()
	require.NoError(t, repo.Create(ctx, apt))

	apt.Status = model.AppointmentStatusCompleted
	apt.Notes = "seen"
	apt.UpdatedAt = apt.UpdatedAt.Add(time.Minute)
	require.NoError(t, repo.Update(ctx, apt))

	stored, err := repo.Get(ctx, apt.ID)
	require.NoError(t, err)
	AssertSameAppointment(t, apt, stored)

	missing := NewAppointment()
	err = repo.Update(ctx, missing)
	assert.True(t, errors.IsNotFound(err))

	_, err = repo.Get(ctx, missing.ID)
	assert.True(t, errors.IsNotFound(err), "update must not create")
}

func (spec AppointmentRepositorySpec) testDelete(t *testing.T) {
	ctx := context.Background()
	repo := spec.Subject(t)

	apt := NewAppointment()
	require.NoError(t, repo.Create(ctx, apt))

	require.NoError(t, repo.Delete(ctx, apt.ID))
	assert.True(t, errors.IsNotFound(repo.Delete(ctx, apt.ID)))

	_, err := repo.Get(ctx, apt.ID)
	assert.True(t, errors.IsNotFound(err))
}

func (spec AppointmentRepositorySpec) testList(t *testing.T) {
	ctx := context.Background()
	repo := spec.Subject(t)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)

	day := model.NewDate(2024, time.May, 1)
	statuses := []model.AppointmentStatus{
		model.AppointmentStatusScheduled,
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusNoShow,
		model.AppointmentStatusScheduled,
		model.AppointmentStatusCancelled,
	}
	doctors := []string{"Dr. Lee", "Dr. Bruce LEE", "Dr. Smith", "Dr. Lee", "Dr. Patel", "Dr. 50%_Off"}

	seeded := make([]*model.Appointment, 0, len(statuses))
	for i, status := range statuses {
		apt := NewAppointment()
		apt.Status = status
		apt.DoctorName = doctors[i]
		apt.AppointmentDate = model.Date{Time: day.AddDate(0, 0, i%2)}
		apt.AppointmentTime = fmt.Sprintf("%02d:00", 17-i)
		require.NoError(t, repo.Create(ctx, apt))
		seeded = append(seeded, apt)
	}

	all, err = repo.List(ctx, &model.AppointmentFilters{})
	require.NoError(t, err)
	require.Len(t, all, len(seeded))
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Less(all[i-1]), "results must be ordered by date and time")
	}

	for _, status := range model.AppointmentStatuses {
		got, err := repo.List(ctx, &model.AppointmentFilters{Status: status})
		require.NoError(t, err)
		assert.ElementsMatch(t, idsOf(filter(seeded, &model.AppointmentFilters{Status: status})), idsOf(got), status)
	}

	got, err := repo.List(ctx, &model.AppointmentFilters{DoctorName: "lee"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{seeded[0].ID, seeded[1].ID, seeded[3].ID}, idsOf(got))

	got, err = repo.List(ctx, &model.AppointmentFilters{DoctorName: "50%_"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{seeded[5].ID}, idsOf(got))

	got, err = repo.List(ctx, &model.AppointmentFilters{DoctorName: "Lee", Date: &day})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{seeded[0].ID}, idsOf(got))
}

func filter(apts []*model.Appointment, filters *model.AppointmentFilters) []*model.Appointment {
	var out []*model.Appointment
	for _, apt := range apts {
		if filters.Matches(apt) {
			out = append(out, apt)
		}
	}
	return out
}

func idsOf(apts []*model.Appointment) []string {
	ids := make([]string, 0, len(apts))
	for _, apt := range apts {
		ids = append(ids, apt.ID)
	}
	return ids
}
