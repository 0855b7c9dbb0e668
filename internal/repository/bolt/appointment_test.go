package bolt_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/appointment-scheduler/internal/repository"
	"github.com/jwalitptl/appointment-scheduler/internal/repository/bolt"
	"github.com/jwalitptl/appointment-scheduler/internal/repository/specs"
)

func newRepository(t *testing.T) repository.AppointmentRepository {
	db, err := bolt.NewDB(filepath.Join(t.TempDir(), "appointments.db"))
	require.NoError(t, err)

	repo := bolt.NewAppointmentRepository(db)
	t.Cleanup(func() { repo.Close(context.Background()) })
	return repo
}

func TestAppointmentRepository(t *testing.T) {
	specs.AppointmentRepositorySpec{Subject: newRepository}.Test(t)
}

func TestPing(t *testing.T) {
	require.NoError(t, newRepository(t).Ping(context.Background()))
}
