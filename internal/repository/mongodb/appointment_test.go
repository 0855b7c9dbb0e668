package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jwalitptl/appointment-scheduler/internal/model"
	"github.com/jwalitptl/appointment-scheduler/internal/repository"
	"github.com/jwalitptl/appointment-scheduler/internal/repository/specs"
)

func TestBuildFilter(t *testing.T) {
	day := model.NewDate(2024, time.May, 1)

	assert.Equal(t, bson.M{}, buildFilter(nil))
	assert.Equal(t, bson.M{
		"status":          "cancelled",
		"doctorName":      primitive.Regex{Pattern: `Dr\. Lee`, Options: "i"},
		"appointmentDate": day.Time,
	}, buildFilter(&model.AppointmentFilters{
		Status:     model.AppointmentStatusCancelled,
		DoctorName: "Dr. Lee",
		Date:       &day,
	}))
}

// TestAppointmentRepository runs against a live server when TEST_MONGODB_URI is set.
func TestAppointmentRepository(t *testing.T) {
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	n := 0
	specs.AppointmentRepositorySpec{
		Subject: func(t *testing.T) repository.AppointmentRepository {
			n++
			db := client.Database(fmt.Sprintf("appointments_test_%d_%d", time.Now().UnixNano(), n))
			require.NoError(t, EnsureIndexes(context.Background(), db))
			t.Cleanup(func() { db.Drop(context.Background()) })
			return &appointmentRepository{coll: db.Collection(collectionName)}
		},
	}.Test(t)
}
