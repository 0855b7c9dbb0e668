package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jwalitptl/appointment-scheduler/internal/model"
	"github.com/jwalitptl/appointment-scheduler/internal/repository"
	apperrors "github.com/jwalitptl/appointment-scheduler/pkg/errors"
)

const collectionName = "appointments"

type appointmentRepository struct {
	coll *mongo.Collection
}

func NewAppointmentRepository(db *mongo.Database) repository.AppointmentRepository {
	return &appointmentRepository{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the indexes used by the list filters
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "appointmentDate", Value: 1}, {Key: "appointmentTime", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if _, err := r.coll.InsertOne(ctx, appointment); err != nil {
		return apperrors.Internal(fmt.Errorf("failed to create appointment: %w", err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	var appointment model.Appointment
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&appointment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get appointment: %w", err))
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": appointment.ID}, appointment)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to update appointment: %w", err))
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to delete appointment: %w", err))
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "appointmentDate", Value: 1},
		{Key: "appointmentTime", Value: 1},
		{Key: "createdAt", Value: 1},
	})

	cursor, err := r.coll.Find(ctx, buildFilter(filters), opts)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list appointments: %w", err))
	}
	defer cursor.Close(ctx)

	appointments := make([]*model.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to decode appointments: %w", err))
	}
	return appointments, nil
}

func (r *appointmentRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func (r *appointmentRepository) Close(ctx context.Context) error {
	return r.coll.Database().Client().Disconnect(ctx)
}

func buildFilter(filters *model.AppointmentFilters) bson.M {
	query := bson.M{}
	if filters == nil {
		return query
	}

	if filters.Status != "" {
		query["status"] = string(filters.Status)
	}
	if filters.DoctorName != "" {
		query["doctorName"] = primitive.Regex{
			Pattern: regexp.QuoteMeta(filters.DoctorName),
			Options: "i",
		}
	}
	if filters.Date != nil {
		query["appointmentDate"] = filters.Date.Time
	}
	return query
}
