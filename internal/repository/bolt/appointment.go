// Package bolt stores appointments as JSON documents in a single-file
// boltdb database.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/boltdb/bolt"

	"github.com/jwalitptl/appointment-scheduler/internal/model"
	"github.com/jwalitptl/appointment-scheduler/internal/repository"
	apperrors "github.com/jwalitptl/appointment-scheduler/pkg/errors"
)

var bucketName = []byte("appointments")

type appointmentRepository struct {
	db *bolt.DB
}

// NewDB opens (or creates) the database file at path
func NewDB(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return db, nil
}

func NewAppointmentRepository(db *bolt.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	value, err := json.Marshal(appointment)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to encode appointment: %w", err))
	}

	err = r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(appointment.ID), value)
	})
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to create appointment: %w", err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	var appointment *model.Appointment

	err := r.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(bucketName).Get([]byte(id))
		if value == nil {
			return nil
		}
		appointment = &model.Appointment{}
		return json.Unmarshal(value, appointment)
	})
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to get appointment: %w", err))
	}
	if appointment == nil {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	value, err := json.Marshal(appointment)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to encode appointment: %w", err))
	}

	return r.mutate(appointment.ID, func(bucket *bolt.Bucket, key []byte) error {
		return bucket.Put(key, value)
	})
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	return r.mutate(id, func(bucket *bolt.Bucket, key []byte) error {
		return bucket.Delete(key)
	})
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments := make([]*model.Appointment, 0)

	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(key, value []byte) error {
			var apt model.Appointment
			if err := json.Unmarshal(value, &apt); err != nil {
				return fmt.Errorf("failed to decode appointment %s: %w", key, err)
			}
			if filters.Matches(&apt) {
				appointments = append(appointments, &apt)
			}
			return nil
		})
	})
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list appointments: %w", err))
	}

	sort.SliceStable(appointments, func(i, j int) bool {
		return appointments[i].Less(appointments[j])
	})
	return appointments, nil
}

func (r *appointmentRepository) Ping(ctx context.Context) error {
	return r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketName) == nil {
			return fmt.Errorf("bucket %s is missing", bucketName)
		}
		return nil
	})
}

func (r *appointmentRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

// mutate runs fn on an existing key and reports not found otherwise
func (r *appointmentRepository) mutate(id string, fn func(bucket *bolt.Bucket, key []byte) error) error {
	found := false
	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		key := []byte(id)
		if bucket.Get(key) == nil {
			return nil
		}
		found = true
		return fn(bucket, key)
	})
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to write appointment: %w", err))
	}
	if !found {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}
