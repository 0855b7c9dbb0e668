package model

import (
	"reflect"
	"strings"
	"time"

	"github.com/jwalitptl/appointment-scheduler/pkg/errors"
	"github.com/jwalitptl/appointment-scheduler/pkg/validator"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no-show"
)

// AppointmentStatuses lists every accepted status in display order
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
	AppointmentStatusNoShow,
}

func (s AppointmentStatus) Valid() bool {
	for _, status := range AppointmentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID              string            `json:"id" bson:"_id" db:"id"`
	PatientName     string            `json:"patientName" bson:"patientName" validate:"required"`
	PatientEmail    string            `json:"patientEmail" bson:"patientEmail" validate:"required"`
	PatientPhone    string            `json:"patientPhone" bson:"patientPhone" validate:"required"`
	DoctorName      string            `json:"doctorName" bson:"doctorName" validate:"required"`
	AppointmentDate Date              `json:"appointmentDate" bson:"appointmentDate" validate:"required"`
	AppointmentTime string            `json:"appointmentTime" bson:"appointmentTime" validate:"required"`
	Reason          string            `json:"reason" bson:"reason" validate:"required"`
	Status          AppointmentStatus `json:"status" bson:"status" validate:"required,oneof=scheduled completed cancelled no-show"`
	Notes           string            `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt       time.Time         `json:"createdAt" bson:"createdAt" db:"created_at"`
	UpdatedAt       time.Time         `json:"updatedAt" bson:"updatedAt" db:"updated_at"`
}

type CreateAppointmentRequest struct {
	PatientName     string `json:"patientName"`
	PatientEmail    string `json:"patientEmail"`
	PatientPhone    string `json:"patientPhone"`
	DoctorName      string `json:"doctorName"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Reason          string `json:"reason"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
}

// UpdateAppointmentRequest replaces only the fields that are present in the body
type UpdateAppointmentRequest struct {
	PatientName     *string `json:"patientName"`
	PatientEmail    *string `json:"patientEmail"`
	PatientPhone    *string `json:"patientPhone"`
	DoctorName      *string `json:"doctorName"`
	AppointmentDate *string `json:"appointmentDate"`
	AppointmentTime *string `json:"appointmentTime"`
	Reason          *string `json:"reason"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

// AppointmentFilters narrows a listing. Zero values match everything.
type AppointmentFilters struct {
	Status     AppointmentStatus
	DoctorName string
	Date       *Date
}

// ListAppointmentsQuery is the raw query string of a listing request
type ListAppointmentsQuery struct {
	Status     string `form:"status"`
	DoctorName string `form:"doctorName"`
	Date       string `form:"date"`
}

var fieldLabels = map[string]string{
	"patientName":     "Patient name",
	"patientEmail":    "Patient email",
	"patientPhone":    "Patient phone",
	"doctorName":      "Doctor name",
	"appointmentDate": "Appointment date",
	"appointmentTime": "Appointment time",
	"reason":          "Reason for visit",
	"status":          "Status",
}

var appointmentValidator = newAppointmentValidator()

func newAppointmentValidator() *validator.Validator {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(Date); ok && !d.IsZero() {
			return d.String()
		}
		return nil
	}, Date{})
	return v
}

func appointmentMessage(field, tag, param string) string {
	label, ok := fieldLabels[field]
	if !ok {
		label = field
	}
	if field == "status" {
		tag = "oneof"
		param = "scheduled completed cancelled no-show"
	}
	return validator.DefaultMessage(label, tag, param)
}

// ToAppointment builds an unsaved appointment. An unparsable date is
// reported as a field error instead of failing the whole request.
func (r *CreateAppointmentRequest) ToAppointment() (*Appointment, []errors.FieldError) {
	apt := &Appointment{
		PatientName:     r.PatientName,
		PatientEmail:    r.PatientEmail,
		PatientPhone:    r.PatientPhone,
		DoctorName:      r.DoctorName,
		AppointmentTime: r.AppointmentTime,
		Reason:          r.Reason,
		Status:          AppointmentStatus(strings.TrimSpace(r.Status)),
		Notes:           r.Notes,
	}
	if apt.Status == "" {
		apt.Status = AppointmentStatusScheduled
	}

	var fieldErrs []errors.FieldError
	if strings.TrimSpace(r.AppointmentDate) != "" {
		d, err := ParseDate(r.AppointmentDate)
		if err != nil {
			fieldErrs = append(fieldErrs, invalidDate())
		}
		apt.AppointmentDate = d
	}

	apt.Normalize()
	return apt, fieldErrs
}

// ApplyTo overlays the supplied fields onto apt
func (r *UpdateAppointmentRequest) ApplyTo(apt *Appointment) []errors.FieldError {
	setString(&apt.PatientName, r.PatientName)
	setString(&apt.PatientEmail, r.PatientEmail)
	setString(&apt.PatientPhone, r.PatientPhone)
	setString(&apt.DoctorName, r.DoctorName)
	setString(&apt.AppointmentTime, r.AppointmentTime)
	setString(&apt.Reason, r.Reason)
	setString(&apt.Notes, r.Notes)
	if r.Status != nil {
		apt.Status = AppointmentStatus(strings.TrimSpace(*r.Status))
	}

	var fieldErrs []errors.FieldError
	if r.AppointmentDate != nil {
		apt.AppointmentDate = Date{}
		if strings.TrimSpace(*r.AppointmentDate) != "" {
			d, err := ParseDate(*r.AppointmentDate)
			if err != nil {
				fieldErrs = append(fieldErrs, invalidDate())
			}
			apt.AppointmentDate = d
		}
	}

	apt.Normalize()
	return fieldErrs
}

// Normalize trims text fields and lowercases the email
func (a *Appointment) Normalize() {
	a.PatientName = strings.TrimSpace(a.PatientName)
	a.PatientEmail = strings.ToLower(strings.TrimSpace(a.PatientEmail))
	a.PatientPhone = strings.TrimSpace(a.PatientPhone)
	a.DoctorName = strings.TrimSpace(a.DoctorName)
	a.AppointmentTime = strings.TrimSpace(a.AppointmentTime)
	a.Reason = strings.TrimSpace(a.Reason)
	a.Notes = strings.TrimSpace(a.Notes)
}

// Validate checks a normalized appointment. prior holds field errors found
// while decoding; a field is reported at most once.
func (a *Appointment) Validate(prior ...errors.FieldError) error {
	fields, err := appointmentValidator.Struct(a, appointmentMessage)
	if err != nil {
		return errors.Internal(err)
	}

	seen := make(map[string]bool, len(prior))
	all := make([]errors.FieldError, 0, len(prior)+len(fields))
	for _, fe := range prior {
		seen[fe.Field] = true
		all = append(all, fe)
	}
	for _, fe := range fields {
		if !seen[fe.Field] {
			all = append(all, fe)
		}
	}

	if len(all) == 0 {
		return nil
	}
	return errors.Validation(validationMessage(all), all...)
}

// ToFilters validates the raw query. Status must be one of the exact,
// lowercase status values; anything else is a validation error rather than
// an empty result.
func (q *ListAppointmentsQuery) ToFilters() (*AppointmentFilters, error) {
	filters := &AppointmentFilters{
		Status:     AppointmentStatus(strings.TrimSpace(q.Status)),
		DoctorName: strings.TrimSpace(q.DoctorName),
	}

	var fieldErrs []errors.FieldError
	if filters.Status != "" && !filters.Status.Valid() {
		fieldErrs = append(fieldErrs, errors.FieldError{
			Field:   "status",
			Message: appointmentMessage("status", "oneof", ""),
		})
	}

	if date := strings.TrimSpace(q.Date); date != "" {
		d, err := ParseDate(date)
		if err != nil {
			fieldErrs = append(fieldErrs, errors.FieldError{Field: "date", Message: "Date must be a valid date (YYYY-MM-DD)"})
		} else {
			filters.Date = &d
		}
	}

	if len(fieldErrs) > 0 {
		return nil, errors.Validation(validationMessage(fieldErrs), fieldErrs...)
	}
	return filters, nil
}

// Matches reports whether apt satisfies every set filter. Doctor names
// match case-insensitively on any substring.
func (f *AppointmentFilters) Matches(apt *Appointment) bool {
	if f == nil {
		return true
	}
	if f.Status != "" && apt.Status != f.Status {
		return false
	}
	if f.DoctorName != "" && !strings.Contains(strings.ToLower(apt.DoctorName), strings.ToLower(f.DoctorName)) {
		return false
	}
	if f.Date != nil && !apt.AppointmentDate.Equal(*f.Date) {
		return false
	}
	return true
}

// Less orders appointments by date, then time, then creation
func (a *Appointment) Less(other *Appointment) bool {
	if !a.AppointmentDate.Equal(other.AppointmentDate) {
		return a.AppointmentDate.Before(other.AppointmentDate.Time)
	}
	if a.AppointmentTime != other.AppointmentTime {
		return a.AppointmentTime < other.AppointmentTime
	}
	return a.CreatedAt.Before(other.CreatedAt)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func invalidDate() errors.FieldError {
	return errors.FieldError{
		Field:   "appointmentDate",
		Message: "Appointment date must be a valid date (YYYY-MM-DD)",
	}
}

func validationMessage(fields []errors.FieldError) string {
	msgs := make([]string, 0, len(fields))
	for _, fe := range fields {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, ", ")
}
