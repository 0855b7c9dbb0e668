package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/appointment-scheduler/pkg/errors"
)

func validRequest() *CreateAppointmentRequest {
	return &CreateAppointmentRequest{
		PatientName:     "Jane Doe",
		PatientEmail:    "JANE@x.com",
		PatientPhone:    "555-1111",
		DoctorName:      "Dr. Lee",
		AppointmentDate: "2024-05-01",
		AppointmentTime: "10:00",
		Reason:          "Checkup",
	}
}

func TestCreateRequestNormalizesAndDefaults(t *testing.T) {
	req := validRequest()
	req.PatientName = "  Jane Doe  "

	apt, fieldErrs := req.ToAppointment()
	require.Empty(t, fieldErrs)
	require.NoError(t, apt.Validate(fieldErrs...))

	assert.Equal(t, "Jane Doe", apt.PatientName)
	assert.Equal(t, "jane@x.com", apt.PatientEmail)
	assert.Equal(t, AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, NewDate(2024, time.May, 1), apt.AppointmentDate)
}

func TestValidateReportsEachMissingField(t *testing.T) {
	required := map[string]func(r *CreateAppointmentRequest){
		"patientName":     func(r *CreateAppointmentRequest) { r.PatientName = "   " },
		"patientEmail":    func(r *CreateAppointmentRequest) { r.PatientEmail = "" },
		"patientPhone":    func(r *CreateAppointmentRequest) { r.PatientPhone = "" },
		"doctorName":      func(r *CreateAppointmentRequest) { r.DoctorName = "" },
		"appointmentDate": func(r *CreateAppointmentRequest) { r.AppointmentDate = "" },
		"appointmentTime": func(r *CreateAppointmentRequest) { r.AppointmentTime = " " },
		"reason":          func(r *CreateAppointmentRequest) { r.Reason = "" },
	}

	for field, clear := range required {
		t.Run(field, func(t *testing.T) {
			req := validRequest()
			clear(req)

			apt, fieldErrs := req.ToAppointment()
			err := apt.Validate(fieldErrs...)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))

			appErr, _ := errors.As(err)
			require.Len(t, appErr.Fields, 1)
			assert.Equal(t, field, appErr.Fields[0].Field)
			assert.Contains(t, appErr.Fields[0].Message, "is required")
		})
	}
}

func TestValidateRejectsUnknownStatus(t *testing.T) {
	req := validRequest()
	req.Status = "postponed"

	apt, fieldErrs := req.ToAppointment()
	err := apt.Validate(fieldErrs...)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrValidation, appErr.Code)
	assert.Equal(t, "Status must be one of: scheduled, completed, cancelled, no-show", appErr.Message)
}

func TestInvalidDateReportedOnce(t *testing.T) {
	req := validRequest()
	req.AppointmentDate = "next tuesday"

	apt, fieldErrs := req.ToAppointment()
	require.Len(t, fieldErrs, 1)

	appErr, ok := errors.As(apt.Validate(fieldErrs...))
	require.True(t, ok)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "appointmentDate", appErr.Fields[0].Field)
}

func TestUpdateRequestOverlaysSuppliedFields(t *testing.T) {
	apt, _ := validRequest().ToAppointment()

	status := "completed"
	email := " NEW@Example.com "
	notes := "follow up in two weeks"
	req := &UpdateAppointmentRequest{Status: &status, PatientEmail: &email, Notes: &notes}

	require.Empty(t, req.ApplyTo(apt))
	require.NoError(t, apt.Validate())

	assert.Equal(t, AppointmentStatusCompleted, apt.Status)
	assert.Equal(t, "new@example.com", apt.PatientEmail)
	assert.Equal(t, "follow up in two weeks", apt.Notes)
	assert.Equal(t, "Jane Doe", apt.PatientName)
}

func TestUpdateRequestCannotBlankRequiredField(t *testing.T) {
	apt, _ := validRequest().ToAppointment()

	blank := ""
	req := &UpdateAppointmentRequest{DoctorName: &blank}
	require.Empty(t, req.ApplyTo(apt))

	err := apt.Validate()
	assert.True(t, errors.IsValidation(err))
}

func TestListQueryToFilters(t *testing.T) {
	q := &ListAppointmentsQuery{Status: "cancelled", DoctorName: " Lee ", Date: "2024-05-01"}

	filters, err := q.ToFilters()
	require.NoError(t, err)
	assert.Equal(t, AppointmentStatusCancelled, filters.Status)
	assert.Equal(t, "Lee", filters.DoctorName)
	require.NotNil(t, filters.Date)
	assert.Equal(t, "2024-05-01", filters.Date.String())

	_, err = (&ListAppointmentsQuery{Status: "pending"}).ToFilters()
	assert.True(t, errors.IsValidation(err))

	_, err = (&ListAppointmentsQuery{Date: "01/05/2024"}).ToFilters()
	assert.True(t, errors.IsValidation(err))
}

func TestListQueryStatusIsCaseSensitive(t *testing.T) {
	_, err := (&ListAppointmentsQuery{Status: "Scheduled"}).ToFilters()
	require.True(t, errors.IsValidation(err))
	assert.Equal(t, "status", err.(*errors.AppError).Fields[0].Field)
}

func TestFiltersMatch(t *testing.T) {
	apt := &Appointment{
		DoctorName:      "Dr. Bruce Lee",
		Status:          AppointmentStatusScheduled,
		AppointmentDate: NewDate(2024, time.May, 1),
	}
	day := NewDate(2024, time.May, 1)
	otherDay := NewDate(2024, time.May, 2)

	assert.True(t, (*AppointmentFilters)(nil).Matches(apt))
	assert.True(t, (&AppointmentFilters{}).Matches(apt))
	assert.True(t, (&AppointmentFilters{DoctorName: "lee"}).Matches(apt))
	assert.True(t, (&AppointmentFilters{Status: AppointmentStatusScheduled, Date: &day}).Matches(apt))
	assert.False(t, (&AppointmentFilters{DoctorName: "Smith"}).Matches(apt))
	assert.False(t, (&AppointmentFilters{Status: AppointmentStatusNoShow}).Matches(apt))
	assert.False(t, (&AppointmentFilters{Date: &otherDay}).Matches(apt))
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-05-01T22:30:00-04:00"`), &d))
	assert.Equal(t, "2024-05-02", d.String())

	out, err := json.Marshal(NewDate(2024, time.May, 1))
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-05-01"`, string(out))

	out, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestAppointmentJSONShape(t *testing.T) {
	apt, _ := validRequest().ToAppointment()
	apt.ID = "abc"

	out, err := json.Marshal(apt)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.Equal(t, "abc", fields["id"])
	assert.Equal(t, "2024-05-01", fields["appointmentDate"])
	assert.Equal(t, "scheduled", fields["status"])
	assert.NotContains(t, fields, "notes")
}
