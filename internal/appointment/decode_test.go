package appointment

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentFromRecord(t *testing.T) {
	rec := Record{
		"id":                   "12",
		"patient_id":           int32(1),
		"doctor_id":            int16(2),
		"service_id":           float64(3),
		"appointment_datetime": "2024-06-01T12:00:00+02:00",
		"status":               "Checked-In",
		"created_by":           int64(7),
	}

	a, err := AppointmentFromRecord(rec)
	require.NoError(t, err)

	assert.Equal(t, int64(12), a.ID)
	assert.Equal(t, int64(1), a.PatientID)
	assert.Equal(t, int64(2), a.DoctorID)
	assert.Equal(t, int64(3), a.ServiceID)
	assert.True(t, a.ScheduledAt.Equal(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, a.ScheduledAt.Location())
	assert.Equal(t, StatusCheckedIn, a.Status)
	assert.Empty(t, a.Reason)
	require.NotNil(t, a.CreatedBy)
	assert.Equal(t, int64(7), *a.CreatedBy)
	assert.Nil(t, a.UpdatedBy)
}

func TestAppointmentFromRecord_Malformed(t *testing.T) {
	tests := map[string]Record{
		"missing id":     {"patient_id": int64(1), "doctor_id": int64(2), "service_id": int64(3)},
		"bad patient":    {"appointment_id": int64(1), "patient_id": true, "doctor_id": int64(2), "service_id": int64(3)},
		"bad datetime":   {"appointment_id": int64(1), "patient_id": int64(1), "doctor_id": int64(2), "service_id": int64(3), "appointment_datetime": "tomorrow"},
		"datetime type":  {"appointment_id": int64(1), "patient_id": int64(1), "doctor_id": int64(2), "service_id": int64(3), "appointment_datetime": 17},
		"bad updated_by": {"appointment_id": int64(1), "patient_id": int64(1), "doctor_id": int64(2), "service_id": int64(3), "updated_by": "nobody"},
		"fractional id":  {"appointment_id": 1.5, "patient_id": int64(1), "doctor_id": int64(2), "service_id": int64(3)},
		"NaN doctor":     {"appointment_id": int64(1), "patient_id": int64(1), "doctor_id": math.NaN(), "service_id": int64(3)},
	}

	for name, rec := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := AppointmentFromRecord(rec)
			assert.True(t, errors.Is(err, ErrMalformedRecord), "got %v", err)
		})
	}
}

func TestToInt64_Floats(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
		ok   bool
	}{
		{in: 3, want: 3, ok: true},
		{in: -42, want: -42, ok: true},
		{in: 1.5},
		{in: math.NaN()},
		{in: math.Inf(1)},
		{in: 1e19},
		{in: -1e19},
	}

	for _, tt := range tests {
		got, ok := toInt64(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestFirstRow(t *testing.T) {
	_, err := firstRow(nil)
	assert.ErrorIs(t, err, ErrNoResultSet)

	_, err = firstRow([]ResultSet{{Columns: []string{"success"}}})
	assert.ErrorIs(t, err, ErrNoRows)

	rec, err := firstRow([]ResultSet{{}, {Rows: []Record{{"success": true}}}})
	require.NoError(t, err)
	assert.Equal(t, true, rec["success"])
}

func TestRecordOutcome(t *testing.T) {
	res := recordOutcome(Record{"appointment_id": int64(4)})
	assert.True(t, res.Success)
	assert.Empty(t, res.Message)

	res = recordOutcome(Record{"success": true, "message": "Appointment scheduled."})
	assert.True(t, res.Success)
	assert.Equal(t, "Appointment scheduled.", res.Message)

	res = recordOutcome(Record{"success": false})
	assert.False(t, res.Success)
	assert.Equal(t, KindRejected, res.Kind)
	assert.Equal(t, "request rejected by store", res.Message)
}
