package appointment

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// firstRow returns the first row of the first result set that has one.
func firstRow(sets []ResultSet) (Record, error) {
	if len(sets) == 0 {
		return nil, ErrNoResultSet
	}
	for _, set := range sets {
		if len(set.Rows) > 0 {
			return set.Rows[0], nil
		}
	}
	return nil, ErrNoRows
}

// firstPopulated returns the first result set that carries columns. An empty
// set with columns is a valid "no rows" answer.
func firstPopulated(sets []ResultSet) (ResultSet, error) {
	for _, set := range sets {
		if len(set.Columns) > 0 || len(set.Rows) > 0 {
			return set, nil
		}
	}
	return ResultSet{}, ErrNoResultSet
}

// AppointmentFromRecord decodes a row of sp_get_patient_appointments.
func AppointmentFromRecord(rec Record) (Appointment, error) {
	var a Appointment
	var err error

	idKey := "appointment_id"
	if _, ok := rec[idKey]; !ok {
		idKey = "id"
	}
	if a.ID, err = int64Field(rec, idKey); err != nil {
		return Appointment{}, err
	}
	if a.PatientID, err = int64Field(rec, "patient_id"); err != nil {
		return Appointment{}, err
	}
	if a.DoctorID, err = int64Field(rec, "doctor_id"); err != nil {
		return Appointment{}, err
	}
	if a.ServiceID, err = int64Field(rec, "service_id"); err != nil {
		return Appointment{}, err
	}

	switch v := rec["appointment_datetime"].(type) {
	case time.Time:
		a.ScheduledAt = v.UTC()
	case string:
		t, perr := time.Parse(time.RFC3339, v)
		if perr != nil {
			return Appointment{}, fmt.Errorf("%w: appointment_datetime %q", ErrMalformedRecord, v)
		}
		a.ScheduledAt = t.UTC()
	case nil:
	default:
		return Appointment{}, fmt.Errorf("%w: appointment_datetime has type %T", ErrMalformedRecord, v)
	}

	if v, ok := rec["reason"].(string); ok {
		a.Reason = v
	}
	if v, ok := rec["status"].(string); ok {
		a.Status = AppointmentStatus(v)
	}
	if a.CreatedBy, err = optionalInt64(rec, "created_by"); err != nil {
		return Appointment{}, err
	}
	if a.UpdatedBy, err = optionalInt64(rec, "updated_by"); err != nil {
		return Appointment{}, err
	}

	return a, nil
}

func int64Field(rec Record, key string) (int64, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: missing %s", ErrMalformedRecord, key)
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s has type %T", ErrMalformedRecord, key, v)
	}
	return n, nil
}

func optionalInt64(rec Record, key string) (*int64, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil, nil
	}
	n, ok := toInt64(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s has type %T", ErrMalformedRecord, key, v)
	}
	return &n, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		if math.IsNaN(n) || math.Trunc(n) != n || n < -(1<<63) || n >= 1<<63 {
			return 0, false
		}
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}
