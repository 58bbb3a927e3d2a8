package appointment

import (
	"time"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "Scheduled"
	StatusCheckedIn AppointmentStatus = "Checked-In"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// Valid reports whether s is one of the statuses the store procedures accept.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCheckedIn, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type BarcodeType string

const (
	BarcodeQR      BarcodeType = "QR"
	BarcodeCode128 BarcodeType = "Code128"
	BarcodeEAN13   BarcodeType = "EAN13"
)

func (b BarcodeType) Valid() bool {
	switch b {
	case BarcodeQR, BarcodeCode128, BarcodeEAN13:
		return true
	}
	return false
}

// EntityKind names a referenced entity whose existence is checked before use.
type EntityKind string

const (
	EntityPatient EntityKind = "patient"
	EntityDoctor  EntityKind = "doctor"
	EntityService EntityKind = "service"
)

type Appointment struct {
	ID          int64             `json:"appointment_id"`
	PatientID   int64             `json:"patient_id"`
	DoctorID    int64             `json:"doctor_id"`
	ServiceID   int64             `json:"service_id"`
	ScheduledAt time.Time         `json:"appointment_datetime"`
	Reason      string            `json:"reason,omitempty"`
	Status      AppointmentStatus `json:"status"`
	CreatedBy   *int64            `json:"created_by,omitempty"`
	UpdatedBy   *int64            `json:"updated_by,omitempty"`
}

// ScheduleRequest carries the inputs of sp_schedule_appointment.
type ScheduleRequest struct {
	PatientID   int64
	DoctorID    int64
	ServiceID   int64
	ScheduledAt time.Time
	Reason      string
	CreatedBy   int64
}

type AuditEntry struct {
	UserID        int64
	ActionType    string
	TableAffected string
	RecordID      int64
	// Assigned by the store at insert time.
	ActionTimestamp time.Time
}

const (
	ActionUpdate      = "UPDATE"
	TableAppointments = "Appointments"
)

// Record is a single row returned by a store procedure, keyed by column name.
type Record map[string]any

// ResultSet is one set of rows produced by a procedure call.
type ResultSet struct {
	Columns []string
	Rows    []Record
}
