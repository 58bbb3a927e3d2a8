package appointment

import (
	"context"
	"errors"
)

// Stored procedure names. The argument order passed to each one is part of
// the contract with the database and must not change.
const (
	ProcScheduleAppointment     = "sp_schedule_appointment"      // (patient_id, doctor_id, service_id, appointment_datetime, reason, created_by)
	ProcUpdateAppointmentStatus = "sp_update_appointment_status" // (appointment_id, new_status, updated_by)
	ProcGeneratePatientBarcode  = "sp_generate_patient_barcode"  // (patient_id, barcode_type)
	ProcGetPatientAppointments  = "sp_get_patient_appointments"  // (patient_id)
)

var (
	ErrUnknownEntity   = errors.New("unknown entity kind")
	ErrNoResultSet     = errors.New("store returned no result set")
	ErrNoRows          = errors.New("store returned no rows")
	ErrMalformedRecord = errors.New("malformed store record")
)

// Store hands out sessions against the clinic database.
type Store interface {
	Acquire(ctx context.Context) (Session, error)
}

// Session is a single acquired connection. Callers must Release it before
// their operation returns.
type Session interface {
	Exists(ctx context.Context, kind EntityKind, id int64) (bool, error)
	Call(ctx context.Context, procedure string, args ...any) ([]ResultSet, error)
	InsertAuditLog(ctx context.Context, entry AuditEntry) error
	Release()
}
