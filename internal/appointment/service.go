package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// auditTimeout bounds an audit insert. The insert is detached from the
// caller's cancellation since the status change it records is already
// committed.
const auditTimeout = 5 * time.Second

const (
	msgInvalidPatient = "Invalid patient ID."
	msgInvalidDoctor  = "Invalid doctor ID."
	msgInvalidService = "Invalid service ID."
	msgInvalidStatus  = "Invalid status value."
	msgInvalidBarcode = "Invalid barcode type."
	msgCancelled      = "Appointment cancelled successfully."
)

// Logger is the logging capability the service needs. *zap.SugaredLogger
// satisfies it.
type Logger interface {
	Errorw(msg string, keysAndValues ...any)
}

// Service validates references and hands the actual scheduling and status
// rules to the store procedures. It keeps no state between calls.
type Service struct {
	store Store
	log   Logger
}

func NewService(store Store, log Logger) *Service {
	return &Service{
		store: store,
		log:   log,
	}
}

// ScheduleAppointment checks that the patient, doctor and service exist (in
// that order) and then lets sp_schedule_appointment detect conflicts and
// insert the row. The procedure's record is returned as-is.
func (s *Service) ScheduleAppointment(ctx context.Context, req ScheduleRequest) (res Result[Record]) {
	defer recoverStore(s.log, "error scheduling appointment", &res)

	sess, err := s.store.Acquire(ctx)
	if err != nil {
		return s.storeFailure("error scheduling appointment", err)
	}
	defer sess.Release()

	refs := []struct {
		kind EntityKind
		id   int64
		msg  string
	}{
		{EntityPatient, req.PatientID, msgInvalidPatient},
		{EntityDoctor, req.DoctorID, msgInvalidDoctor},
		{EntityService, req.ServiceID, msgInvalidService},
	}
	for _, ref := range refs {
		ok, err := sess.Exists(ctx, ref.kind, ref.id)
		if err != nil {
			return s.storeFailure("error scheduling appointment", fmt.Errorf("check %s: %w", ref.kind, err))
		}
		if !ok {
			return Fail[Record](KindNotFound, ref.msg)
		}
	}

	sets, err := sess.Call(ctx, ProcScheduleAppointment,
		req.PatientID, req.DoctorID, req.ServiceID, req.ScheduledAt.UTC(), req.Reason, req.CreatedBy)
	if err != nil {
		return s.storeFailure("error scheduling appointment", err)
	}

	return s.outcome("error scheduling appointment", sets)
}

// UpdateAppointmentStatus validates the new status and delegates the
// transition to sp_update_appointment_status. A successful update is
// recorded in the audit log after the status session has been released.
func (s *Service) UpdateAppointmentStatus(ctx context.Context, appointmentID int64, newStatus AppointmentStatus, updatedBy int64) (res Result[Record]) {
	defer recoverStore(s.log, "error updating appointment status", &res)

	if !newStatus.Valid() {
		return Fail[Record](KindValidation, msgInvalidStatus)
	}

	res = s.callStatusUpdate(ctx, appointmentID, newStatus, updatedBy)
	if !res.Success {
		return res
	}

	s.LogAction(ctx, updatedBy, ActionUpdate, TableAppointments, appointmentID)

	return res
}

func (s *Service) callStatusUpdate(ctx context.Context, appointmentID int64, newStatus AppointmentStatus, updatedBy int64) Result[Record] {
	sess, err := s.store.Acquire(ctx)
	if err != nil {
		return s.storeFailure("error updating appointment status", err)
	}
	defer sess.Release()

	sets, err := sess.Call(ctx, ProcUpdateAppointmentStatus, appointmentID, string(newStatus), updatedBy)
	if err != nil {
		return s.storeFailure("error updating appointment status", err)
	}

	return s.outcome("error updating appointment status", sets)
}

// CancelAppointment moves the appointment to Cancelled and writes a
// cancellation audit entry on top of the one the status update already wrote.
func (s *Service) CancelAppointment(ctx context.Context, appointmentID int64, cancelledBy int64) (res Result[Record]) {
	defer recoverStore(s.log, "error cancelling appointment", &res)

	res = s.UpdateAppointmentStatus(ctx, appointmentID, StatusCancelled, cancelledBy)
	if !res.Success {
		return res
	}

	s.LogAction(ctx, cancelledBy, ActionUpdate, TableAppointments, appointmentID)

	return Ok[Record](nil, msgCancelled)
}

// GeneratePatientBarcode asks sp_generate_patient_barcode for a new barcode.
// The encoding itself happens in the database.
func (s *Service) GeneratePatientBarcode(ctx context.Context, patientID int64, barcodeType BarcodeType) (res Result[Record]) {
	defer recoverStore(s.log, "error generating barcode", &res)

	if !barcodeType.Valid() {
		return Fail[Record](KindValidation, msgInvalidBarcode)
	}

	sess, err := s.store.Acquire(ctx)
	if err != nil {
		return s.storeFailure("error generating barcode", err)
	}
	defer sess.Release()

	ok, err := sess.Exists(ctx, EntityPatient, patientID)
	if err != nil {
		return s.storeFailure("error generating barcode", fmt.Errorf("check %s: %w", EntityPatient, err))
	}
	if !ok {
		return Fail[Record](KindNotFound, msgInvalidPatient)
	}

	sets, err := sess.Call(ctx, ProcGeneratePatientBarcode, patientID, string(barcodeType))
	if err != nil {
		return s.storeFailure("error generating barcode", err)
	}

	return s.outcome("error generating barcode", sets)
}

// ListPatientAppointments returns the rows of the first populated result
// set of sp_get_patient_appointments. A patient without appointments gets an
// empty slice.
func (s *Service) ListPatientAppointments(ctx context.Context, patientID int64) (res Result[[]Appointment]) {
	defer recoverStore(s.log, "error retrieving appointments", &res)

	sess, err := s.store.Acquire(ctx)
	if err != nil {
		return s.storeFailureList(err)
	}
	defer sess.Release()

	sets, err := sess.Call(ctx, ProcGetPatientAppointments, patientID)
	if err != nil {
		return s.storeFailureList(err)
	}

	set, err := firstPopulated(sets)
	if err != nil {
		s.log.Errorw("error retrieving appointments", "patient_id", patientID, "error", err)
		return Fail[[]Appointment](KindStoreProtocol, err.Error())
	}

	appointments := make([]Appointment, 0, len(set.Rows))
	for _, row := range set.Rows {
		a, err := AppointmentFromRecord(row)
		if err != nil {
			s.log.Errorw("error retrieving appointments", "patient_id", patientID, "error", err)
			return Fail[[]Appointment](KindStoreProtocol, err.Error())
		}
		appointments = append(appointments, a)
	}

	return Ok(appointments, "")
}

// LogAction appends an entry to the audit log. The timestamp is assigned by
// the database. The insert runs even if ctx is already cancelled. Failures
// are logged and never returned.
func (s *Service) LogAction(ctx context.Context, actorID int64, actionType, tableAffected string, recordID int64) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("error logging user action", "user_id", actorID, "record_id", recordID, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	entry := AuditEntry{
		UserID:        actorID,
		ActionType:    actionType,
		TableAffected: tableAffected,
		RecordID:      recordID,
	}

	sess, err := s.store.Acquire(ctx)
	if err != nil {
		s.log.Errorw("error logging user action", "user_id", actorID, "record_id", recordID, "error", err)
		return
	}
	defer sess.Release()

	if err := sess.InsertAuditLog(ctx, entry); err != nil {
		s.log.Errorw("error logging user action", "user_id", actorID, "record_id", recordID, "error", err)
	}
}

func (s *Service) outcome(logMsg string, sets []ResultSet) Result[Record] {
	rec, err := firstRow(sets)
	if err != nil {
		s.log.Errorw(logMsg, "error", err)
		return Fail[Record](KindStoreProtocol, err.Error())
	}
	return recordOutcome(rec)
}

func (s *Service) storeFailure(logMsg string, err error) Result[Record] {
	s.log.Errorw(logMsg, "error", err)
	return Fail[Record](kindOf(err), err.Error())
}

func (s *Service) storeFailureList(err error) Result[[]Appointment] {
	s.log.Errorw("error retrieving appointments", "error", err)
	return Fail[[]Appointment](kindOf(err), err.Error())
}

// recoverStore converts a panic raised inside a Store implementation into a
// failed Result. Deferred sessions are released before it runs.
func recoverStore[T any](log Logger, logMsg string, res *Result[T]) {
	if r := recover(); r != nil {
		log.Errorw(logMsg, "panic", r)
		*res = Fail[T](KindStore, fmt.Sprintf("store panic: %v", r))
	}
}

func kindOf(err error) ErrorKind {
	if errors.Is(err, ErrNoResultSet) || errors.Is(err, ErrMalformedRecord) {
		return KindStoreProtocol
	}
	return KindStore
}
