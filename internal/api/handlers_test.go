package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-appointments/internal/appointment"
)

type fakeService struct {
	schedule func(req appointment.ScheduleRequest) appointment.Result[appointment.Record]
	status   func(id int64, s appointment.AppointmentStatus, by int64) appointment.Result[appointment.Record]
	cancel   func(id, by int64) appointment.Result[appointment.Record]
	list     func(patientID int64) appointment.Result[[]appointment.Appointment]
	barcode  func(patientID int64, bt appointment.BarcodeType) appointment.Result[appointment.Record]
}

func (f *fakeService) ScheduleAppointment(_ context.Context, req appointment.ScheduleRequest) appointment.Result[appointment.Record] {
	return f.schedule(req)
}

func (f *fakeService) UpdateAppointmentStatus(_ context.Context, id int64, s appointment.AppointmentStatus, by int64) appointment.Result[appointment.Record] {
	return f.status(id, s, by)
}

func (f *fakeService) CancelAppointment(_ context.Context, id, by int64) appointment.Result[appointment.Record] {
	return f.cancel(id, by)
}

func (f *fakeService) ListPatientAppointments(_ context.Context, patientID int64) appointment.Result[[]appointment.Appointment] {
	return f.list(patientID)
}

func (f *fakeService) GeneratePatientBarcode(_ context.Context, patientID int64, bt appointment.BarcodeType) appointment.Result[appointment.Record] {
	return f.barcode(patientID, bt)
}

func newTestRouter(svc AppointmentService) http.Handler {
	return NewRouter(RouterConfig{
		Service: svc,
		Health:  NewHealthHandler("test", "v0"),
		Logger:  zap.NewNop(),
	})
}

type resultBody struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, resultBody) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out resultBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr, out
}

func TestScheduleAppointmentHandler(t *testing.T) {
	var got appointment.ScheduleRequest
	svc := &fakeService{
		schedule: func(req appointment.ScheduleRequest) appointment.Result[appointment.Record] {
			got = req
			return appointment.Ok(appointment.Record{"appointment_id": 42, "status": "Scheduled"}, "")
		},
	}

	rr, body := do(t, newTestRouter(svc), http.MethodPost, "/appointments",
		`{"patient_id":1,"doctor_id":2,"service_id":3,"appointment_datetime":"2024-06-01T10:00:00Z","reason":"checkup","created_by":7}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, body.Success)
	assert.JSONEq(t, `{"appointment_id":42,"status":"Scheduled"}`, string(body.Data))
	assert.Equal(t, int64(1), got.PatientID)
	assert.Equal(t, int64(2), got.DoctorID)
	assert.Equal(t, int64(3), got.ServiceID)
	assert.True(t, got.ScheduledAt.Equal(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "checkup", got.Reason)
	assert.Equal(t, int64(7), got.CreatedBy)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestScheduleAppointmentHandler_BadRequests(t *testing.T) {
	svc := &fakeService{
		schedule: func(req appointment.ScheduleRequest) appointment.Result[appointment.Record] {
			t.Fatal("service must not be called")
			return appointment.Result[appointment.Record]{}
		},
	}
	h := newTestRouter(svc)

	tests := map[string]string{
		"not json":       `{`,
		"missing doctor": `{"patient_id":1,"service_id":3,"appointment_datetime":"2024-06-01T10:00:00Z","created_by":7}`,
		"negative id":    `{"patient_id":-1,"doctor_id":2,"service_id":3,"appointment_datetime":"2024-06-01T10:00:00Z","created_by":7}`,
		"missing time":   `{"patient_id":1,"doctor_id":2,"service_id":3,"created_by":7}`,
		"unknown field":  `{"patient_id":1,"doctor_id":2,"service_id":3,"appointment_datetime":"2024-06-01T10:00:00Z","created_by":7,"room":4}`,
	}

	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			rr, body := do(t, h, http.MethodPost, "/appointments", payload)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.False(t, body.Success)
			assert.Equal(t, string(appointment.KindValidation), body.Error)
		})
	}
}

func TestResultKindToStatus(t *testing.T) {
	tests := map[appointment.ErrorKind]int{
		appointment.KindValidation:    http.StatusBadRequest,
		appointment.KindNotFound:      http.StatusNotFound,
		appointment.KindRejected:      http.StatusConflict,
		appointment.KindStore:         http.StatusInternalServerError,
		appointment.KindStoreProtocol: http.StatusBadGateway,
	}

	for kind, want := range tests {
		t.Run(string(kind), func(t *testing.T) {
			svc := &fakeService{
				cancel: func(id, by int64) appointment.Result[appointment.Record] {
					return appointment.Fail[appointment.Record](kind, "nope")
				},
			}

			rr, body := do(t, newTestRouter(svc), http.MethodPost, "/appointments/10/cancel", `{"cancelled_by":7}`)
			assert.Equal(t, want, rr.Code)
			assert.False(t, body.Success)
			assert.Equal(t, string(kind), body.Error)
			assert.Equal(t, "nope", body.Message)
		})
	}
}

func TestUpdateStatusHandler(t *testing.T) {
	var gotID, gotBy int64
	var gotStatus appointment.AppointmentStatus
	svc := &fakeService{
		status: func(id int64, s appointment.AppointmentStatus, by int64) appointment.Result[appointment.Record] {
			gotID, gotStatus, gotBy = id, s, by
			return appointment.Ok(appointment.Record{"success": true}, "Status updated.")
		},
	}

	rr, body := do(t, newTestRouter(svc), http.MethodPatch, "/appointments/10/status", `{"status":"Checked-In","updated_by":7}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "Status updated.", body.Message)
	assert.Equal(t, int64(10), gotID)
	assert.Equal(t, appointment.StatusCheckedIn, gotStatus)
	assert.Equal(t, int64(7), gotBy)
}

func TestUpdateStatusHandler_BadPathID(t *testing.T) {
	rr, body := do(t, newTestRouter(&fakeService{}), http.MethodPatch, "/appointments/abc/status", `{"status":"Completed","updated_by":7}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, string(appointment.KindValidation), body.Error)
}

func TestListPatientAppointmentsHandler(t *testing.T) {
	svc := &fakeService{
		list: func(patientID int64) appointment.Result[[]appointment.Appointment] {
			if patientID != 1 {
				return appointment.Ok([]appointment.Appointment{}, "")
			}
			return appointment.Ok([]appointment.Appointment{
				{ID: 5, PatientID: 1, DoctorID: 2, ServiceID: 3, Status: appointment.StatusScheduled},
			}, "")
		},
	}
	h := newTestRouter(svc)

	rr, body := do(t, h, http.MethodGet, "/patients/1/appointments", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	var appts []appointment.Appointment
	require.NoError(t, json.Unmarshal(body.Data, &appts))
	require.Len(t, appts, 1)
	assert.Equal(t, int64(5), appts[0].ID)

	rr, body = do(t, h, http.MethodGet, "/patients/2/appointments", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, string(body.Data))
}

func TestGenerateBarcodeHandler(t *testing.T) {
	var gotType appointment.BarcodeType
	svc := &fakeService{
		barcode: func(patientID int64, bt appointment.BarcodeType) appointment.Result[appointment.Record] {
			gotType = bt
			return appointment.Ok(appointment.Record{"barcode_value": "PAT-1"}, "")
		},
	}

	rr, body := do(t, newTestRouter(svc), http.MethodPost, "/patients/1/barcodes", `{"barcode_type":"Code128"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, body.Success)
	assert.Equal(t, appointment.BarcodeCode128, gotType)
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func TestRateLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("blocks over limit", func(t *testing.T) {
		lim := &stubLimiter{allowed: false}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.5:5123"
		rr := httptest.NewRecorder()

		RateLimitMiddleware(lim, zap.NewNop())(ok).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, []string{"10.0.0.5"}, lim.keys)
	})

	t.Run("fails open", func(t *testing.T) {
		lim := &stubLimiter{err: errors.New("redis down")}
		rr := httptest.NewRecorder()

		RateLimitMiddleware(lim, zap.NewNop())(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestLocalRateLimit(t *testing.T) {
	h := LocalRateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:4000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
