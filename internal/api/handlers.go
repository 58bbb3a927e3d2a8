package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-appointments/internal/appointment"
)

func scheduleAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScheduleAppointmentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		res := svc.ScheduleAppointment(r.Context(), appointment.ScheduleRequest{
			PatientID:   req.PatientID,
			DoctorID:    req.DoctorID,
			ServiceID:   req.ServiceID,
			ScheduledAt: req.AppointmentDatetime,
			Reason:      req.Reason,
			CreatedBy:   req.CreatedBy,
		})

		writeResult(w, http.StatusCreated, res)
	}
}

func updateStatusHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		var req UpdateStatusRequest
		if !decodeBody(w, r, &req) {
			return
		}

		res := svc.UpdateAppointmentStatus(r.Context(), id, appointment.AppointmentStatus(req.Status), req.UpdatedBy)
		writeResult(w, http.StatusOK, res)
	}
}

func cancelAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		var req CancelAppointmentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		res := svc.CancelAppointment(r.Context(), id, req.CancelledBy)
		writeResult(w, http.StatusOK, res)
	}
}

func listPatientAppointmentsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		res := svc.ListPatientAppointments(r.Context(), patientID)
		writeResult(w, http.StatusOK, res)
	}
}

func generateBarcodeHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		var req GenerateBarcodeRequest
		if !decodeBody(w, r, &req) {
			return
		}

		res := svc.GeneratePatientBarcode(r.Context(), patientID, appointment.BarcodeType(req.BarcodeType))
		writeResult(w, http.StatusCreated, res)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, appointment.KindValidation, param+" must be a positive integer")
		return 0, false
	}
	return id, true
}
