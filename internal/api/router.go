package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-appointments/internal/appointment"
)

// AppointmentService is the part of appointment.Service the HTTP layer uses.
type AppointmentService interface {
	ScheduleAppointment(ctx context.Context, req appointment.ScheduleRequest) appointment.Result[appointment.Record]
	UpdateAppointmentStatus(ctx context.Context, appointmentID int64, newStatus appointment.AppointmentStatus, updatedBy int64) appointment.Result[appointment.Record]
	CancelAppointment(ctx context.Context, appointmentID int64, cancelledBy int64) appointment.Result[appointment.Record]
	ListPatientAppointments(ctx context.Context, patientID int64) appointment.Result[[]appointment.Appointment]
	GeneratePatientBarcode(ctx context.Context, patientID int64, barcodeType appointment.BarcodeType) appointment.Result[appointment.Record]
}

type RouterConfig struct {
	Service   AppointmentService
	Health    *HealthHandler
	Logger    *zap.Logger
	RateLimit func(http.Handler) http.Handler // optional
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health/live", cfg.Health.Liveness)
	r.Get("/health/ready", cfg.Health.Readiness)

	r.Group(func(r chi.Router) {
		if cfg.RateLimit != nil {
			r.Use(cfg.RateLimit)
		}

		r.Post("/appointments", scheduleAppointmentHandler(cfg.Service))
		r.Patch("/appointments/{id}/status", updateStatusHandler(cfg.Service))
		r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Service))

		r.Get("/patients/{id}/appointments", listPatientAppointmentsHandler(cfg.Service))
		r.Post("/patients/{id}/barcodes", generateBarcodeHandler(cfg.Service))
	})

	return r
}
