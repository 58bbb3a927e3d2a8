package api

import (
	"time"
)

type ScheduleAppointmentRequest struct {
	PatientID           int64     `json:"patient_id" validate:"required,gt=0"`
	DoctorID            int64     `json:"doctor_id" validate:"required,gt=0"`
	ServiceID           int64     `json:"service_id" validate:"required,gt=0"`
	AppointmentDatetime time.Time `json:"appointment_datetime" validate:"required"`
	Reason              string    `json:"reason" validate:"max=500"`
	CreatedBy           int64     `json:"created_by" validate:"required,gt=0"`
}

type UpdateStatusRequest struct {
	Status    string `json:"status" validate:"required"`
	UpdatedBy int64  `json:"updated_by" validate:"required,gt=0"`
}

type CancelAppointmentRequest struct {
	CancelledBy int64 `json:"cancelled_by" validate:"required,gt=0"`
}

type GenerateBarcodeRequest struct {
	BarcodeType string `json:"barcode_type" validate:"required"`
}
