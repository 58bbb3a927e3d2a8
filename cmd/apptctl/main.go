package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/config"
	"github.com/hackgods/clinic-appointments/internal/db"
	"github.com/hackgods/clinic-appointments/internal/logging"
)

// errFailed signals that the operation ran but reported success=false. The
// result has already been printed.
var errFailed = errors.New("operation failed")

// service is the subset of appointment.Service the commands call.
type service interface {
	ScheduleAppointment(ctx context.Context, req appointment.ScheduleRequest) appointment.Result[appointment.Record]
	UpdateAppointmentStatus(ctx context.Context, appointmentID int64, newStatus appointment.AppointmentStatus, updatedBy int64) appointment.Result[appointment.Record]
	CancelAppointment(ctx context.Context, appointmentID int64, cancelledBy int64) appointment.Result[appointment.Record]
	ListPatientAppointments(ctx context.Context, patientID int64) appointment.Result[[]appointment.Appointment]
	GeneratePatientBarcode(ctx context.Context, patientID int64, barcodeType appointment.BarcodeType) appointment.Result[appointment.Record]
}

// connectFunc builds a service backed by Postgres. The returned func releases
// the pool and flushes the logger.
type connectFunc func(ctx context.Context) (service, func(), error)

func main() {
	if err := rootCmd(connectPostgres).Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "apptctl:", err)
		}
		os.Exit(1)
	}
}

func rootCmd(connect connectFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "apptctl",
		Short:         "Operate on clinic appointments directly against the database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(scheduleCmd(connect))
	cmd.AddCommand(statusCmd(connect))
	cmd.AddCommand(cancelCmd(connect))
	cmd.AddCommand(listCmd(connect))
	cmd.AddCommand(barcodeCmd(connect))

	return cmd
}

func scheduleCmd(connect connectFunc) *cobra.Command {
	var req appointment.ScheduleRequest
	var at string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule an appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("--at must be RFC3339: %w", err)
			}
			req.ScheduledAt = when

			return run(cmd, connect, func(ctx context.Context, svc service) (bool, any) {
				res := svc.ScheduleAppointment(ctx, req)
				return res.Success, res
			})
		},
	}

	cmd.Flags().Int64Var(&req.PatientID, "patient", 0, "Patient ID")
	cmd.Flags().Int64Var(&req.DoctorID, "doctor", 0, "Doctor ID")
	cmd.Flags().Int64Var(&req.ServiceID, "service", 0, "Service ID")
	cmd.Flags().StringVar(&at, "at", "", "Appointment time (RFC3339)")
	cmd.Flags().StringVar(&req.Reason, "reason", "", "Reason for the visit")
	cmd.Flags().Int64Var(&req.CreatedBy, "by", 0, "Acting user ID")
	for _, f := range []string{"patient", "doctor", "service", "at", "by"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func statusCmd(connect connectFunc) *cobra.Command {
	var id, by int64
	var status string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Update an appointment's status (Scheduled, Checked-In, Completed, Cancelled)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, connect, func(ctx context.Context, svc service) (bool, any) {
				res := svc.UpdateAppointmentStatus(ctx, id, appointment.AppointmentStatus(status), by)
				return res.Success, res
			})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Appointment ID")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().Int64Var(&by, "by", 0, "Acting user ID")
	for _, f := range []string{"id", "status", "by"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func cancelCmd(connect connectFunc) *cobra.Command {
	var id, by int64

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel an appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, connect, func(ctx context.Context, svc service) (bool, any) {
				res := svc.CancelAppointment(ctx, id, by)
				return res.Success, res
			})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Appointment ID")
	cmd.Flags().Int64Var(&by, "by", 0, "Acting user ID")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("by")

	return cmd
}

func listCmd(connect connectFunc) *cobra.Command {
	var patientID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a patient's appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, connect, func(ctx context.Context, svc service) (bool, any) {
				res := svc.ListPatientAppointments(ctx, patientID)
				return res.Success, res
			})
		},
	}

	cmd.Flags().Int64Var(&patientID, "patient", 0, "Patient ID")
	_ = cmd.MarkFlagRequired("patient")

	return cmd
}

func barcodeCmd(connect connectFunc) *cobra.Command {
	var patientID int64
	var barcodeType string

	cmd := &cobra.Command{
		Use:   "barcode",
		Short: "Generate a patient barcode (QR, Code128, EAN13)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, connect, func(ctx context.Context, svc service) (bool, any) {
				res := svc.GeneratePatientBarcode(ctx, patientID, appointment.BarcodeType(barcodeType))
				return res.Success, res
			})
		},
	}

	cmd.Flags().Int64Var(&patientID, "patient", 0, "Patient ID")
	cmd.Flags().StringVar(&barcodeType, "type", string(appointment.BarcodeQR), "Barcode type")
	_ = cmd.MarkFlagRequired("patient")

	return cmd
}

func run(cmd *cobra.Command, connect connectFunc, op func(ctx context.Context, svc service) (bool, any)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, closeFn, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	ok, res := op(ctx, svc)
	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if !ok {
		return errFailed
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func connectPostgres(ctx context.Context) (service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, db.PoolOptions{MaxConns: 2, MinConns: 1})
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}

	svc := appointment.NewService(appointment.NewPgStore(pool), logger.Sugar())
	closeFn := func() {
		pool.Close()
		_ = logger.Sync()
	}
	return svc, closeFn, nil
}
