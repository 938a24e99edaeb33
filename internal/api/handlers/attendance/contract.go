package attendance

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/service/bookings/models"
)

type AppointmentService interface {
	CheckIn(ctx context.Context, id uuid.UUID, expectedVersion *int64) (*models.AppointmentResponse, error)
	StartService(ctx context.Context, id uuid.UUID, req *models.StartServiceRequest) (*models.AppointmentResponse, error)
	Complete(ctx context.Context, id uuid.UUID, req *models.CompleteRequest) (*models.AppointmentResponse, error)
	CancelByStaff(ctx context.Context, id uuid.UUID, req *models.StaffCancelRequest) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
