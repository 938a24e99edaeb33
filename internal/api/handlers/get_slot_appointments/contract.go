package get_slot_appointments

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/service/bookings/models"
)

type AppointmentService interface {
	GetSlotAppointments(ctx context.Context, slotID uuid.UUID) ([]*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
