package get_day_summary

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/service/bookings/models"
)

type AppointmentService interface {
	GetDaySummary(ctx context.Context, branchID uuid.UUID, day time.Time) (*models.DaySummaryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
