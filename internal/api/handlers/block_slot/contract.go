package block_slot

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

type SlotCoordinator interface {
	Block(ctx context.Context, slotID uuid.UUID) (*domain.Slot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
