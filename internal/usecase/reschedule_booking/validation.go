package reschedule_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AppointmentID == uuid.Nil {
		return fmt.Errorf("%w: appointmentID is required", ErrInvalidInput)
	}
	if req.NewSlotID == uuid.Nil {
		return fmt.Errorf("%w: newSlotID is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Actor) == "" {
		return fmt.Errorf("%w: actor is required", ErrInvalidInput)
	}
	if req.ExpectedVersion != nil && *req.ExpectedVersion < 0 {
		return fmt.Errorf("%w: expectedVersion must not be negative", ErrInvalidInput)
	}
	return nil
}

// validateNewSlot проверяет, что новый слот ещё не начался
func validateNewSlot(slot *domain.Slot, now time.Time) error {
	if !slot.StartsAt().After(now) {
		return fmt.Errorf("%w: slot started at %s", ErrSlotStarted, slot.StartsAt().Format(time.RFC3339))
	}
	return nil
}
