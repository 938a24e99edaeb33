package create_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

const maxServiceTypeLength = 64

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.SlotID == uuid.Nil {
		return fmt.Errorf("%w: slotID is required", ErrInvalidInput)
	}
	if req.BranchID == uuid.Nil {
		return fmt.Errorf("%w: branchID is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.CustomerID) == "" {
		return fmt.Errorf("%w: customerID is required", ErrInvalidInput)
	}
	serviceType := strings.TrimSpace(req.ServiceType)
	if serviceType == "" {
		return fmt.Errorf("%w: serviceType is required", ErrInvalidInput)
	}
	if len(serviceType) > maxServiceTypeLength {
		return fmt.Errorf("%w: serviceType is longer than %d characters", ErrInvalidInput, maxServiceTypeLength)
	}
	return nil
}

// validateSlot проверяет, что слот относится к отделению и ещё не начался
func validateSlot(slot *domain.Slot, branchID uuid.UUID, now time.Time) error {
	if slot.BranchID != branchID {
		return ErrSlotOfOtherBranch
	}
	if !slot.StartsAt().After(now) {
		return fmt.Errorf("%w: slot started at %s", ErrSlotStarted, slot.StartsAt().Format(time.RFC3339))
	}
	return nil
}
