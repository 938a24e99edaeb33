package generate_slots

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/pkg/types"
)

// buildDaySlots раскладывает слоты дня от открытия до закрытия.
// Шаг равен slotDuration * distributionFactor, поэтому между началами слотов остаётся запас.
// Остановка по двум границам: конец слота не позже закрытия и число слотов меньше availableCapacity.
func buildDaySlots(
	branchID uuid.UUID,
	day time.Time,
	hours *domain.OperatingHours,
	capacity *domain.AppointmentCapacity,
	distributionFactor int,
	now time.Time,
) ([]*domain.Slot, error) {
	if distributionFactor < 1 {
		distributionFactor = 1
	}

	openMinutes := hours.OpenTime.Minutes()
	closeMinutes := hours.CloseTime.Minutes()
	duration := capacity.SlotDurationMinutes
	step := duration * distributionFactor
	available := capacity.AvailableCapacity(hours.WorkingMinutes())

	slots := make([]*domain.Slot, 0, available)
	for start := openMinutes; start+duration <= closeMinutes && len(slots) < available; start += step {
		startTime, err := types.FromMinutes(start)
		if err != nil {
			return nil, err
		}
		endTime, err := types.FromMinutes(start + duration)
		if err != nil {
			return nil, err
		}
		slots = append(slots, domain.NewSlot(branchID, day, startTime, endTime, capacity.MaxBookingCapacity, now))
	}

	return slots, nil
}
