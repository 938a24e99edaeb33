package get_available_slots

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BranchID == uuid.Nil {
		return fmt.Errorf("%w: branch id is required", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return nil
}

// validateDate проверяет, что дата не в прошлом и не дальше горизонта генерации
func validateDate(requestDate time.Time, now time.Time, horizonDays int) error {
	day := domain.CivilDay(requestDate)
	today := domain.CivilDay(now)

	if day.Before(today) {
		return ErrInvalidDate
	}

	// Если horizonDays = 0, нет ограничений на дату
	if horizonDays == 0 {
		return nil
	}

	if maxDate := today.AddDate(0, 0, horizonDays); day.After(maxDate) {
		return fmt.Errorf("%w: slots exist only %d days ahead", ErrDateTooFarInFuture, horizonDays)
	}
	return nil
}
