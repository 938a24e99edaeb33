package generate_slots

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// validateRequest проверяет окно генерации. Пустое окно заменяется значением по умолчанию.
func validateRequest(req *Request, defaultWindow int, now time.Time) error {
	if req.FromDate.IsZero() {
		return fmt.Errorf("%w: from date is required", ErrInvalidInput)
	}
	if domain.CivilDay(req.FromDate).Before(domain.CivilDay(now)) {
		return fmt.Errorf("%w: from date %s is in the past", ErrInvalidInput, req.FromDate.Format(domain.DateFormat))
	}
	if req.WindowDays == 0 {
		req.WindowDays = defaultWindow
	}
	if req.WindowDays < 1 || req.WindowDays > domain.MaxGenerationWindowDays {
		return fmt.Errorf("%w: window must be between 1 and %d days", ErrInvalidInput, domain.MaxGenerationWindowDays)
	}
	if req.BranchID != nil && *req.BranchID == uuid.Nil {
		return fmt.Errorf("%w: branch id is empty", ErrInvalidInput)
	}
	return nil
}
