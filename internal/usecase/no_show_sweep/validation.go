package no_show_sweep

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// validateRequest заполняет значения по умолчанию и проверяет, что целевой день уже прошёл
func validateRequest(req *Request, opts Options, now time.Time) error {
	if req.PageSize == 0 {
		req.PageSize = opts.PageSize
	}
	if req.PageSize < 1 || req.PageSize > domain.MaxSweepPageSize {
		return fmt.Errorf("%w: page size must be between 1 and %d", ErrInvalidInput, domain.MaxSweepPageSize)
	}

	today := domain.CivilDay(now)
	if req.TargetDate.IsZero() {
		req.TargetDate = today.AddDate(0, 0, -opts.GraceDays)
	}
	req.TargetDate = domain.CivilDay(req.TargetDate)
	if !req.TargetDate.Before(today) {
		return fmt.Errorf("%w: target date %s has not passed yet", ErrInvalidInput, req.TargetDate.Format(domain.DateFormat))
	}
	return nil
}
