package memory

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/config"
	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/pkg/types"
)

// Seed загружает отделения из секции [[seed.branches]] конфигурации
func (r *BranchRepository) Seed(seed config.SeedConfig, now time.Time) error {
	for _, sb := range seed.Branches {
		id, err := uuid.Parse(sb.ID)
		if err != nil {
			return fmt.Errorf("seed: branch %q: invalid id: %w", sb.Name, err)
		}

		r.AddBranch(domain.Branch{
			ID:          id,
			Name:        sb.Name,
			CountryCode: sb.CountryCode,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		})

		for _, h := range sb.Hours {
			hours, err := seedHours(h)
			if err != nil {
				return fmt.Errorf("seed: branch %q: %w", sb.Name, err)
			}

			if h.Date != "" {
				date, err := time.Parse(domain.DateFormat, h.Date)
				if err != nil {
					return fmt.Errorf("seed: branch %q: invalid date %q: %w", sb.Name, h.Date, err)
				}
				r.SetDateHours(id, date, hours)
				continue
			}

			weekday, ok := config.ParseWeekday(h.Weekday)
			if !ok {
				return fmt.Errorf("seed: branch %q: unknown weekday %q", sb.Name, h.Weekday)
			}
			r.SetWeekdayHours(id, weekday, hours)
		}

		for _, c := range sb.Capacity {
			capacity := domain.AppointmentCapacity{
				DayType:             domain.DayType(c.DayType),
				StaffCount:          c.StaffCount,
				SlotDurationMinutes: c.SlotDurationMinutes,
				UtilizationFactor:   c.UtilizationFactor,
				MaxBookingCapacity:  c.MaxBookingCapacity,
			}
			if err := capacity.Validate(); err != nil {
				return fmt.Errorf("seed: branch %q: capacity %s: %w", sb.Name, c.DayType, err)
			}
			r.SetCapacity(id, capacity)
		}
	}
	return nil
}

func seedHours(h config.SeedHours) (domain.OperatingHours, error) {
	if h.IsClosed {
		return domain.OperatingHours{IsClosed: true}, nil
	}

	open, err := types.NewTimeStringFromString(h.Open)
	if err != nil {
		return domain.OperatingHours{}, err
	}
	closeAt, err := types.NewTimeStringFromString(h.Close)
	if err != nil {
		return domain.OperatingHours{}, err
	}

	hours := domain.OperatingHours{OpenTime: open, CloseTime: closeAt}
	return hours, hours.Validate()
}
