package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/pkg/types"
)

// DayType classifies a calendar date for capacity lookup
type DayType string

const (
	DayTypeWeekDay DayType = "week_day"
	DayTypeWeekend DayType = "weekend"
	DayTypeHoliday DayType = "holiday"
)

// Branch is a bank branch that accepts appointments
type Branch struct {
	ID          uuid.UUID
	Name        string
	CountryCode string // ISO 3166-1 alpha-2, selects the holiday calendar
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OperatingHours are the hours of one branch on one date.
// Resolved hierarchically: a date override wins over the weekday schedule.
type OperatingHours struct {
	BranchID  uuid.UUID
	OpenTime  types.TimeString
	CloseTime types.TimeString
	IsClosed  bool
}

// WorkingMinutes returns closeTime - openTime in minutes
func (h *OperatingHours) WorkingMinutes() int {
	return h.CloseTime.Sub(h.OpenTime)
}

// Validate checks that the branch is open for a positive span
func (h *OperatingHours) Validate() error {
	if h.IsClosed {
		return nil
	}
	if err := h.OpenTime.Validate(); err != nil {
		return fmt.Errorf("%w: open time: %v", ErrValidation, err)
	}
	if err := h.CloseTime.Validate(); err != nil {
		return fmt.Errorf("%w: close time: %v", ErrValidation, err)
	}
	if !h.OpenTime.IsBefore(h.CloseTime) {
		return fmt.Errorf("%w: open time %s must be before close time %s", ErrValidation, h.OpenTime, h.CloseTime)
	}
	return nil
}

// AppointmentCapacity are the staffing parameters of a branch for one day type
type AppointmentCapacity struct {
	BranchID            uuid.UUID
	DayType             DayType
	StaffCount          int
	SlotDurationMinutes int
	UtilizationFactor   float64
	MaxBookingCapacity  int
}

// Validate checks the parameters are usable for generation
func (c *AppointmentCapacity) Validate() error {
	if c.StaffCount < 1 {
		return fmt.Errorf("%w: staff count must be positive", ErrValidation)
	}
	if c.SlotDurationMinutes < MinSlotDurationMinutes || c.SlotDurationMinutes > MaxSlotDurationMinutes {
		return fmt.Errorf("%w: slot duration must be between %d and %d minutes",
			ErrValidation, MinSlotDurationMinutes, MaxSlotDurationMinutes)
	}
	if c.UtilizationFactor <= 0 || c.UtilizationFactor > 1 {
		return fmt.Errorf("%w: utilization factor must be in (0, 1]", ErrValidation)
	}
	if c.MaxBookingCapacity < 1 {
		return fmt.Errorf("%w: max booking capacity must be at least 1", ErrValidation)
	}
	return nil
}

// AvailableCapacity returns round(staff * floor(workingMinutes / duration) * utilization)
func (c *AppointmentCapacity) AvailableCapacity(workingMinutes int) int {
	if c.SlotDurationMinutes <= 0 || workingMinutes <= 0 {
		return 0
	}
	perStaff := workingMinutes / c.SlotDurationMinutes
	return int(math.Round(float64(c.StaffCount*perStaff) * c.UtilizationFactor))
}
