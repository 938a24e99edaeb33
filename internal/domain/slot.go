package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/pkg/types"
)

// SlotStatus represents the status of a slot
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotFullyBooked SlotStatus = "fully_booked"
	SlotBlocked     SlotStatus = "blocked"
	SlotExpired     SlotStatus = "expired"
)

// Slot represents one bookable time window at one branch
type Slot struct {
	ID                 uuid.UUID
	BranchID           uuid.UUID
	Day                time.Time // calendar day, time part is zero
	StartTime          types.TimeString
	EndTime            types.TimeString
	MaxBookingCapacity int
	BookingCount       int
	Status             SlotStatus
	Version            int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSlot creates an empty available slot. Version starts at 0.
func NewSlot(branchID uuid.UUID, day time.Time, start, end types.TimeString, capacity int, now time.Time) *Slot {
	return &Slot{
		ID:                 uuid.New(),
		BranchID:           branchID,
		Day:                DateOnly(day),
		StartTime:          start,
		EndTime:            end,
		MaxBookingCapacity: capacity,
		BookingCount:       0,
		Status:             SlotAvailable,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// StartsAt returns the absolute start of the slot
func (s *Slot) StartsAt() time.Time {
	return s.StartTime.On(s.Day)
}

// EndsAt returns the absolute end of the slot
func (s *Slot) EndsAt() time.Time {
	return s.EndTime.On(s.Day)
}

// RemainingCapacity returns the number of seats still free
func (s *Slot) RemainingCapacity() int {
	left := s.MaxBookingCapacity - s.BookingCount
	if left < 0 {
		return 0
	}
	return left
}

// IsBookable returns true if a Book action would currently succeed
func (s *Slot) IsBookable() bool {
	return s.Status == SlotAvailable && s.BookingCount < s.MaxBookingCapacity
}

// HasElapsed returns true once the whole day of the slot is in the past
func (s *Slot) HasElapsed(now time.Time) bool {
	return !DateOnly(now.In(s.Day.Location())).Before(s.Day.AddDate(0, 0, 1))
}

// Validate checks the capacity invariant
func (s *Slot) Validate() error {
	if s.MaxBookingCapacity < 1 {
		return fmt.Errorf("%w: slot capacity must be at least 1", ErrValidation)
	}
	if s.BookingCount < 0 || s.BookingCount > s.MaxBookingCapacity {
		return fmt.Errorf("%w: booking count %d out of [0, %d]", ErrValidation, s.BookingCount, s.MaxBookingCapacity)
	}
	return nil
}

// Clone returns a detached copy of the slot
func (s *Slot) Clone() *Slot {
	c := *s
	return &c
}

// countStatus is the status implied by the booking count alone
func (s *Slot) countStatus() SlotStatus {
	if s.BookingCount >= s.MaxBookingCapacity {
		return SlotFullyBooked
	}
	return SlotAvailable
}

// SlotCursor is a keyset position in (day, id) order. The zero value means the first page.
type SlotCursor struct {
	Day time.Time
	ID  uuid.UUID
}

func (c SlotCursor) IsZero() bool {
	return c.ID == uuid.Nil
}

// CursorOf returns the keyset position right after s
func CursorOf(s *Slot) SlotCursor {
	return SlotCursor{Day: CivilDay(s.Day), ID: s.ID}
}

// DateOnly truncates t to midnight in its own location
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CivilDay returns the calendar date of t as midnight UTC.
// Stored DATE columns are read back through it.
func CivilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day in a's location
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
