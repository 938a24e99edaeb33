package domain

import (
	"fmt"
	"time"
)

// SlotAction is one of BookSlot, ReleaseSlot, BlockSlot, ExpireSlot.
// The set is closed: the marker method is unexported.
type SlotAction interface {
	slotAction()
	Name() string
}

// BookSlot takes one seat
type BookSlot struct{ Now time.Time }

// ReleaseSlot gives one seat back
type ReleaseSlot struct{ Now time.Time }

// BlockSlot stops further bookings, existing ones are kept
type BlockSlot struct{ Now time.Time }

// ExpireSlot makes the slot terminal
type ExpireSlot struct{ Now time.Time }

func (BookSlot) slotAction()    {}
func (ReleaseSlot) slotAction() {}
func (BlockSlot) slotAction()   {}
func (ExpireSlot) slotAction()  {}

func (BookSlot) Name() string    { return "book" }
func (ReleaseSlot) Name() string { return "release" }
func (BlockSlot) Name() string   { return "block" }
func (ExpireSlot) Name() string  { return "expire" }

// Apply runs action against a copy of the slot and returns the copy.
// The receiver is never modified and the version is left for the store to bump.
func (s *Slot) Apply(action SlotAction) (*Slot, error) {
	next := s.Clone()

	var (
		err error
		now time.Time
	)
	switch a := action.(type) {
	case BookSlot:
		now, err = a.Now, next.book()
	case ReleaseSlot:
		now, err = a.Now, next.release()
	case BlockSlot:
		now, err = a.Now, next.block()
	case ExpireSlot:
		now, err = a.Now, next.expire()
	default:
		return nil, fmt.Errorf("%w: unknown slot action %T", ErrIllegalState, action)
	}
	if err != nil {
		return nil, err
	}

	if !now.IsZero() {
		next.UpdatedAt = now
	}
	return next, nil
}

func (s *Slot) book() error {
	switch s.Status {
	case SlotAvailable:
	case SlotFullyBooked:
		return ErrSlotFullyBooked
	default:
		return fmt.Errorf("%w: cannot book a %s slot", ErrIllegalState, s.Status)
	}

	if s.BookingCount >= s.MaxBookingCapacity {
		return ErrSlotFullyBooked
	}

	s.BookingCount++
	s.Status = s.countStatus()
	return nil
}

func (s *Slot) release() error {
	if s.Status == SlotExpired {
		return fmt.Errorf("%w: cannot release an expired slot", ErrIllegalState)
	}
	if s.BookingCount == 0 {
		return fmt.Errorf("%w: slot has no bookings to release", ErrIllegalState)
	}

	s.BookingCount--
	// BLOCKED переживает освобождение места
	if s.Status != SlotBlocked {
		s.Status = s.countStatus()
	}
	return nil
}

func (s *Slot) block() error {
	if s.Status == SlotExpired {
		return fmt.Errorf("%w: cannot block an expired slot", ErrIllegalState)
	}
	s.Status = SlotBlocked
	return nil
}

func (s *Slot) expire() error {
	s.Status = SlotExpired
	return nil
}
