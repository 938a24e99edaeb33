package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusBooked      AppointmentStatus = "booked"
	StatusCheckedIn   AppointmentStatus = "checked_in"
	StatusInProgress  AppointmentStatus = "in_progress"
	StatusCompleted   AppointmentStatus = "completed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusRescheduled AppointmentStatus = "rescheduled" // transient, never persisted
	StatusNoShow      AppointmentStatus = "no_show"
)

// IsTerminal returns true if no transition may leave the status
func (s AppointmentStatus) IsTerminal() bool {
	for _, t := range TerminalStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// IsActive returns true if the status occupies the customer's day
func (s AppointmentStatus) IsActive() bool {
	for _, t := range ActiveStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// TerminationReason explains why an appointment ended without completion
type TerminationReason string

const (
	ReasonCustomerCancellation TerminationReason = "customer_cancellation"
	ReasonStaffCancellation    TerminationReason = "staff_cancellation"
	ReasonCustomerNoShow       TerminationReason = "customer_no_show"
)

const referencePrefix = "BR"

// Appointment represents one customer's claim on a slot
type Appointment struct {
	ID             uuid.UUID
	SlotID         uuid.UUID
	PreviousSlotID *uuid.UUID
	BranchID       uuid.UUID
	CustomerID     string
	ServiceType    string
	Status         AppointmentStatus
	ReferenceCode  string
	ScheduledAt    time.Time
	ScheduledDay   time.Time // calendar day of ScheduledAt, used for the one-per-day rule

	CheckedInAt  *time.Time
	InProgressAt *time.Time
	CompletedAt  *time.Time
	TerminatedAt *time.Time

	TerminationReason *TerminationReason
	TerminatedBy      *string
	TerminationNotes  *string

	StaffID      *string
	ServiceNotes *string

	RescheduleCount int
	Version         int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAppointment creates a BOOKED appointment on slot. Version starts at 0.
func NewAppointment(slot *Slot, customerID, serviceType string, now time.Time) (*Appointment, error) {
	if now.IsZero() {
		return nil, fmt.Errorf("%w: current time is required", ErrValidation)
	}
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", ErrValidation)
	}
	serviceType = strings.TrimSpace(serviceType)
	if serviceType == "" {
		return nil, fmt.Errorf("%w: service type is required", ErrValidation)
	}

	id := uuid.New()
	return &Appointment{
		ID:            id,
		SlotID:        slot.ID,
		BranchID:      slot.BranchID,
		CustomerID:    customerID,
		ServiceType:   serviceType,
		Status:        StatusBooked,
		ReferenceCode: NewReferenceCode(),
		ScheduledAt:   slot.StartsAt(),
		ScheduledDay:  slot.Day,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// NewReferenceCode returns a short human-readable code like BR-3F9A1C07
func NewReferenceCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return referencePrefix + "-" + strings.ToUpper(raw[:8])
}

// IsTerminal returns true if the appointment can no longer change
func (a *Appointment) IsTerminal() bool {
	return a.Status.IsTerminal()
}

// IsActive returns true if the appointment still holds the customer's day
func (a *Appointment) IsActive() bool {
	return a.Status.IsActive()
}

// CheckVersion asserts the caller's view of the appointment is current
func (a *Appointment) CheckVersion(expected int64) error {
	if a.Version != expected {
		return fmt.Errorf("%w: appointment %s has version %d, expected %d", ErrVersionMismatch, a.ID, a.Version, expected)
	}
	return nil
}

// Clone returns a copy that shares no pointers with the original
func (a *Appointment) Clone() *Appointment {
	c := *a
	c.PreviousSlotID = clonePtr(a.PreviousSlotID)
	c.CheckedInAt = clonePtr(a.CheckedInAt)
	c.InProgressAt = clonePtr(a.InProgressAt)
	c.CompletedAt = clonePtr(a.CompletedAt)
	c.TerminatedAt = clonePtr(a.TerminatedAt)
	c.TerminationReason = clonePtr(a.TerminationReason)
	c.TerminatedBy = clonePtr(a.TerminatedBy)
	c.TerminationNotes = clonePtr(a.TerminationNotes)
	c.StaffID = clonePtr(a.StaffID)
	c.ServiceNotes = clonePtr(a.ServiceNotes)
	return &c
}

// lastRecordedAt is the latest timestamp the appointment knows about
func (a *Appointment) lastRecordedAt() time.Time {
	latest := a.CreatedAt
	if a.UpdatedAt.After(latest) {
		latest = a.UpdatedAt
	}
	for _, ts := range []*time.Time{a.CheckedInAt, a.InProgressAt, a.CompletedAt, a.TerminatedAt} {
		if ts != nil && ts.After(latest) {
			latest = *ts
		}
	}
	return latest
}

// IsWithinGraceWindow reports whether now falls in [slotStart, slotStart+grace], both ends inclusive
func IsWithinGraceWindow(now, slotStart time.Time, graceMinutes int) bool {
	deadline := slotStart.Add(time.Duration(graceMinutes) * time.Minute)
	return !now.Before(slotStart) && !now.After(deadline)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
