package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType names an appointment lifecycle notification
type EventType string

const (
	EventBooked      EventType = "appointment.booked"
	EventCancelled   EventType = "appointment.cancelled"
	EventRescheduled EventType = "appointment.rescheduled"
	EventAttended    EventType = "appointment.attended"
	EventNoShow      EventType = "appointment.no_show"
)

// LifecycleEvent is published after an appointment transition has committed
type LifecycleEvent struct {
	ID            uuid.UUID
	Type          EventType
	AppointmentID uuid.UUID
	ReferenceCode string
	CustomerID    string
	BranchID      uuid.UUID
	PriorStatus   AppointmentStatus
	NextStatus    AppointmentStatus
	Actor         string
	OccurredAt    time.Time
	Metadata      map[string]string
}

// NewLifecycleEvent builds an event for the appointment's current state
func NewLifecycleEvent(t EventType, a *Appointment, prior AppointmentStatus, actor string, at time.Time) LifecycleEvent {
	return LifecycleEvent{
		ID:            uuid.New(),
		Type:          t,
		AppointmentID: a.ID,
		ReferenceCode: a.ReferenceCode,
		CustomerID:    a.CustomerID,
		BranchID:      a.BranchID,
		PriorStatus:   prior,
		NextStatus:    a.Status,
		Actor:         actor,
		OccurredAt:    at,
		Metadata:      map[string]string{},
	}
}
