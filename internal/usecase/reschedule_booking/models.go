package reschedule_booking

import (
	"time"

	"github.com/google/uuid"
)

// Request модель запроса на перенос записи
type Request struct {
	AppointmentID uuid.UUID
	NewSlotID     uuid.UUID
	// Actor кто переносит: клиент или сотрудник
	Actor string
	// ExpectedVersion версия записи, которую видел клиент (опционально)
	ExpectedVersion *int64
}

// Response модель ответа с перенесённой записью
type Response struct {
	ID              uuid.UUID
	ReferenceCode   string
	SlotID          uuid.UUID
	PreviousSlotID  uuid.UUID
	BranchID        uuid.UUID
	Status          string
	ScheduledAt     time.Time
	RescheduleCount int
	Version         int64
}
