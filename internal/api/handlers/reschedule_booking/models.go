package reschedule_booking

import (
	"time"

	"github.com/google/uuid"

	rescheduleBooking "github.com/m04kA/SMC-BranchAppointments/internal/usecase/reschedule_booking"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	NewSlotID       string `json:"newSlotId"`
	Actor           string `json:"actor"`
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`
}

// RescheduleResponse HTTP response model
type RescheduleResponse struct {
	ID              uuid.UUID `json:"id"`
	ReferenceCode   string    `json:"referenceCode"`
	SlotID          uuid.UUID `json:"slotId"`
	PreviousSlotID  uuid.UUID `json:"previousSlotId"`
	BranchID        uuid.UUID `json:"branchId"`
	Status          string    `json:"status"`
	ScheduledAt     string    `json:"scheduledAt"`
	RescheduleCount int       `json:"rescheduleCount"`
	Version         int64     `json:"version"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleRequest) ToUseCaseRequest(appointmentID uuid.UUID) (*rescheduleBooking.Request, error) {
	newSlotID, err := uuid.Parse(r.NewSlotID)
	if err != nil {
		return nil, err
	}
	return &rescheduleBooking.Request{
		AppointmentID:   appointmentID,
		NewSlotID:       newSlotID,
		Actor:           r.Actor,
		ExpectedVersion: r.ExpectedVersion,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleBooking.Response) *RescheduleResponse {
	return &RescheduleResponse{
		ID:              resp.ID,
		ReferenceCode:   resp.ReferenceCode,
		SlotID:          resp.SlotID,
		PreviousSlotID:  resp.PreviousSlotID,
		BranchID:        resp.BranchID,
		Status:          resp.Status,
		ScheduledAt:     resp.ScheduledAt.Format(time.RFC3339),
		RescheduleCount: resp.RescheduleCount,
		Version:         resp.Version,
	}
}
