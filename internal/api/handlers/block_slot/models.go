package block_slot

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// SlotResponse HTTP response model
type SlotResponse struct {
	ID                 uuid.UUID `json:"id"`
	BranchID           uuid.UUID `json:"branchId"`
	Date               string    `json:"date"`
	StartTime          string    `json:"startTime"`
	EndTime            string    `json:"endTime"`
	MaxBookingCapacity int       `json:"maxBookingCapacity"`
	BookingCount       int       `json:"bookingCount"`
	Status             string    `json:"status"`
	Version            int64     `json:"version"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func fromDomainSlot(s *domain.Slot) *SlotResponse {
	return &SlotResponse{
		ID:                 s.ID,
		BranchID:           s.BranchID,
		Date:               s.Day.Format(domain.DateFormat),
		StartTime:          s.StartTime.String(),
		EndTime:            s.EndTime.String(),
		MaxBookingCapacity: s.MaxBookingCapacity,
		BookingCount:       s.BookingCount,
		Status:             string(s.Status),
		Version:            s.Version,
		UpdatedAt:          s.UpdatedAt,
	}
}
