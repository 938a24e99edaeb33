package create_booking

import (
	"time"

	"github.com/google/uuid"

	createBooking "github.com/m04kA/SMC-BranchAppointments/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	SlotID      string `json:"slotId"`
	BranchID    string `json:"branchId"`
	CustomerID  string `json:"customerId"`
	ServiceType string `json:"serviceType"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID            uuid.UUID `json:"id"`
	ReferenceCode string    `json:"referenceCode"`
	SlotID        uuid.UUID `json:"slotId"`
	BranchID      uuid.UUID `json:"branchId"`
	CustomerID    string    `json:"customerId"`
	ServiceType   string    `json:"serviceType"`
	Status        string    `json:"status"`
	ScheduledAt   string    `json:"scheduledAt"`
	Version       int64     `json:"version"`
	CreatedAt     string    `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	slotID, err := uuid.Parse(r.SlotID)
	if err != nil {
		return nil, err
	}
	branchID, err := uuid.Parse(r.BranchID)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		SlotID:      slotID,
		BranchID:    branchID,
		CustomerID:  r.CustomerID,
		ServiceType: r.ServiceType,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:            resp.ID,
		ReferenceCode: resp.ReferenceCode,
		SlotID:        resp.SlotID,
		BranchID:      resp.BranchID,
		CustomerID:    resp.CustomerID,
		ServiceType:   resp.ServiceType,
		Status:        resp.Status,
		ScheduledAt:   resp.ScheduledAt.Format(time.RFC3339),
		Version:       resp.Version,
		CreatedAt:     resp.CreatedAt.Format(time.RFC3339),
	}
}
