package cancel_booking

import (
	"github.com/m04kA/SMC-BranchAppointments/internal/service/bookings/models"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Actor              string  `json:"actor"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	ExpectedVersion    *int64  `json:"expectedVersion,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest() *models.CancelRequest {
	reason := ""
	if r.CancellationReason != nil {
		reason = *r.CancellationReason
	}

	return &models.CancelRequest{
		Actor:           r.Actor,
		Reason:          reason,
		ExpectedVersion: r.ExpectedVersion,
	}
}
