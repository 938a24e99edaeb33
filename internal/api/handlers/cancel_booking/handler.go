package cancel_booking

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BranchAppointments/internal/api/handlers"
	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgNotFound             = "запись не найдена"
	msgCannotCancel         = "запись не может быть отменена"
	msgStaleVersion         = "запись была изменена, обновите данные"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /internal/appointments/{appointmentId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем appointmentId из URL
	appointmentID, err := uuid.Parse(mux.Vars(r)["appointmentId"])
	if err != nil {
		h.logger.Warn("POST /internal/appointments/{id}/cancel - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req CancelBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /internal/appointments/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CancelByCustomer(r.Context(), appointmentID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAppointmentNotFound):
			h.logger.Warn("POST /internal/appointments/{id}/cancel - Appointment not found: id=%s", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrVersionMismatch):
			h.logger.Warn("POST /internal/appointments/{id}/cancel - Stale version: id=%s", appointmentID)
			handlers.RespondUnprocessable(w, msgStaleVersion)

		case errors.Is(err, domain.ErrIllegalState):
			h.logger.Warn("POST /internal/appointments/{id}/cancel - Cannot cancel: id=%s, error=%v", appointmentID, err)
			handlers.RespondUnprocessable(w, msgCannotCancel)

		case domain.IsDomainError(err):
			h.logger.Warn("POST /internal/appointments/{id}/cancel - Rejected: id=%s, error=%v", appointmentID, err)
			handlers.RespondDomainError(w, err)

		default:
			h.logger.Error("POST /internal/appointments/{id}/cancel - Failed to cancel appointment: id=%s, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /internal/appointments/{id}/cancel - Appointment cancelled: id=%s, actor=%s", appointmentID, req.Actor)
	handlers.RespondJSON(w, http.StatusOK, result)
}
