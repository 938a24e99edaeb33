package reschedule_booking

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
	msgInvalidSlotID        = "некорректный ID нового слота"
	msgLimitReached         = "достигнут лимит переносов записи"
	msgSlotNotAvailable     = "новый слот недоступен"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /internal/appointments/{appointmentId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := uuid.Parse(mux.Vars(r)["appointmentId"])
	if err != nil {
		h.logger.Warn("POST /internal/appointments/{id}/reschedule - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /internal/appointments/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(appointmentID)
	if err != nil {
		h.logger.Warn("POST /internal/appointments/{id}/reschedule - Invalid new slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRescheduleLimitReached):
			h.logger.Warn("POST /internal/appointments/{id}/reschedule - Limit reached: id=%s", appointmentID)
			handlers.RespondUnprocessable(w, msgLimitReached)

		case errors.Is(err, domain.ErrSlotFullyBooked):
			h.logger.Warn("POST /internal/appointments/{id}/reschedule - Slot not available: id=%s, new_slot_id=%s",
				appointmentID, useCaseReq.NewSlotID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case domain.IsDomainError(err):
			h.logger.Warn("POST /internal/appointments/{id}/reschedule - Rejected: id=%s, error=%v", appointmentID, err)
			handlers.RespondDomainError(w, err)

		default:
			h.logger.Error("POST /internal/appointments/{id}/reschedule - Failed to reschedule: id=%s, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /internal/appointments/{id}/reschedule - Appointment rescheduled: id=%s, %s -> %s",
		appointmentID, result.PreviousSlotID, result.SlotID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
