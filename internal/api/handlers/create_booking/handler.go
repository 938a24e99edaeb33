package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BranchAppointments/internal/api/handlers"
	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidID          = "некорректный ID слота или отделения"
	msgSlotNotAvailable   = "выбранный слот недоступен"
	msgAlreadyBooked      = "у клиента уже есть запись на этот день"
	msgSlotNotFound       = "слот не найден"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /internal/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /internal/appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /internal/appointments - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSlotFullyBooked):
			h.logger.Warn("POST /internal/appointments - Slot not available: slot_id=%s, customer_id=%s", req.SlotID, req.CustomerID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, domain.ErrAlreadyBooked):
			h.logger.Warn("POST /internal/appointments - Already booked: customer_id=%s", req.CustomerID)
			handlers.RespondConflict(w, msgAlreadyBooked)

		case errors.Is(err, domain.ErrSlotNotFound):
			h.logger.Warn("POST /internal/appointments - Slot not found: slot_id=%s", req.SlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case domain.IsDomainError(err):
			h.logger.Warn("POST /internal/appointments - Rejected: slot_id=%s, customer_id=%s, error=%v", req.SlotID, req.CustomerID, err)
			handlers.RespondDomainError(w, err)

		default:
			h.logger.Error("POST /internal/appointments - Failed to create appointment: slot_id=%s, customer_id=%s, error=%v",
				req.SlotID, req.CustomerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /internal/appointments - Appointment created: id=%s, ref=%s, customer_id=%s",
		result.ID, result.ReferenceCode, result.CustomerID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
