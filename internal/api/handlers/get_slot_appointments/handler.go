package get_slot_appointments

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BranchAppointments/internal/api/handlers"
)

const (
	msgInvalidSlotID = "некорректный ID слота"
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

// Handle GET /internal/slots/{slotId}/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем slotId из URL
	slotID, err := uuid.Parse(mux.Vars(r)["slotId"])
	if err != nil {
		h.logger.Warn("GET /internal/slots/{id}/appointments - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	result, err := h.service.GetSlotAppointments(r.Context(), slotID)
	if err != nil {
		h.logger.Error("GET /internal/slots/{id}/appointments - Failed to get appointments: slot_id=%s, error=%v",
			slotID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /internal/slots/{id}/appointments - Appointments retrieved: slot_id=%s, count=%d", slotID, len(result))
	handlers.RespondJSON(w, http.StatusOK, result)
}
