package block_slot

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BranchAppointments/internal/api/handlers"
	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

const msgInvalidSlotID = "некорректный ID слота"

type Handler struct {
	coordinator SlotCoordinator
	logger      Logger
}

func NewHandler(coordinator SlotCoordinator, logger Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		logger:      logger,
	}
}

// Handle POST /internal/slots/{slotId}/block
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := uuid.Parse(mux.Vars(r)["slotId"])
	if err != nil {
		h.logger.Warn("POST /internal/slots/{id}/block - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	slot, err := h.coordinator.Block(r.Context(), slotID)
	if err != nil {
		if domain.IsDomainError(err) {
			h.logger.Warn("POST /internal/slots/{id}/block - Rejected: slot_id=%s, error=%v", slotID, err)
		} else {
			h.logger.Error("POST /internal/slots/{id}/block - Failed to block slot: slot_id=%s, error=%v", slotID, err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("POST /internal/slots/{id}/block - Slot blocked: slot_id=%s, bookings=%d", slotID, slot.BookingCount)
	handlers.RespondJSON(w, http.StatusOK, fromDomainSlot(slot))
}
