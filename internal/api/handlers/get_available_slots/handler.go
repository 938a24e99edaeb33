package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BranchAppointments/internal/api/handlers"
	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

const (
	msgInvalidBranchID = "некорректный ID отделения"
	msgMissingDate     = "дата обязательна"
	msgInvalidQuery    = "некорректные параметры, ожидается date=YYYY-MM-DD и all=true|false"
	msgBranchNotFound  = "отделение не найдено"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /internal/branches/{branchId}/slots
// Query params: date (required, YYYY-MM-DD), all (optional, bool)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем branchId из URL
	branchID, err := uuid.Parse(mux.Vars(r)["branchId"])
	if err != nil {
		h.logger.Warn("GET /internal/branches/{id}/slots - Invalid branch ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBranchID)
		return
	}

	query := r.URL.Query()
	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /internal/branches/{id}/slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(branchID, dateStr, query.Get("all"))
	if err != nil {
		h.logger.Warn("GET /internal/branches/{id}/slots - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBranchNotFound):
			h.logger.Warn("GET /internal/branches/{id}/slots - Branch not found: branch_id=%s", branchID)
			handlers.RespondNotFound(w, msgBranchNotFound)

		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("GET /internal/branches/{id}/slots - Rejected: branch_id=%s, error=%v", branchID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("GET /internal/branches/{id}/slots - Failed to get slots: branch_id=%s, error=%v", branchID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /internal/branches/{id}/slots - Slots retrieved: branch_id=%s, date=%s, slots_count=%d",
		branchID, dateStr, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
