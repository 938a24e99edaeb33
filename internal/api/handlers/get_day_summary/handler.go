package get_day_summary

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BranchAppointments/internal/api/handlers"
	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

const (
	msgInvalidBranchID = "некорректный ID отделения"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
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

// Handle GET /internal/branches/{branchId}/summary
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	branchID, err := uuid.Parse(mux.Vars(r)["branchId"])
	if err != nil {
		h.logger.Warn("GET /internal/branches/{id}/summary - Invalid branch ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBranchID)
		return
	}

	day, err := time.Parse(domain.DateFormat, r.URL.Query().Get("date"))
	if err != nil {
		h.logger.Warn("GET /internal/branches/{id}/summary - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.GetDaySummary(r.Context(), branchID, day)
	if err != nil {
		h.logger.Error("GET /internal/branches/{id}/summary - Failed to get summary: branch_id=%s, error=%v", branchID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /internal/branches/{id}/summary - Summary retrieved: branch_id=%s, date=%s, total=%d",
		branchID, result.Date, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
