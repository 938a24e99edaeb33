package generate_slots

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-BranchAppointments/internal/api/handlers"
	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	generateSlotsUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/generate_slots"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgPartialFailure     = "часть дней не удалось обработать"
)

type Handler struct {
	useCase UseCase
	logger  Logger
	now     func() time.Time
}

func NewHandler(useCase UseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Handle POST /internal/jobs/generate-slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Декодируем body
	var req GenerateSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /internal/jobs/generate-slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ucReq, err := req.ToUseCaseRequest(domain.CivilDay(h.now()))
	if err != nil {
		h.logger.Warn("POST /internal/jobs/generate-slots - Invalid request: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	// Запускаем генерацию
	resp, err := h.useCase.Execute(r.Context(), ucReq)
	if err != nil {
		switch {
		case errors.Is(err, generateSlotsUC.ErrPartialFailure) && resp != nil:
			h.logger.Error("POST /internal/jobs/generate-slots - Partial failure: %v", err)
			body := fromUseCaseResponse(resp)
			body.Error = msgPartialFailure
			handlers.RespondJSON(w, http.StatusInternalServerError, body)

		case domain.IsDomainError(err):
			h.logger.Warn("POST /internal/jobs/generate-slots - Rejected: %v", err)
			handlers.RespondDomainError(w, err)

		default:
			h.logger.Error("POST /internal/jobs/generate-slots - Failed to generate slots: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /internal/jobs/generate-slots - Generated: branches=%d, created=%d, existing=%d",
		resp.Branches, resp.SlotsCreated, resp.SlotsExisting)
	handlers.RespondJSON(w, http.StatusOK, fromUseCaseResponse(resp))
}
