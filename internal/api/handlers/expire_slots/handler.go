package expire_slots

import (
	"net/http"

	"github.com/m04kA/SMC-BranchAppointments/internal/api/handlers"
	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

const msgInvalidRequestBody = "некорректное тело запроса"

type Handler struct {
	useCase UseCase
	logger  Logger
}

func NewHandler(useCase UseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /internal/jobs/expire-slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ExpireSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /internal/jobs/expire-slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ucReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /internal/jobs/expire-slots - Invalid request: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	resp, err := h.useCase.Execute(r.Context(), ucReq)
	if resp == nil {
		// до обработки слотов: валидация или ошибка чтения
		if domain.IsDomainError(err) {
			h.logger.Warn("POST /internal/jobs/expire-slots - Rejected: %v", err)
		} else {
			h.logger.Error("POST /internal/jobs/expire-slots - Failed: %v", err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	body := ExpireSlotsResponse{
		Before:  resp.Before.Format(domain.DateFormat),
		Expired: resp.Expired,
		Failed:  resp.Failed,
	}
	if err != nil {
		h.logger.Error("POST /internal/jobs/expire-slots - Finished with errors: expired=%d, failed=%d: %v",
			resp.Expired, resp.Failed, err)
		handlers.RespondJSON(w, http.StatusInternalServerError, body)
		return
	}

	h.logger.Info("POST /internal/jobs/expire-slots - Done: before=%s, expired=%d", body.Before, body.Expired)
	handlers.RespondJSON(w, http.StatusOK, body)
}
