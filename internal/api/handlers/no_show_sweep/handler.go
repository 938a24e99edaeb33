package no_show_sweep

import (
	"net/http"

	"github.com/m04kA/SMC-BranchAppointments/internal/api/handlers"
	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgPartialFailure     = "часть страниц не удалось обработать, они будут обработаны следующим запуском"
)

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

// Handle POST /internal/jobs/no-show-sweep
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req SweepRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /internal/jobs/no-show-sweep - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ucReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /internal/jobs/no-show-sweep - Invalid request: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	resp, err := h.useCase.Execute(r.Context(), ucReq)
	if err != nil {
		if domain.IsDomainError(err) {
			h.logger.Warn("POST /internal/jobs/no-show-sweep - Rejected: %v", err)
			handlers.RespondDomainError(w, err)
			return
		}
		h.logger.Error("POST /internal/jobs/no-show-sweep - Sweep failed: %v", err)
		if resp == nil {
			handlers.RespondInternalError(w)
			return
		}
		body := fromUseCaseResponse(resp)
		body.Error = msgPartialFailure
		handlers.RespondJSON(w, http.StatusInternalServerError, body)
		return
	}

	h.logger.Info("POST /internal/jobs/no-show-sweep - Done: target=%s, pages=%d, processed=%d",
		resp.TargetDate.Format(domain.DateFormat), resp.Pages, resp.Processed)
	handlers.RespondJSON(w, http.StatusOK, fromUseCaseResponse(resp))
}
