package attendance

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BranchAppointments/internal/api/handlers"
	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/internal/service/bookings/models"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgUnknownAction        = "неизвестное действие"
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

// Handle POST /internal/appointments/{appointmentId}/{action}
// action: check-in | start | complete | staff-cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	action := vars["action"]

	appointmentID, err := uuid.Parse(vars["appointmentId"])
	if err != nil {
		h.logger.Warn("POST /internal/appointments/{id}/%s - Invalid appointment ID: %v", action, err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req AttendanceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /internal/appointments/{id}/%s - Invalid request body: %v", action, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	var result *models.AppointmentResponse
	ctx := r.Context()
	switch action {
	case ActionCheckIn:
		result, err = h.service.CheckIn(ctx, appointmentID, req.ExpectedVersion)
	case ActionStart:
		result, err = h.service.StartService(ctx, appointmentID, &models.StartServiceRequest{
			StaffID:         req.StaffID,
			ExpectedVersion: req.ExpectedVersion,
		})
	case ActionComplete:
		result, err = h.service.Complete(ctx, appointmentID, &models.CompleteRequest{
			ServiceNotes:    req.ServiceNotes,
			ExpectedVersion: req.ExpectedVersion,
		})
	case ActionStaffCancel:
		result, err = h.service.CancelByStaff(ctx, appointmentID, &models.StaffCancelRequest{
			StaffID:         req.StaffID,
			Reason:          req.Reason,
			ExpectedVersion: req.ExpectedVersion,
		})
	default:
		h.logger.Warn("POST /internal/appointments/{id}/%s - Unknown action", action)
		handlers.RespondBadRequest(w, msgUnknownAction)
		return
	}

	if err != nil {
		if domain.IsDomainError(err) {
			h.logger.Warn("POST /internal/appointments/{id}/%s - Rejected: id=%s, error=%v", action, appointmentID, err)
		} else {
			h.logger.Error("POST /internal/appointments/{id}/%s - Failed: id=%s, error=%v", action, appointmentID, err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("POST /internal/appointments/{id}/%s - Done: id=%s, status=%s, version=%d",
		action, appointmentID, result.Status, result.Version)
	handlers.RespondJSON(w, http.StatusOK, result)
}
