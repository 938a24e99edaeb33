package attendance

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/internal/service/bookings/models"
	"github.com/m04kA/SMC-BranchAppointments/pkg/logger"
)

type mockService struct{ mock.Mock }

func (m *mockService) result(args mock.Arguments) (*models.AppointmentResponse, error) {
	if r, ok := args.Get(0).(*models.AppointmentResponse); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) CheckIn(ctx context.Context, id uuid.UUID, expectedVersion *int64) (*models.AppointmentResponse, error) {
	return m.result(m.Called(ctx, id, expectedVersion))
}

func (m *mockService) StartService(ctx context.Context, id uuid.UUID, req *models.StartServiceRequest) (*models.AppointmentResponse, error) {
	return m.result(m.Called(ctx, id, req))
}

func (m *mockService) Complete(ctx context.Context, id uuid.UUID, req *models.CompleteRequest) (*models.AppointmentResponse, error) {
	return m.result(m.Called(ctx, id, req))
}

func (m *mockService) CancelByStaff(ctx context.Context, id uuid.UUID, req *models.StaffCancelRequest) (*models.AppointmentResponse, error) {
	return m.result(m.Called(ctx, id, req))
}

func serve(h *Handler, path, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/internal/appointments/{appointmentId}/{action:"+RoutePattern+"}", h.Handle).Methods(http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body)))
	return rec
}

func TestHandler_Actions(t *testing.T) {
	id := uuid.New()
	version := int64(2)
	base := "/internal/appointments/" + id.String() + "/"

	svc := &mockService{}
	svc.On("CheckIn", mock.Anything, id, (*int64)(nil)).
		Return(&models.AppointmentResponse{ID: id, Status: "checked_in", Version: 1}, nil).Once()
	svc.On("StartService", mock.Anything, id, &models.StartServiceRequest{StaffID: "teller-7", ExpectedVersion: &version}).
		Return(&models.AppointmentResponse{ID: id, Status: "in_progress", Version: 3}, nil).Once()
	svc.On("Complete", mock.Anything, id, &models.CompleteRequest{ServiceNotes: "done"}).
		Return(&models.AppointmentResponse{ID: id, Status: "completed", Version: 4}, nil).Once()
	svc.On("CancelByStaff", mock.Anything, id, &models.StaffCancelRequest{StaffID: "teller-7", Reason: "branch closed"}).
		Return(&models.AppointmentResponse{ID: id, Status: "cancelled", Version: 1}, nil).Once()

	h := NewHandler(svc, logger.Discard())
	for _, tc := range []struct{ action, body, status string }{
		{ActionCheckIn, ``, "checked_in"},
		{ActionStart, `{"staffId":"teller-7","expectedVersion":2}`, "in_progress"},
		{ActionComplete, `{"serviceNotes":"done"}`, "completed"},
		{ActionStaffCancel, `{"staffId":"teller-7","reason":"branch closed"}`, "cancelled"},
	} {
		rec := serve(h, base+tc.action, tc.body)
		assert.Equal(t, http.StatusOK, rec.Code, tc.action)
		assert.Contains(t, rec.Body.String(), `"status":"`+tc.status+`"`, tc.action)
	}
	svc.AssertExpectations(t)
}

func TestHandler_Errors(t *testing.T) {
	id := uuid.New()
	base := "/internal/appointments/" + id.String() + "/"
	tests := []struct {
		name string
		path string
		body string
		err  error
		want int
	}{
		{name: "invalid id", path: "/internal/appointments/1/check-in", want: http.StatusBadRequest},
		{name: "unknown action", path: base + "teleport", want: http.StatusNotFound},
		{name: "malformed body", path: base + "start", body: `{"staffId":`, want: http.StatusBadRequest},
		{name: "outside grace window", path: base + "check-in", err: domain.ErrOutsideGraceWindow, want: http.StatusBadRequest},
		{name: "illegal transition", path: base + "complete", err: domain.ErrIllegalState, want: http.StatusUnprocessableEntity},
		{name: "retries exhausted", path: base + "start", err: domain.ErrConcurrencyExhausted, want: http.StatusConflict},
		{name: "not found", path: base + "staff-cancel", err: domain.ErrAppointmentNotFound, want: http.StatusNotFound},
		{name: "internal", path: base + "check-in", err: errors.New("db down"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			for _, method := range []string{"CheckIn", "StartService", "Complete", "CancelByStaff"} {
				svc.On(method, mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err).Maybe()
			}

			rec := serve(NewHandler(svc, logger.Discard()), tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
