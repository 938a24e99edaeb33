package get_appointment

import (
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

func (m *mockService) GetByID(ctx context.Context, id uuid.UUID) (*models.AppointmentResponse, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*models.AppointmentResponse); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/internal/appointments/{appointmentId}", h.Handle).Methods(http.MethodGet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name     string
		path     string
		result   *models.AppointmentResponse
		err      error
		want     int
		contains string
	}{
		{
			name:     "found",
			path:     "/internal/appointments/" + id.String(),
			result:   &models.AppointmentResponse{ID: id, ReferenceCode: "BR-1A2B3C4D", Status: "booked"},
			want:     http.StatusOK,
			contains: `"referenceCode":"BR-1A2B3C4D"`,
		},
		{name: "invalid id", path: "/internal/appointments/42", want: http.StatusBadRequest},
		{name: "not found", path: "/internal/appointments/" + id.String(), err: domain.ErrAppointmentNotFound, want: http.StatusNotFound},
		{name: "internal", path: "/internal/appointments/" + id.String(), err: errors.New("db down"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("GetByID", mock.Anything, id).Return(tt.result, tt.err)

			rec := serve(NewHandler(svc, logger.Discard()), tt.path)
			assert.Equal(t, tt.want, rec.Code)
			if tt.contains != "" {
				assert.Contains(t, rec.Body.String(), tt.contains)
			}
		})
	}
}
