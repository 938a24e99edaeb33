package create_booking

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	createBooking "github.com/m04kA/SMC-BranchAppointments/internal/usecase/create_booking"
	"github.com/m04kA/SMC-BranchAppointments/pkg/logger"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	args := m.Called(ctx, req)
	if r, ok := args.Get(0).(*createBooking.Response); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func post(h *Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/internal/appointments", bytes.NewBufferString(body)))
	return rec
}

func TestHandler_Created(t *testing.T) {
	slotID, branchID := uuid.New(), uuid.New()
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything, &createBooking.Request{
		SlotID: slotID, BranchID: branchID, CustomerID: "c-1", ServiceType: "deposit",
	}).Return(&createBooking.Response{
		ID:            uuid.New(),
		ReferenceCode: "BR-0A1B2C3D",
		SlotID:        slotID,
		BranchID:      branchID,
		CustomerID:    "c-1",
		Status:        "booked",
		ScheduledAt:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Version:       0,
	}, nil).Once()

	body := `{"slotId":"` + slotID.String() + `","branchId":"` + branchID.String() + `","customerId":"c-1","serviceType":"deposit"}`
	rec := post(NewHandler(uc, logger.Discard()), body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scheduledAt":"2026-03-02T10:00:00Z"`)
	uc.AssertExpectations(t)
}

func TestHandler_Errors(t *testing.T) {
	valid := `{"slotId":"` + uuid.NewString() + `","branchId":"` + uuid.NewString() + `","customerId":"c-1","serviceType":"deposit"}`
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{name: "malformed body", body: `{`, want: http.StatusBadRequest},
		{name: "unknown field", body: `{"userId":1}`, want: http.StatusBadRequest},
		{name: "bad slot id", body: `{"slotId":"x","branchId":"` + uuid.NewString() + `"}`, want: http.StatusBadRequest},
		{name: "slot full", body: valid, err: domain.ErrSlotFullyBooked, want: http.StatusConflict},
		{name: "already booked", body: valid, err: domain.ErrAlreadyBooked, want: http.StatusConflict},
		{name: "slot not found", body: valid, err: domain.ErrSlotNotFound, want: http.StatusNotFound},
		{name: "slot started", body: valid, err: createBooking.ErrSlotStarted, want: http.StatusBadRequest},
		{name: "retries exhausted", body: valid, err: domain.ErrConcurrencyExhausted, want: http.StatusConflict},
		{name: "internal", body: valid, err: errors.New("db down"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err).Maybe()

			rec := post(NewHandler(uc, logger.Discard()), tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
