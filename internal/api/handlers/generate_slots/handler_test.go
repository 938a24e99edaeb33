package generate_slots

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	generateSlotsUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/generate_slots"
	"github.com/m04kA/SMC-BranchAppointments/pkg/logger"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) Execute(ctx context.Context, req *generateSlotsUC.Request) (*generateSlotsUC.Response, error) {
	args := m.Called(ctx, req)
	if r, ok := args.Get(0).(*generateSlotsUC.Response); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

var today = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newHandler(uc UseCase) *Handler {
	h := NewHandler(uc, logger.Discard())
	h.now = func() time.Time { return today.Add(6 * time.Hour) }
	return h
}

func TestHandler_Generate(t *testing.T) {
	branchID := uuid.New()
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything, &generateSlotsUC.Request{
		BranchID:   &branchID,
		FromDate:   time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		WindowDays: 7,
	}).Return(&generateSlotsUC.Response{
		FromDate:      time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		ToDate:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Branches:      1,
		DaysProcessed: 5,
		DaysSkipped:   2,
		SlotsCreated:  45,
	}, nil)

	body := fmt.Sprintf(`{"branchId":"%s","fromDate":"2026-03-09","windowDays":7}`, branchID)
	rec := httptest.NewRecorder()
	newHandler(uc).Handle(rec, httptest.NewRequest(http.MethodPost, "/internal/jobs/generate-slots", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp GenerateSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2026-03-15", resp.ToDate)
	assert.Equal(t, 45, resp.SlotsCreated)
	assert.Empty(t, resp.Error)
	uc.AssertExpectations(t)
}

func TestHandler_EmptyBodyStartsToday(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything, &generateSlotsUC.Request{FromDate: today}).
		Return(&generateSlotsUC.Response{FromDate: today, ToDate: today}, nil)

	rec := httptest.NewRecorder()
	newHandler(uc).Handle(rec, httptest.NewRequest(http.MethodPost, "/internal/jobs/generate-slots", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		result *generateSlotsUC.Response
		err    error
		want   int
	}{
		{name: "bad json", body: `{`, want: http.StatusBadRequest},
		{name: "bad date", body: `{"fromDate":"09.03.2026"}`, want: http.StatusBadRequest},
		{name: "validation", body: `{}`, err: generateSlotsUC.ErrInvalidInput, want: http.StatusBadRequest},
		{name: "inactive branch", body: `{}`, err: generateSlotsUC.ErrBranchInactive, want: http.StatusUnprocessableEntity},
		{
			name:   "partial failure",
			body:   `{}`,
			result: &generateSlotsUC.Response{FromDate: today, ToDate: today, DaysFailed: 1},
			err:    generateSlotsUC.ErrPartialFailure,
			want:   http.StatusInternalServerError,
		},
		{name: "internal", body: `{}`, err: generateSlotsUC.ErrInternal, want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			uc.On("Execute", mock.Anything, mock.Anything).Return(tt.result, tt.err)

			rec := httptest.NewRecorder()
			newHandler(uc).Handle(rec, httptest.NewRequest(http.MethodPost, "/internal/jobs/generate-slots", strings.NewReader(tt.body)))

			assert.Equal(t, tt.want, rec.Code)
			if tt.result != nil {
				assert.Contains(t, rec.Body.String(), `"daysFailed":1`)
			}
		})
	}
}
