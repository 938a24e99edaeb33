package no_show_sweep

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	noShowSweepUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/no_show_sweep"
	"github.com/m04kA/SMC-BranchAppointments/pkg/logger"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) Execute(ctx context.Context, req *noShowSweepUC.Request) (*noShowSweepUC.Response, error) {
	args := m.Called(ctx, req)
	if r, ok := args.Get(0).(*noShowSweepUC.Response); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestHandler_Sweep(t *testing.T) {
	target := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything, &noShowSweepUC.Request{TargetDate: target, PageSize: 500}).
		Return(&noShowSweepUC.Response{TargetDate: target, Pages: 3, Processed: 1200}, nil)

	rec := httptest.NewRecorder()
	NewHandler(uc, logger.Discard()).Handle(rec, httptest.NewRequest(http.MethodPost, "/internal/jobs/no-show-sweep",
		strings.NewReader(`{"targetDate":"2026-03-02","pageSize":500}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SweepResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, SweepResponse{TargetDate: "2026-03-02", Pages: 3, Processed: 1200}, resp)
}

func TestHandler_Errors(t *testing.T) {
	target := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		body   string
		result *noShowSweepUC.Response
		err    error
		want   int
	}{
		{name: "bad date", body: `{"targetDate":"yesterday"}`, want: http.StatusBadRequest},
		{name: "validation", body: `{}`, err: noShowSweepUC.ErrInvalidInput, want: http.StatusBadRequest},
		{
			name:   "failed pages",
			body:   `{}`,
			result: &noShowSweepUC.Response{TargetDate: target, Pages: 2, FailedPages: 1},
			err:    noShowSweepUC.ErrPartialFailure,
			want:   http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			uc.On("Execute", mock.Anything, mock.Anything).Return(tt.result, tt.err)

			rec := httptest.NewRecorder()
			NewHandler(uc, logger.Discard()).Handle(rec, httptest.NewRequest(http.MethodPost, "/internal/jobs/no-show-sweep", strings.NewReader(tt.body)))

			assert.Equal(t, tt.want, rec.Code)
			if tt.result != nil {
				assert.Contains(t, rec.Body.String(), `"failedPages":1`)
			}
		})
	}
}
