package block_slot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/internal/infra/storage/memory"
	"github.com/m04kA/SMC-BranchAppointments/internal/service/slots"
	"github.com/m04kA/SMC-BranchAppointments/pkg/logger"
	"github.com/m04kA/SMC-BranchAppointments/pkg/metrics"
)

func setup(t *testing.T) (*mux.Router, *domain.Slot, *slots.Coordinator) {
	t.Helper()
	store := memory.NewStore()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	slot := domain.NewSlot(uuid.New(), day, "10:00", "10:30", 3, day)
	_, err := store.Slots().UpsertMany(context.Background(), []*domain.Slot{slot})
	require.NoError(t, err)

	coordinator := slots.NewCoordinator(store.Slots(), store,
		metrics.NewWithRegisterer("test", prometheus.NewRegistry()), slots.Options{MaxAttempts: 3}, logger.Discard())

	r := mux.NewRouter()
	r.HandleFunc("/internal/slots/{slotId}/block", NewHandler(coordinator, logger.Discard()).Handle).Methods(http.MethodPost)
	return r, slot, coordinator
}

func post(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	return rec
}

func TestHandler_Block(t *testing.T) {
	r, slot, coordinator := setup(t)
	_, err := coordinator.Apply(context.Background(), slot.ID, domain.BookSlot{Now: time.Now()})
	require.NoError(t, err)

	rec := post(r, "/internal/slots/"+slot.ID.String()+"/block")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SlotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "blocked", resp.Status)
	assert.Equal(t, 1, resp.BookingCount)
	assert.Equal(t, int64(2), resp.Version)
	assert.Equal(t, "10:00", resp.StartTime)
}

func TestHandler_Errors(t *testing.T) {
	r, slot, coordinator := setup(t)

	assert.Equal(t, http.StatusBadRequest, post(r, "/internal/slots/abc/block").Code)
	assert.Equal(t, http.StatusNotFound, post(r, "/internal/slots/"+uuid.NewString()+"/block").Code)

	_, err := coordinator.Apply(context.Background(), slot.ID, domain.ExpireSlot{Now: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, post(r, "/internal/slots/"+slot.ID.String()+"/block").Code)
}
