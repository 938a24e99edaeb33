package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/internal/infra/storage/memory"
	"github.com/m04kA/SMC-BranchAppointments/internal/service/bookings/models"
	"github.com/m04kA/SMC-BranchAppointments/internal/service/slots"
	"github.com/m04kA/SMC-BranchAppointments/pkg/logger"
	"github.com/m04kA/SMC-BranchAppointments/pkg/metrics"
)

var (
	bookedAt  = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	slotStart = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type recordingSink struct {
	events []domain.LifecycleEvent
}

func (s *recordingSink) Publish(_ context.Context, events ...domain.LifecycleEvent) {
	s.events = append(s.events, events...)
}

type fixture struct {
	store       *memory.Store
	svc         *Service
	clock       *clock
	sink        *recordingSink
	appointment *domain.Appointment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	slot := domain.NewSlot(uuid.New(), slotStart, "10:00", "10:30", 2, bookedAt)
	booked, err := slot.Apply(domain.BookSlot{Now: bookedAt})
	require.NoError(t, err)
	_, err = store.Slots().UpsertMany(ctx, []*domain.Slot{booked})
	require.NoError(t, err)

	appointment, err := domain.NewAppointment(booked, "customer-1", "deposit", bookedAt)
	require.NoError(t, err)
	require.NoError(t, store.Appointments().Create(ctx, appointment))

	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())
	coordinator := slots.NewCoordinator(store.Slots(), store, m, slots.Options{MaxAttempts: 3}, logger.Discard())
	sink := &recordingSink{}
	c := &clock{now: slotStart.Add(2 * time.Minute)}

	svc := NewService(store.Appointments(), coordinator, sink, store, m, 5, logger.Discard())
	svc.timeProvider = c

	return &fixture{store: store, svc: svc, clock: c, sink: sink, appointment: appointment}
}

func (f *fixture) slotCount(t *testing.T) int {
	t.Helper()
	s, err := f.store.Slots().FindByID(context.Background(), f.appointment.SlotID)
	require.NoError(t, err)
	return s.BookingCount
}

func TestService_HappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.appointment.ID

	resp, err := f.svc.CheckIn(ctx, id, nil)
	require.NoError(t, err)
	assert.Equal(t, "checked_in", resp.Status)

	f.clock.now = f.clock.now.Add(3 * time.Minute)
	resp, err = f.svc.StartService(ctx, id, &models.StartServiceRequest{StaffID: "teller-7"})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", resp.Status)
	require.NotNil(t, resp.StaffID)
	assert.Equal(t, "teller-7", *resp.StaffID)

	f.clock.now = f.clock.now.Add(20 * time.Minute)
	version := resp.Version
	resp, err = f.svc.Complete(ctx, id, &models.CompleteRequest{ServiceNotes: "account opened", ExpectedVersion: &version})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, int64(3), resp.Version)

	require.Len(t, f.sink.events, 3)
	assert.Equal(t, "customer-1", f.sink.events[0].Actor)
	assert.Equal(t, "teller-7", f.sink.events[2].Actor)
	for _, e := range f.sink.events {
		assert.Equal(t, domain.EventAttended, e.Type)
	}

	// посещение не меняет слот
	assert.Equal(t, 1, f.slotCount(t))
}

func TestService_TerminalStatesRejectEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.appointment.ID

	_, err := f.svc.CancelByCustomer(ctx, id, &models.CancelRequest{Actor: "customer-1", Reason: "changed plans"})
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, id, nil)
	assert.ErrorIs(t, err, domain.ErrIllegalState)
	_, err = f.svc.StartService(ctx, id, &models.StartServiceRequest{StaffID: "teller-7"})
	assert.ErrorIs(t, err, domain.ErrIllegalState)
	_, err = f.svc.Complete(ctx, id, &models.CompleteRequest{ServiceNotes: "x"})
	assert.ErrorIs(t, err, domain.ErrIllegalState)
	_, err = f.svc.CancelByStaff(ctx, id, &models.StaffCancelRequest{StaffID: "teller-7", Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrIllegalState)
	_, err = f.svc.CancelByCustomer(ctx, id, &models.CancelRequest{Actor: "customer-1", Reason: "again"})
	assert.ErrorIs(t, err, domain.ErrIllegalState)

	got, err := f.svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)
	assert.Equal(t, int64(1), got.Version)
	// повторная отмена не освободила слот второй раз
	assert.Zero(t, f.slotCount(t))
}

func TestService_CancelByCustomerReleasesSlot(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.CancelByCustomer(context.Background(), f.appointment.ID,
		&models.CancelRequest{Actor: "customer-1", Reason: "sick"})
	require.NoError(t, err)

	assert.Equal(t, "cancelled", resp.Status)
	require.NotNil(t, resp.TerminationReason)
	assert.Equal(t, "customer_cancellation", *resp.TerminationReason)
	assert.Zero(t, f.slotCount(t))

	require.Len(t, f.sink.events, 1)
	assert.Equal(t, domain.EventCancelled, f.sink.events[0].Type)
	assert.Equal(t, domain.StatusBooked, f.sink.events[0].PriorStatus)
}

func TestService_CancelRequiresReason(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CancelByCustomer(context.Background(), f.appointment.ID,
		&models.CancelRequest{Actor: "customer-1", Reason: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, f.slotCount(t))
}

func TestService_CancelByStaffKeepsSlot(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.CancelByStaff(context.Background(), f.appointment.ID,
		&models.StaffCancelRequest{StaffID: "manager-1", Reason: "branch closed early"})
	require.NoError(t, err)

	assert.Equal(t, "cancelled", resp.Status)
	require.NotNil(t, resp.TerminatedBy)
	assert.Equal(t, "manager-1", *resp.TerminatedBy)
	assert.Equal(t, 1, f.slotCount(t))
	assert.Equal(t, domain.EventCancelled, f.sink.events[0].Type)
}

func TestService_CheckInOutsideGraceWindow(t *testing.T) {
	f := newFixture(t)

	f.clock.now = slotStart.Add(6 * time.Minute)
	_, err := f.svc.CheckIn(context.Background(), f.appointment.ID, nil)
	assert.ErrorIs(t, err, domain.ErrOutsideGraceWindow)
	assert.Equal(t, domain.ClassInvalidState, domain.Classify(err))

	f.clock.now = slotStart.Add(5 * time.Minute)
	_, err = f.svc.CheckIn(context.Background(), f.appointment.ID, nil)
	assert.NoError(t, err)
}

func TestService_ExpectedVersionMismatch(t *testing.T) {
	f := newFixture(t)

	stale := int64(4)
	_, err := f.svc.CheckIn(context.Background(), f.appointment.ID, &stale)
	assert.ErrorIs(t, err, domain.ErrVersionMismatch)
}

func TestService_Queries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)

	list, err := f.svc.GetSlotAppointments(ctx, f.appointment.SlotID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.appointment.ReferenceCode, list[0].ReferenceCode)

	summary, err := f.svc.GetDaySummary(ctx, f.appointment.BranchID, slotStart)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.ByStatus["booked"])
	assert.Equal(t, "2026-03-02", summary.Date)
}

type mockAppointmentRepo struct {
	mock.Mock
}

func (m *mockAppointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*domain.Appointment); ok {
		return a.Clone(), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAppointmentRepo) FindBySlot(ctx context.Context, slotID uuid.UUID) ([]*domain.Appointment, error) {
	args := m.Called(ctx, slotID)
	return args.Get(0).([]*domain.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) CountByStatus(ctx context.Context, branchID uuid.UUID, day time.Time) (map[domain.AppointmentStatus]int, error) {
	args := m.Called(ctx, branchID, day)
	return args.Get(0).(map[domain.AppointmentStatus]int), args.Error(1)
}

func (m *mockAppointmentRepo) ConditionalUpdate(ctx context.Context, a *domain.Appointment, expectedVersion int64) (bool, error) {
	args := m.Called(ctx, a, expectedVersion)
	return args.Bool(0), args.Error(1)
}

type passThroughTx struct{}

func (passThroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

func (passThroughTx) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestService_AttendanceRetriesExhausted(t *testing.T) {
	slot := domain.NewSlot(uuid.New(), slotStart, "10:00", "10:30", 2, bookedAt)
	appointment, err := domain.NewAppointment(slot, "customer-1", "deposit", bookedAt)
	require.NoError(t, err)

	repo := &mockAppointmentRepo{}
	repo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
	repo.On("ConditionalUpdate", mock.Anything, mock.Anything, int64(0)).Return(false, nil)

	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())
	coordinator := slots.NewCoordinator(nil, passThroughTx{}, m, slots.Options{MaxAttempts: 3}, logger.Discard())
	sink := &recordingSink{}

	svc := NewService(repo, coordinator, sink, passThroughTx{}, m, 5, logger.Discard())
	svc.timeProvider = &clock{now: slotStart}

	_, err = svc.CheckIn(context.Background(), appointment.ID, nil)
	assert.ErrorIs(t, err, domain.ErrConcurrencyExhausted)
	repo.AssertNumberOfCalls(t, "ConditionalUpdate", 3)
	assert.Empty(t, sink.events)
}
