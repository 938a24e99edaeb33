package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

var (
	ErrSlotNotFound            = fmt.Errorf("memory.repository: %w", domain.ErrSlotNotFound)
	ErrAppointmentNotFound     = fmt.Errorf("memory.repository: %w", domain.ErrAppointmentNotFound)
	ErrActiveAppointmentExists = fmt.Errorf("memory.repository: %w", domain.ErrAlreadyBooked)
	ErrBranchNotFound          = fmt.Errorf("memory.repository: %w", domain.ErrBranchNotFound)
	ErrHoursNotFound           = fmt.Errorf("memory.repository: operating hours %w", domain.ErrNotConfigured)
	ErrCapacityNotFound        = fmt.Errorf("memory.repository: capacity %w", domain.ErrNotConfigured)
	ErrDuplicateAppointment    = errors.New("memory.repository: appointment already exists")
)

type slotKey struct {
	branchID uuid.UUID
	day      time.Time
	start    string
}

type txMarker struct{}

// Store хранилище в памяти процесса для драйвера memory и тестов.
// Транзакция держит общий мьютекс на всё время fn и откатывает изменения по снимку при ошибке.
type Store struct {
	mu sync.Mutex

	slots        map[uuid.UUID]*domain.Slot
	slotKeys     map[slotKey]uuid.UUID
	appointments map[uuid.UUID]*domain.Appointment

	branches     map[uuid.UUID]*domain.Branch
	weekdayHours map[uuid.UUID]map[time.Weekday]domain.OperatingHours
	dateHours    map[uuid.UUID]map[time.Time]domain.OperatingHours
	capacity     map[uuid.UUID]map[domain.DayType]domain.AppointmentCapacity
}

func NewStore() *Store {
	return &Store{
		slots:        make(map[uuid.UUID]*domain.Slot),
		slotKeys:     make(map[slotKey]uuid.UUID),
		appointments: make(map[uuid.UUID]*domain.Appointment),
		branches:     make(map[uuid.UUID]*domain.Branch),
		weekdayHours: make(map[uuid.UUID]map[time.Weekday]domain.OperatingHours),
		dateHours:    make(map[uuid.UUID]map[time.Time]domain.OperatingHours),
		capacity:     make(map[uuid.UUID]map[domain.DayType]domain.AppointmentCapacity),
	}
}

// Slots репозиторий слотов поверх хранилища
func (s *Store) Slots() *SlotRepository {
	return &SlotRepository{store: s}
}

// Appointments репозиторий записей поверх хранилища
func (s *Store) Appointments() *AppointmentRepository {
	return &AppointmentRepository{store: s}
}

// Branches справочник отделений поверх хранилища
func (s *Store) Branches() *BranchRepository {
	return &BranchRepository{store: s}
}

// Do выполняет fn атомарно: при ошибке все изменения слотов и записей откатываются
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slots, slotKeys, appointments := s.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, s)); err != nil {
		s.slots, s.slotKeys, s.appointments = slots, slotKeys, appointments
		return err
	}
	return nil
}

// DoSerializable в памяти совпадает с Do: транзакции и так выполняются по одной
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

func (s *Store) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txMarker{}).(*Store)
	return ok && owner == s
}

// lock берёт мьютекс, если вызов не внутри транзакции этого же хранилища
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) snapshot() (map[uuid.UUID]*domain.Slot, map[slotKey]uuid.UUID, map[uuid.UUID]*domain.Appointment) {
	slots := make(map[uuid.UUID]*domain.Slot, len(s.slots))
	for id, sl := range s.slots {
		slots[id] = sl.Clone()
	}
	keys := make(map[slotKey]uuid.UUID, len(s.slotKeys))
	for k, v := range s.slotKeys {
		keys[k] = v
	}
	appointments := make(map[uuid.UUID]*domain.Appointment, len(s.appointments))
	for id, a := range s.appointments {
		appointments[id] = a.Clone()
	}
	return slots, keys, appointments
}
