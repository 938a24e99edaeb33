package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// BranchRepository справочник отделений в памяти
type BranchRepository struct {
	store *Store
}

// AddBranch добавляет или заменяет отделение
func (r *BranchRepository) AddBranch(b domain.Branch) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c := b
	r.store.branches[b.ID] = &c
}

// SetWeekdayHours задаёт часы работы по дню недели
func (r *BranchRepository) SetWeekdayHours(branchID uuid.UUID, day time.Weekday, hours domain.OperatingHours) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.weekdayHours[branchID] == nil {
		r.store.weekdayHours[branchID] = make(map[time.Weekday]domain.OperatingHours)
	}
	hours.BranchID = branchID
	r.store.weekdayHours[branchID][day] = hours
}

// SetDateHours задаёт часы работы на конкретную дату (приоритетнее дня недели)
func (r *BranchRepository) SetDateHours(branchID uuid.UUID, date time.Time, hours domain.OperatingHours) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.dateHours[branchID] == nil {
		r.store.dateHours[branchID] = make(map[time.Time]domain.OperatingHours)
	}
	hours.BranchID = branchID
	r.store.dateHours[branchID][domain.CivilDay(date)] = hours
}

// SetCapacity задаёт параметры мощности для типа дня
func (r *BranchRepository) SetCapacity(branchID uuid.UUID, capacity domain.AppointmentCapacity) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.capacity[branchID] == nil {
		r.store.capacity[branchID] = make(map[domain.DayType]domain.AppointmentCapacity)
	}
	capacity.BranchID = branchID
	r.store.capacity[branchID][capacity.DayType] = capacity
}

func (r *BranchRepository) GetBranch(ctx context.Context, id uuid.UUID) (*domain.Branch, error) {
	defer r.store.lock(ctx)()

	b, ok := r.store.branches[id]
	if !ok {
		return nil, ErrBranchNotFound
	}
	c := *b
	return &c, nil
}

func (r *BranchRepository) ListActive(ctx context.Context) ([]*domain.Branch, error) {
	defer r.store.lock(ctx)()

	out := make([]*domain.Branch, 0, len(r.store.branches))
	for _, b := range r.store.branches {
		if b.IsActive {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetOperatingHours дата важнее дня недели
func (r *BranchRepository) GetOperatingHours(ctx context.Context, branchID uuid.UUID, date time.Time) (*domain.OperatingHours, error) {
	defer r.store.lock(ctx)()

	if h, ok := r.store.dateHours[branchID][domain.CivilDay(date)]; ok {
		return &h, nil
	}
	if h, ok := r.store.weekdayHours[branchID][date.Weekday()]; ok {
		return &h, nil
	}
	return nil, ErrHoursNotFound
}

func (r *BranchRepository) GetCapacity(ctx context.Context, branchID uuid.UUID, dayType domain.DayType) (*domain.AppointmentCapacity, error) {
	defer r.store.lock(ctx)()

	c, ok := r.store.capacity[branchID][dayType]
	if !ok {
		return nil, ErrCapacityNotFound
	}
	return &c, nil
}
