package memory

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// AppointmentRepository записи в памяти
type AppointmentRepository struct {
	store *Store
}

func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) error {
	defer r.store.lock(ctx)()

	if _, exists := r.store.appointments[a.ID]; exists {
		return ErrDuplicateAppointment
	}
	if a.IsActive() && r.activeFor(a.CustomerID, a.ScheduledDay, a.ID) != nil {
		return ErrActiveAppointmentExists
	}

	c := a.Clone()
	c.ScheduledDay = domain.CivilDay(c.ScheduledDay)
	r.store.appointments[c.ID] = c
	return nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	defer r.store.lock(ctx)()

	a, ok := r.store.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return a.Clone(), nil
}

func (r *AppointmentRepository) FindActiveByCustomerAndDay(ctx context.Context, customerID string, day time.Time) (*domain.Appointment, error) {
	defer r.store.lock(ctx)()

	if a := r.activeFor(customerID, day, uuid.Nil); a != nil {
		return a.Clone(), nil
	}
	return nil, nil
}

// FindUnattendedBefore keyset-страница по id, как в PostgreSQL (сравнение uuid побайтно)
func (r *AppointmentRepository) FindUnattendedBefore(ctx context.Context, day time.Time, cursor uuid.UUID, limit int) ([]*domain.Appointment, error) {
	defer r.store.lock(ctx)()

	day = domain.CivilDay(day)
	out := make([]*domain.Appointment, 0)
	for _, a := range r.store.appointments {
		if a.ScheduledDay.After(day) || !isUnattended(a.Status) {
			continue
		}
		if cursor != uuid.Nil && bytes.Compare(a.ID[:], cursor[:]) <= 0 {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0 })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i] = out[i].Clone()
	}
	return out, nil
}

func (r *AppointmentRepository) FindBySlot(ctx context.Context, slotID uuid.UUID) ([]*domain.Appointment, error) {
	defer r.store.lock(ctx)()

	out := make([]*domain.Appointment, 0)
	for _, a := range r.store.appointments {
		if a.SlotID == slotID {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *AppointmentRepository) ConditionalUpdate(ctx context.Context, a *domain.Appointment, expectedVersion int64) (bool, error) {
	defer r.store.lock(ctx)()

	stored, ok := r.store.appointments[a.ID]
	if !ok {
		return false, ErrAppointmentNotFound
	}
	if stored.Version != expectedVersion {
		return false, nil
	}
	if a.IsActive() && r.activeFor(a.CustomerID, a.ScheduledDay, a.ID) != nil {
		return false, ErrActiveAppointmentExists
	}

	c := a.Clone()
	c.ScheduledDay = domain.CivilDay(c.ScheduledDay)
	c.Version = expectedVersion + 1
	r.store.appointments[a.ID] = c
	a.Version = c.Version
	return true, nil
}

func (r *AppointmentRepository) CountByStatus(ctx context.Context, branchID uuid.UUID, day time.Time) (map[domain.AppointmentStatus]int, error) {
	defer r.store.lock(ctx)()

	day = domain.CivilDay(day)
	counts := make(map[domain.AppointmentStatus]int)
	for _, a := range r.store.appointments {
		if a.BranchID == branchID && a.ScheduledDay.Equal(day) {
			counts[a.Status]++
		}
	}
	return counts, nil
}

// activeFor активная запись клиента на день, кроме except. Вызывается под мьютексом.
func (r *AppointmentRepository) activeFor(customerID string, day time.Time, except uuid.UUID) *domain.Appointment {
	day = domain.CivilDay(day)
	for _, a := range r.store.appointments {
		if a.ID != except && a.CustomerID == customerID && a.ScheduledDay.Equal(day) && a.IsActive() {
			return a
		}
	}
	return nil
}

func isUnattended(s domain.AppointmentStatus) bool {
	for _, u := range domain.UnattendedStatuses {
		if s == u {
			return true
		}
	}
	return false
}
