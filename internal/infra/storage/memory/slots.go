package memory

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// SlotRepository слоты в памяти
type SlotRepository struct {
	store *Store
}

func (r *SlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	defer r.store.lock(ctx)()

	s, ok := r.store.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return s.Clone(), nil
}

func (r *SlotRepository) FindByBranchAndDay(ctx context.Context, branchID uuid.UUID, day time.Time) ([]*domain.Slot, error) {
	defer r.store.lock(ctx)()

	day = domain.CivilDay(day)
	out := make([]*domain.Slot, 0)
	for _, s := range r.store.slots {
		if s.BranchID == branchID && s.Day.Equal(day) {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.IsBefore(out[j].StartTime) })
	return out, nil
}

// UpsertMany вставляет только слоты с новым (branch, day, start)
func (r *SlotRepository) UpsertMany(ctx context.Context, slots []*domain.Slot) (int, error) {
	defer r.store.lock(ctx)()

	inserted := 0
	for _, s := range slots {
		key := slotKey{branchID: s.BranchID, day: domain.CivilDay(s.Day), start: s.StartTime.String()}
		if _, exists := r.store.slotKeys[key]; exists {
			continue
		}
		c := s.Clone()
		c.Day = key.day
		r.store.slots[c.ID] = c
		r.store.slotKeys[key] = c.ID
		inserted++
	}
	return inserted, nil
}

func (r *SlotRepository) ConditionalUpdate(ctx context.Context, s *domain.Slot, expectedVersion int64) (bool, error) {
	defer r.store.lock(ctx)()

	stored, ok := r.store.slots[s.ID]
	if !ok {
		return false, ErrSlotNotFound
	}
	if stored.Version != expectedVersion {
		return false, nil
	}

	c := s.Clone()
	c.Version = expectedVersion + 1
	r.store.slots[s.ID] = c
	s.Version = c.Version
	return true, nil
}

// ListElapsed keyset-страница по (day, id), как в PostgreSQL (сравнение uuid побайтно)
func (r *SlotRepository) ListElapsed(ctx context.Context, before time.Time, after domain.SlotCursor, limit int) ([]*domain.Slot, error) {
	defer r.store.lock(ctx)()

	before = domain.CivilDay(before)
	out := make([]*domain.Slot, 0)
	for _, s := range r.store.slots {
		if !s.Day.Before(before) || s.Status == domain.SlotExpired {
			continue
		}
		if !after.IsZero() && !slotAfter(s, after) {
			continue
		}
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *SlotRepository) CountByBranchAndRange(ctx context.Context, branchID uuid.UUID, from, to time.Time) (int, error) {
	defer r.store.lock(ctx)()

	from, to = domain.CivilDay(from), domain.CivilDay(to)
	count := 0
	for _, s := range r.store.slots {
		if s.BranchID == branchID && !s.Day.Before(from) && !s.Day.After(to) {
			count++
		}
	}
	return count, nil
}

func slotAfter(s *domain.Slot, c domain.SlotCursor) bool {
	day := domain.CivilDay(s.Day)
	if !day.Equal(c.Day) {
		return day.After(c.Day)
	}
	return bytes.Compare(s.ID[:], c.ID[:]) > 0
}
