package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// UseCase use case для получения слотов отделения на день
type UseCase struct {
	branches     BranchDirectory
	slotStore    SlotStore
	timeProvider TimeProvider
	logger       Logger
	horizonDays  int
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(branches BranchDirectory, slotStore SlotStore, horizonDays int, logger Logger) *UseCase {
	return &UseCase{
		branches:     branches,
		slotStore:    slotStore,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		horizonDays:  horizonDays,
	}
}

// Execute выполняет use case получения слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: branch=%s, date=%s, all=%t",
		req.BranchID, req.Date.Format(domain.DateFormat), req.IncludeUnavailable)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Проверяем дату
	if err := validateDate(req.Date, now, uc.horizonDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: invalid date %s: %v", req.Date.Format(domain.DateFormat), err)
		return nil, err
	}

	// 4. Проверяем отделение
	branch, err := uc.branches.GetBranch(ctx, req.BranchID)
	if err != nil {
		if errors.Is(err, domain.ErrBranchNotFound) {
			uc.logger.Warn("GetAvailableSlots: branch id=%s not found", req.BranchID)
			return nil, err
		}
		uc.logger.Error("GetAvailableSlots: failed to get branch id=%s: %v", req.BranchID, err)
		return nil, fmt.Errorf("%w: failed to get branch: %v", ErrInternal, err)
	}

	// 5. Получаем слоты дня
	daySlots, err := uc.slotStore.FindByBranchAndDay(ctx, branch.ID, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get slots for branch id=%s: %v", branch.ID, err)
		return nil, fmt.Errorf("%w: failed to get slots: %v", ErrInternal, err)
	}

	// 6. Отбираем слоты, на которые можно записаться
	slots := make([]Slot, 0, len(daySlots))
	for _, s := range daySlots {
		if !req.IncludeUnavailable && (!s.IsBookable() || !s.StartsAt().After(now)) {
			continue
		}
		slots = append(slots, Slot{
			ID:             s.ID,
			StartTime:      s.StartTime,
			EndTime:        s.EndTime,
			AvailableSpots: s.RemainingCapacity(),
			TotalSpots:     s.MaxBookingCapacity,
			Status:         s.Status,
			Version:        s.Version,
		})
	}

	uc.logger.Info("GetAvailableSlots: branch=%s, date=%s: %d of %d slots",
		branch.ID, req.Date.Format(domain.DateFormat), len(slots), len(daySlots))

	return &Response{
		BranchID: branch.ID,
		Date:     domain.CivilDay(req.Date),
		Slots:    slots,
	}, nil
}
