package expire_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

const defaultLimit = 500

// UseCase переводит слоты прошедших дней в EXPIRED
type UseCase struct {
	slotStore    SlotStore
	coordinator  SlotCoordinator
	timeProvider TimeProvider
	logger       Logger
	graceDays    int
}

// NewUseCase создает новый экземпляр use case.
// graceDays совпадает с окном no-show sweep: слоты дней, записи которых ещё могут отменить, не закрываются.
func NewUseCase(slotStore SlotStore, coordinator SlotCoordinator, graceDays int, logger Logger) *UseCase {
	if graceDays < 0 {
		graceDays = domain.DefaultNoShowGraceDays
	}
	return &UseCase{
		slotStore:    slotStore,
		coordinator:  coordinator,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		graceDays:    graceDays,
	}
}

// Execute закрывает слоты keyset-страницами по (day, id).
// Ошибка одного слота не прерывает остальные, курсор проходит мимо него.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	now := uc.timeProvider.Now()
	today := domain.CivilDay(now)

	// 1. Валидация входных данных
	if req.Before.IsZero() {
		req.Before = today.AddDate(0, 0, -uc.graceDays)
	}
	req.Before = domain.CivilDay(req.Before)
	if req.Before.After(today) {
		uc.logger.Warn("ExpireSlots: validation failed: before %s is in the future", req.Before.Format(domain.DateFormat))
		return nil, fmt.Errorf("%w: before date %s is in the future", ErrInvalidInput, req.Before.Format(domain.DateFormat))
	}
	if req.Limit == 0 {
		req.Limit = defaultLimit
	}
	if req.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}

	resp := &Response{Before: req.Before}
	var (
		failures []error
		cursor   domain.SlotCursor
	)

	for {
		if err := ctx.Err(); err != nil {
			return resp, err
		}

		// 2. Следующая страница прошедших слотов после курсора
		page, err := uc.slotStore.ListElapsed(ctx, req.Before, cursor, req.Limit)
		if err != nil {
			uc.logger.Error("ExpireSlots: failed to list elapsed slots: %v", err)
			return resp, fmt.Errorf("%w: failed to list elapsed slots: %v", ErrInternal, err)
		}
		if len(page) == 0 {
			break
		}

		// 3. Закрываем каждый слот через координатор
		for _, s := range page {
			if _, err := uc.coordinator.Apply(ctx, s.ID, domain.ExpireSlot{Now: now}); err != nil {
				uc.logger.Warn("ExpireSlots: slot=%s day=%s: %v", s.ID, s.Day.Format(domain.DateFormat), err)
				resp.Failed++
				failures = append(failures, err)
				continue
			}
			resp.Expired++
		}

		cursor = domain.CursorOf(page[len(page)-1])
		if len(page) < req.Limit {
			break
		}
	}

	uc.logger.Info("ExpireSlots: before %s expired=%d failed=%d", req.Before.Format(domain.DateFormat), resp.Expired, resp.Failed)

	if len(failures) > 0 {
		return resp, errors.Join(failures...)
	}
	return resp, nil
}
