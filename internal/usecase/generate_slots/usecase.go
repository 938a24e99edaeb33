package generate_slots

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// branchWorkers сколько отделений генерируется параллельно
const branchWorkers = 4

// UseCase use case генерации слотов на скользящее окно дней
type UseCase struct {
	branches           BranchDirectory
	slotStore          SlotStore
	calendar           CalendarPolicy
	metrics            Metrics
	timeProvider       TimeProvider
	logger             Logger
	distributionFactor int
	defaultWindow      int
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	branches BranchDirectory,
	slotStore SlotStore,
	calendar CalendarPolicy,
	metrics Metrics,
	distributionFactor int,
	defaultWindow int,
	logger Logger,
) *UseCase {
	if distributionFactor < 1 {
		distributionFactor = domain.DefaultDistributionFactor
	}
	if defaultWindow < 1 {
		defaultWindow = domain.DefaultGenerationWindow
	}
	return &UseCase{
		branches:           branches,
		slotStore:          slotStore,
		calendar:           calendar,
		metrics:            metrics,
		timeProvider:       &RealTimeProvider{},
		logger:             logger,
		distributionFactor: distributionFactor,
		defaultWindow:      defaultWindow,
	}
}

// Execute генерирует слоты. Ошибка одного дня не прерывает остальные дни:
// отсутствие часов или мощности пропускает день, инфраструктурные ошибки собираются в ErrPartialFailure.
// Повторный запуск не создаёт дубликатов.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	now := uc.timeProvider.Now()

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.defaultWindow, now); err != nil {
		uc.logger.Warn("GenerateSlots: validation failed: %v", err)
		return nil, err
	}

	from := domain.CivilDay(req.FromDate)
	to := from.AddDate(0, 0, req.WindowDays-1)
	uc.logger.Info("GenerateSlots: window %s..%s, branch=%v",
		from.Format(domain.DateFormat), to.Format(domain.DateFormat), req.BranchID)

	// 2. Определяем отделения
	branches, err := uc.resolveBranches(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &Response{FromDate: from, ToDate: to, Branches: len(branches)}

	// 3. Генерируем по отделениям параллельно, дни внутри отделения последовательно
	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(branchWorkers)

	for _, branch := range branches {
		g.Go(func() error {
			for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
				if err := gctx.Err(); err != nil {
					return err
				}

				result, err := uc.generateDay(gctx, branch, day, now)

				mu.Lock()
				resp.add(result)
				if err != nil {
					errs = append(errs, err)
				}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		uc.logger.Error("GenerateSlots: interrupted: %v", err)
		return resp, err
	}

	uc.logger.Info("GenerateSlots: branches=%d processed=%d skipped=%d failed=%d created=%d existing=%d",
		resp.Branches, resp.DaysProcessed, resp.DaysSkipped, resp.DaysFailed, resp.SlotsCreated, resp.SlotsExisting)

	if len(errs) > 0 {
		return resp, fmt.Errorf("%w: %d days: %w", ErrPartialFailure, len(errs), errors.Join(errs...))
	}
	return resp, nil
}

func (uc *UseCase) resolveBranches(ctx context.Context, req *Request) ([]*domain.Branch, error) {
	if req.BranchID == nil {
		branches, err := uc.branches.ListActive(ctx)
		if err != nil {
			uc.logger.Error("GenerateSlots: failed to list branches: %v", err)
			return nil, fmt.Errorf("%w: failed to list branches: %v", ErrInternal, err)
		}
		return branches, nil
	}

	branch, err := uc.branches.GetBranch(ctx, *req.BranchID)
	if err != nil {
		if errors.Is(err, domain.ErrBranchNotFound) {
			uc.logger.Warn("GenerateSlots: branch=%s not found", *req.BranchID)
			return nil, err
		}
		uc.logger.Error("GenerateSlots: failed to get branch=%s: %v", *req.BranchID, err)
		return nil, fmt.Errorf("%w: failed to get branch: %v", ErrInternal, err)
	}
	if !branch.IsActive {
		uc.logger.Warn("GenerateSlots: branch=%s is inactive", branch.ID)
		return nil, ErrBranchInactive
	}
	return []*domain.Branch{branch}, nil
}

// generateDay генерирует слоты одного дня одного отделения
func (uc *UseCase) generateDay(ctx context.Context, branch *domain.Branch, day, now time.Time) (dayResult, error) {
	date := day.Format(domain.DateFormat)

	// 1. Тип дня по календарю страны отделения
	dayType, err := uc.calendar.Classify(ctx, day, branch.CountryCode)
	if err != nil {
		uc.logger.Error("GenerateSlots: branch=%s day=%s: calendar: %v", branch.ID, date, err)
		return dayResult{failed: true}, fmt.Errorf("branch %s day %s: %w", branch.ID, date, err)
	}

	// 2. Часы работы
	hours, err := uc.branches.GetOperatingHours(ctx, branch.ID, day)
	if err != nil {
		return uc.skipOrFail(branch, date, "operating hours", err)
	}
	if hours.IsClosed {
		uc.logger.Info("GenerateSlots: branch=%s is closed on %s", branch.ID, date)
		return dayResult{skipped: true}, nil
	}
	if err := hours.Validate(); err != nil {
		uc.logger.Warn("GenerateSlots: branch=%s day=%s: invalid operating hours: %v", branch.ID, date, err)
		return dayResult{skipped: true}, nil
	}

	// 3. Параметры мощности для типа дня
	capacity, err := uc.branches.GetCapacity(ctx, branch.ID, dayType)
	if err != nil {
		return uc.skipOrFail(branch, date, "capacity for "+string(dayType), err)
	}
	if err := capacity.Validate(); err != nil {
		uc.logger.Warn("GenerateSlots: branch=%s day=%s: invalid capacity: %v", branch.ID, date, err)
		return dayResult{skipped: true}, nil
	}

	// 4. Раскладываем слоты и сохраняем без дубликатов
	slots, err := buildDaySlots(branch.ID, day, hours, capacity, uc.distributionFactor, now)
	if err != nil {
		uc.logger.Warn("GenerateSlots: branch=%s day=%s: %v", branch.ID, date, err)
		return dayResult{skipped: true}, nil
	}

	created, err := uc.slotStore.UpsertMany(ctx, slots)
	if err != nil {
		uc.logger.Error("GenerateSlots: branch=%s day=%s: failed to save slots: %v", branch.ID, date, err)
		return dayResult{failed: true}, fmt.Errorf("%w: branch %s day %s: %v", ErrInternal, branch.ID, date, err)
	}

	uc.metrics.AddSlotsGenerated(string(dayType), created)
	return dayResult{created: created, existing: len(slots) - created}, nil
}

func (uc *UseCase) skipOrFail(branch *domain.Branch, date, what string, err error) (dayResult, error) {
	if errors.Is(err, domain.ErrNotConfigured) {
		uc.logger.Warn("GenerateSlots: branch=%s day=%s: %s not configured, day skipped", branch.ID, date, what)
		return dayResult{skipped: true}, nil
	}
	uc.logger.Error("GenerateSlots: branch=%s day=%s: failed to get %s: %v", branch.ID, date, what, err)
	return dayResult{failed: true}, fmt.Errorf("%w: branch %s day %s: %s: %v", ErrInternal, branch.ID, date, what, err)
}
