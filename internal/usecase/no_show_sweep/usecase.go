package no_show_sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/pkg/retry"
)

// UseCase переводит не пришедших клиентов в NO_SHOW постранично
type UseCase struct {
	appointments AppointmentStore
	txManager    TransactionManager
	events       EventSink
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
	opts         Options
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointments AppointmentStore,
	txManager TransactionManager,
	events EventSink,
	metrics Metrics,
	opts Options,
	logger Logger,
) *UseCase {
	if opts.GraceDays < 0 {
		opts.GraceDays = domain.DefaultNoShowGraceDays
	}
	if opts.PageSize < 1 {
		opts.PageSize = domain.DefaultSweepPageSize
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = domain.DefaultOCCMaxAttempts
	}
	return &UseCase{
		appointments: appointments,
		txManager:    txManager,
		events:       events,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		opts:         opts,
	}
}

// pageResult итог одной страницы
type pageResult struct {
	size    int
	last    uuid.UUID
	marked  []*domain.Appointment
	prior   map[uuid.UUID]domain.AppointmentStatus
	skipped int
}

// Execute обходит записи до пустой страницы. Каждая страница - отдельная транзакция с повтором.
// Страница, не прошедшая после всех попыток, пропускается: её записи не изменились
// и будут обработаны следующим запуском.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	now := uc.timeProvider.Now()

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.opts, now); err != nil {
		uc.logger.Warn("NoShowSweep: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("NoShowSweep: target date %s, page size %d", req.TargetDate.Format(domain.DateFormat), req.PageSize)

	resp := &Response{TargetDate: req.TargetDate}
	var pageErrs []error
	cursor := uuid.Nil

	for {
		if err := ctx.Err(); err != nil {
			pageErrs = append(pageErrs, err)
			break
		}

		// 2. Обрабатываем страницу с повтором
		page, err := uc.runPage(ctx, req, cursor, now)
		if err != nil {
			// страницу так и не удалось прочитать - дальше идти некуда
			if page == nil {
				uc.logger.Error("NoShowSweep: page after %s failed: %v", cursor, err)
				pageErrs = append(pageErrs, err)
				break
			}
			uc.logger.Error("NoShowSweep: page after %s (%d appointments) failed, leaving it for the next run: %v",
				cursor, page.size, err)
			uc.metrics.AddSweepAppointments("failed", page.size)
			resp.Pages++
			resp.FailedPages++
			pageErrs = append(pageErrs, err)
			cursor = page.last
			continue
		}

		// 3. Пустая страница - обход закончен
		if page.size == 0 {
			break
		}

		resp.Pages++
		resp.Processed += len(page.marked)
		resp.Skipped += page.skipped
		cursor = page.last

		uc.metrics.AddSweepAppointments("no_show", len(page.marked))
		uc.metrics.AddSweepAppointments("skipped", page.skipped)

		// 4. События после коммита страницы
		events := make([]domain.LifecycleEvent, 0, len(page.marked))
		for _, a := range page.marked {
			uc.metrics.IncAppointmentTransition("no_show", domain.Outcome(nil))
			events = append(events, domain.NewLifecycleEvent(domain.EventNoShow, a, page.prior[a.ID], domain.SystemActor, now))
		}
		uc.events.Publish(ctx, events...)
	}

	uc.logger.Info("NoShowSweep: finished, pages=%d processed=%d skipped=%d failed_pages=%d",
		resp.Pages, resp.Processed, resp.Skipped, resp.FailedPages)

	if len(pageErrs) > 0 {
		return resp, fmt.Errorf("%w: %w", ErrPartialFailure, errors.Join(pageErrs...))
	}
	return resp, nil
}

// runPage читает и обрабатывает одну страницу. При ошибке записи возвращает
// размер и последний id прочитанной страницы, чтобы обход мог её пропустить.
func (uc *UseCase) runPage(ctx context.Context, req *Request, cursor uuid.UUID, now time.Time) (*pageResult, error) {
	var (
		result *pageResult
		seen   *pageResult
	)

	err := retry.Do(ctx, retry.Policy{
		MaxAttempts: uc.opts.MaxAttempts,
		Backoff:     uc.opts.Backoff,
		// доменные отказы не повторяются, гонки версий и инфраструктура повторяются
		RetryIf: func(err error) bool {
			return !domain.IsDomainError(err)
		},
		OnRetry: func(attempt int, err error) {
			uc.logger.Warn("NoShowSweep: page after %s attempt %d/%d failed: %v", cursor, attempt, uc.opts.MaxAttempts, err)
		},
	}, func(ctx context.Context, _ int) error {
		return uc.txManager.Do(ctx, func(txCtx context.Context) error {
			page, err := uc.appointments.FindUnattendedBefore(txCtx, req.TargetDate, cursor, req.PageSize)
			if err != nil {
				return fmt.Errorf("%w: failed to fetch page: %v", ErrInternal, err)
			}

			attempt := &pageResult{
				size:  len(page),
				prior: make(map[uuid.UUID]domain.AppointmentStatus, len(page)),
			}
			if len(page) > 0 {
				attempt.last = page[len(page)-1].ID
				seen = attempt
			}

			for _, a := range page {
				prior := a.Status
				readVersion := a.Version

				if err := a.MarkNoShow(now); err != nil {
					uc.logger.Warn("NoShowSweep: appointment=%s skipped: %v", a.ID, err)
					attempt.skipped++
					continue
				}

				ok, err := uc.appointments.ConditionalUpdate(txCtx, a, readVersion)
				if err != nil {
					return fmt.Errorf("%w: failed to update appointment %s: %v", ErrInternal, a.ID, err)
				}
				if !ok {
					return fmt.Errorf("%w: appointment %s version %d", domain.ErrVersionConflict, a.ID, readVersion)
				}

				attempt.prior[a.ID] = prior
				attempt.marked = append(attempt.marked, a)
			}

			result = attempt
			return nil
		})
	})
	if err != nil {
		return seen, err
	}
	return result, nil
}
