package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/pkg/retry"
)

// Options параметры оптимистичного повтора
type Options struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Coordinator применяет переходы к слоту через read-modify-conditional-write.
// Проигранная гонка версий повторяется ограниченное число раз, доменные отказы не повторяются.
type Coordinator struct {
	store        SlotStore
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
	opts         Options
}

// NewCoordinator создает новый экземпляр координатора
func NewCoordinator(
	store SlotStore,
	txManager TransactionManager,
	metrics Metrics,
	opts Options,
	logger Logger,
) *Coordinator {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = domain.DefaultOCCMaxAttempts
	}
	if opts.Backoff < 0 {
		opts.Backoff = 0
	}
	return &Coordinator{
		store:        store,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		opts:         opts,
	}
}

// Apply применяет действие к слоту. Каждая попытка - отдельная короткая транзакция,
// между попытками транзакция не удерживается.
func (c *Coordinator) Apply(ctx context.Context, slotID uuid.UUID, action domain.SlotAction) (*domain.Slot, error) {
	var result *domain.Slot

	err := c.Retry(ctx, "ApplySlotAction", func(ctx context.Context) error {
		return c.txManager.Do(ctx, func(txCtx context.Context) error {
			updated, err := c.ApplyInTx(txCtx, slotID, action)
			if err != nil {
				return err
			}
			result = updated
			return nil
		})
	})

	c.metrics.IncSlotTransition(action.Name(), domain.Outcome(err))
	if err != nil {
		return nil, err
	}

	c.logger.Info("ApplySlotAction: %s slot=%s count=%d/%d status=%s version=%d",
		action.Name(), slotID, result.BookingCount, result.MaxBookingCapacity, result.Status, result.Version)
	return result, nil
}

// ApplyInTx одна попытка: чтение, переход в памяти и условная запись.
// Проигранная гонка возвращается как domain.ErrVersionConflict, повтор остаётся за вызывающим.
func (c *Coordinator) ApplyInTx(ctx context.Context, slotID uuid.UUID, action domain.SlotAction) (*domain.Slot, error) {
	// 1. Читаем текущее состояние вместе с версией
	current, err := c.store.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, domain.ErrSlotNotFound) {
			c.logger.Warn("ApplySlotAction: slot=%s not found", slotID)
			return nil, err
		}
		return nil, fmt.Errorf("%w: ApplyInTx - find slot %s: %v", ErrInternal, slotID, err)
	}

	// 2. Применяем переход к копии
	next, err := current.Apply(action)
	if err != nil {
		c.logger.Warn("ApplySlotAction: %s rejected for slot=%s status=%s count=%d/%d: %v",
			action.Name(), slotID, current.Status, current.BookingCount, current.MaxBookingCapacity, err)
		return nil, err
	}

	// 3. Условная запись по прочитанной версии
	ok, err := c.store.ConditionalUpdate(ctx, next, current.Version)
	if err != nil {
		if errors.Is(err, domain.ErrSlotNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: ApplyInTx - update slot %s: %v", ErrInternal, slotID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: slot %s version %d", domain.ErrVersionConflict, slotID, current.Version)
	}

	return next, nil
}

// Block блокирует слот для новых записей, уже сделанные записи сохраняются
func (c *Coordinator) Block(ctx context.Context, slotID uuid.UUID) (*domain.Slot, error) {
	return c.Apply(ctx, slotID, domain.BlockSlot{Now: c.timeProvider.Now()})
}

// Retry выполняет fn с повтором только при конфликте версий.
// Исчерпание попыток превращается в domain.ErrConcurrencyExhausted.
func (c *Coordinator) Retry(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	err := retry.Do(ctx, retry.Policy{
		MaxAttempts: c.opts.MaxAttempts,
		Backoff:     c.opts.Backoff,
		RetryIf: func(err error) bool {
			return errors.Is(err, domain.ErrVersionConflict)
		},
		OnRetry: func(attempt int, err error) {
			c.metrics.IncOCCRetry(operation)
			c.logger.Warn("%s: attempt %d/%d lost a version race: %v", operation, attempt, c.opts.MaxAttempts, err)
		},
	}, func(ctx context.Context, _ int) error {
		return fn(ctx)
	})

	if errors.Is(err, retry.ErrExhausted) && errors.Is(err, domain.ErrVersionConflict) {
		c.logger.Warn("%s: gave up after %d attempts", operation, c.opts.MaxAttempts)
		return domain.ErrConcurrencyExhausted
	}
	return err
}
