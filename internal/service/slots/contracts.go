package slots

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// SlotStore порт хранилища слотов с условной записью по версии
type SlotStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error)
	// ConditionalUpdate записывает слот, только если сохранённая версия равна expectedVersion.
	// false без ошибки означает, что конкурент успел раньше.
	ConditionalUpdate(ctx context.Context, s *domain.Slot, expectedVersion int64) (bool, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics метрики переходов слотов
type Metrics interface {
	IncSlotTransition(action, outcome string)
	IncOCCRetry(operation string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени в UTC
type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}
