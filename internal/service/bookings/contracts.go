package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	FindBySlot(ctx context.Context, slotID uuid.UUID) ([]*domain.Appointment, error)
	CountByStatus(ctx context.Context, branchID uuid.UUID, day time.Time) (map[domain.AppointmentStatus]int, error)
	ConditionalUpdate(ctx context.Context, a *domain.Appointment, expectedVersion int64) (bool, error)
}

// SlotCoordinator переходы слота с оптимистичной блокировкой
type SlotCoordinator interface {
	ApplyInTx(ctx context.Context, slotID uuid.UUID, action domain.SlotAction) (*domain.Slot, error)
	Retry(ctx context.Context, operation string, fn func(ctx context.Context) error) error
}

// EventSink получатель событий жизненного цикла записи
type EventSink interface {
	Publish(ctx context.Context, events ...domain.LifecycleEvent)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics метрики переходов записи
type Metrics interface {
	IncAppointmentTransition(transition, outcome string)
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

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время в UTC
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}
