package no_show_sweep

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// AppointmentStore хранилище записей
type AppointmentStore interface {
	// FindUnattendedBefore BOOKED/CHECKED_IN записи на day и раньше с id > cursor, по возрастанию id
	FindUnattendedBefore(ctx context.Context, day time.Time, cursor uuid.UUID, limit int) ([]*domain.Appointment, error)
	ConditionalUpdate(ctx context.Context, a *domain.Appointment, expectedVersion int64) (bool, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventSink получатель событий жизненного цикла записи
type EventSink interface {
	Publish(ctx context.Context, events ...domain.LifecycleEvent)
}

// Metrics метрики обхода
type Metrics interface {
	AddSweepAppointments(result string, n int)
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
