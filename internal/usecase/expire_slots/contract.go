package expire_slots

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// SlotStore хранилище слотов
type SlotStore interface {
	// ListElapsed не истекшие слоты с днём раньше before, после after в порядке (day, id)
	ListElapsed(ctx context.Context, before time.Time, after domain.SlotCursor, limit int) ([]*domain.Slot, error)
}

// SlotCoordinator применяет переходы слота с оптимистичным повтором
type SlotCoordinator interface {
	Apply(ctx context.Context, slotID uuid.UUID, action domain.SlotAction) (*domain.Slot, error)
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
