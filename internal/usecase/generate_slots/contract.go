package generate_slots

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// BranchDirectory справочник отделений: часы работы и параметры мощности
type BranchDirectory interface {
	GetBranch(ctx context.Context, id uuid.UUID) (*domain.Branch, error)
	ListActive(ctx context.Context) ([]*domain.Branch, error)
	// GetOperatingHours часы работы на дату с учетом иерархии (дата -> день недели)
	GetOperatingHours(ctx context.Context, branchID uuid.UUID, date time.Time) (*domain.OperatingHours, error)
	GetCapacity(ctx context.Context, branchID uuid.UUID, dayType domain.DayType) (*domain.AppointmentCapacity, error)
}

// SlotStore хранилище слотов. UpsertMany не создаёт дубликаты по (branch, day, start).
type SlotStore interface {
	UpsertMany(ctx context.Context, slots []*domain.Slot) (int, error)
}

// CalendarPolicy классификация дня
type CalendarPolicy interface {
	Classify(ctx context.Context, date time.Time, countryCode string) (domain.DayType, error)
}

// Metrics метрики генерации
type Metrics interface {
	AddSlotsGenerated(dayType string, n int)
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
