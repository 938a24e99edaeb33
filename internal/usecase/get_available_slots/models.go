package get_available_slots

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/pkg/types"
)

// Request модель запроса на получение слотов отделения за день
type Request struct {
	BranchID uuid.UUID
	Date     time.Time // Дата (без времени)
	// IncludeUnavailable вернуть и заполненные, заблокированные, уже начавшиеся слоты
	IncludeUnavailable bool
}

// Response модель ответа со списком слотов
type Response struct {
	BranchID uuid.UUID
	Date     time.Time
	Slots    []Slot
}

// Slot модель временного слота
type Slot struct {
	ID             uuid.UUID
	StartTime      types.TimeString // Время начала слота (например, "10:00")
	EndTime        types.TimeString
	AvailableSpots int // Количество свободных мест
	TotalSpots     int // Общее количество мест
	Status         domain.SlotStatus
	Version        int64
}
