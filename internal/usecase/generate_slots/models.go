package generate_slots

import (
	"time"

	"github.com/google/uuid"
)

// Request запрос на генерацию слотов
type Request struct {
	// BranchID nil - все активные отделения
	BranchID   *uuid.UUID
	FromDate   time.Time
	WindowDays int
}

// Response отчёт о генерации
type Response struct {
	FromDate      time.Time
	ToDate        time.Time
	Branches      int
	DaysProcessed int
	DaysSkipped   int
	DaysFailed    int
	SlotsCreated  int
	// SlotsExisting слоты, которые уже были в хранилище
	SlotsExisting int
}

func (r *Response) add(other dayResult) {
	switch {
	case other.failed:
		r.DaysFailed++
	case other.skipped:
		r.DaysSkipped++
	default:
		r.DaysProcessed++
		r.SlotsCreated += other.created
		r.SlotsExisting += other.existing
	}
}

type dayResult struct {
	skipped  bool
	failed   bool
	created  int
	existing int
}
