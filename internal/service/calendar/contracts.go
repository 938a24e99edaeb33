package calendar

import (
	"context"

	"github.com/m04kA/SMC-BranchAppointments/internal/integrations/holidays"
)

// HolidayLookup источник государственных праздников страны.
// Результат с Degraded кэшируется ненадолго, чтобы провайдер был опрошен снова.
type HolidayLookup interface {
	Holidays(ctx context.Context, countryCode string, year int) (holidays.Result, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
