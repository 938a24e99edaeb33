package holidays

import "time"

// Holiday праздничный день
type Holiday struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

// Result праздники страны за год. Degraded - провайдер не ответил, список взят только из конфигурации.
type Result struct {
	Holidays []Holiday
	Degraded bool
}

// publicHoliday элемент ответа провайдера (формат Nager.Date)
type publicHoliday struct {
	Date        string `json:"date"` // YYYY-MM-DD
	LocalName   string `json:"localName"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
	Global      bool   `json:"global"`
}

// Logger интерфейс логгера
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
