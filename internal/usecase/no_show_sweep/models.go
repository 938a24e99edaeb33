package no_show_sweep

import "time"

// Options параметры обхода
type Options struct {
	GraceDays int
	PageSize  int
	// MaxAttempts попыток на одну страницу
	MaxAttempts int
	Backoff     time.Duration
}

// Request запрос на обход
type Request struct {
	// TargetDate последний обрабатываемый день. Пусто - сегодня минус GraceDays.
	TargetDate time.Time
	// PageSize 0 - значение из Options
	PageSize int
}

// Response отчёт обхода
type Response struct {
	TargetDate  time.Time
	Pages       int
	Processed   int
	Skipped     int
	FailedPages int
}
