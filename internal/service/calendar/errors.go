package calendar

import "errors"

var (
	// ErrInvalidDate возвращается для нулевой даты
	ErrInvalidDate = errors.New("calendar.service: invalid date")

	// ErrLookupFailed возвращается, когда праздники страны получить не удалось
	ErrLookupFailed = errors.New("calendar.service: holiday lookup failed")
)
