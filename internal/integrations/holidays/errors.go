package holidays

import "errors"

var (
	// ErrCountryNotSupported возвращается, когда провайдер не знает страну
	ErrCountryNotSupported = errors.New("holidays client: country not supported")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("holidays client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от провайдера
	ErrInvalidResponse = errors.New("holidays client: invalid response")
)
