package no_show_sweep

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("no_show_sweep: %w", domain.ErrValidation)

	// ErrPartialFailure возвращается, когда часть страниц не удалось обработать
	ErrPartialFailure = errors.New("no_show_sweep: some pages failed")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("no_show_sweep: internal error")
)
