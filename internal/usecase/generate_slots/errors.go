package generate_slots

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("generate_slots: %w", domain.ErrValidation)

	// ErrBranchInactive возвращается при генерации для закрытого отделения
	ErrBranchInactive = fmt.Errorf("generate_slots: branch is inactive: %w", domain.ErrIllegalState)

	// ErrPartialFailure возвращается, когда часть дней не удалось обработать из-за инфраструктуры
	ErrPartialFailure = errors.New("generate_slots: some days failed")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("generate_slots: internal error")
)
