package reschedule_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("reschedule_booking: %w", domain.ErrValidation)

	// ErrSlotStarted возвращается, когда новый слот уже начался
	ErrSlotStarted = fmt.Errorf("reschedule_booking: new slot has already started: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
