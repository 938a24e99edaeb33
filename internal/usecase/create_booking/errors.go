package create_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("create_booking: %w", domain.ErrValidation)

	// ErrSlotOfOtherBranch возвращается, когда слот принадлежит другому отделению
	ErrSlotOfOtherBranch = fmt.Errorf("create_booking: slot belongs to another branch: %w", domain.ErrValidation)

	// ErrSlotStarted возвращается, когда слот уже начался
	ErrSlotStarted = fmt.Errorf("create_booking: slot has already started: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
