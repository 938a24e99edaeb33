package appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("appointment.repository: %w", domain.ErrAppointmentNotFound)

	// ErrActiveAppointmentExists возвращается при нарушении уникальности активной записи клиента на день
	ErrActiveAppointmentExists = fmt.Errorf("appointment.repository: %w", domain.ErrAlreadyBooked)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
