package branch

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

var (
	// ErrBranchNotFound возвращается, когда отделение не найдено
	ErrBranchNotFound = fmt.Errorf("branch.repository: %w", domain.ErrBranchNotFound)

	// ErrHoursNotFound возвращается, когда для даты не заданы часы работы ни на одном уровне
	ErrHoursNotFound = fmt.Errorf("branch.repository: operating hours %w", domain.ErrNotConfigured)

	// ErrCapacityNotFound возвращается, когда для типа дня не заданы параметры мощности
	ErrCapacityNotFound = fmt.Errorf("branch.repository: capacity %w", domain.ErrNotConfigured)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("branch.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("branch.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("branch.repository: failed to scan row")
)
