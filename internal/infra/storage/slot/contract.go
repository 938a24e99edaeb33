package slot

import (
	"github.com/m04kA/SMC-BranchAppointments/pkg/dbmetrics"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
