package appointment

import (
	"github.com/m04kA/SMC-BranchAppointments/pkg/dbmetrics"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// uniqueViolation код ошибки PostgreSQL unique_violation
const uniqueViolation = "23505"

// activeCustomerDayIndex индекс "одна активная запись на клиента в день"
const activeCustomerDayIndex = "uq_appointments_active_customer_day"
