package expire_slots

import (
	"context"

	expireSlotsUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/expire_slots"
)

type UseCase interface {
	Execute(ctx context.Context, req *expireSlotsUC.Request) (*expireSlotsUC.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
