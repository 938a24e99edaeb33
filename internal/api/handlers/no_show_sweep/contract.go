package no_show_sweep

import (
	"context"

	noShowSweepUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/no_show_sweep"
)

type UseCase interface {
	Execute(ctx context.Context, req *noShowSweepUC.Request) (*noShowSweepUC.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
