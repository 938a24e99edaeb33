package app

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BranchAppointments/internal/jobs"
	expireSlotsUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/expire_slots"
	generateSlotsUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/generate_slots"
	noShowSweepUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/no_show_sweep"
)

const (
	JobGenerateSlots = "generate-slots"
	JobNoShowSweep   = "no-show-sweep"
	JobExpireSlots   = "expire-slots"
)

// Scheduler планировщик с задачами из конфигурации. Задачи с нулевым интервалом доступны только через HTTP.
func (a *App) Scheduler() *jobs.Scheduler {
	s := jobs.NewScheduler(a.metrics, a.log)

	s.Register(JobGenerateSlots, seconds(a.cfg.Generator.Interval), true, func(ctx context.Context) error {
		_, err := a.GenerateSlots.Execute(ctx, &generateSlotsUC.Request{
			FromDate:   time.Now().UTC(),
			WindowDays: a.cfg.Generator.WindowDays,
		})
		return err
	})
	s.Register(JobNoShowSweep, seconds(a.cfg.Sweeper.Interval), false, func(ctx context.Context) error {
		_, err := a.NoShowSweep.Execute(ctx, &noShowSweepUC.Request{})
		return err
	})
	s.Register(JobExpireSlots, seconds(a.cfg.Sweeper.ExpireInterval), false, func(ctx context.Context) error {
		_, err := a.ExpireSlots.Execute(ctx, &expireSlotsUC.Request{})
		return err
	})

	return s
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
