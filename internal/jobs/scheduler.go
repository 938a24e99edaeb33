package jobs

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// Metrics метрики фоновых задач
type Metrics interface {
	IncJobRun(job, status string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Func тело задачи
type Func func(ctx context.Context) error

type job struct {
	name      string
	interval  time.Duration
	immediate bool
	fn        Func
}

// Scheduler запускает задачи по таймеру, каждую в своей горутине.
// Задачи идемпотентны, поэтому параллельный запуск на нескольких инстансах допустим.
// Внутри процесса запуски одной задачи не пересекаются: тики во время выполнения теряются.
type Scheduler struct {
	jobs    []*job
	metrics Metrics
	logger  Logger
}

// NewScheduler создает новый планировщик
func NewScheduler(metrics Metrics, logger Logger) *Scheduler {
	return &Scheduler{metrics: metrics, logger: logger}
}

// Register добавляет задачу. Нулевой интервал - задача только для ручного запуска и не регистрируется.
func (s *Scheduler) Register(name string, interval time.Duration, immediate bool, fn Func) {
	if interval <= 0 {
		s.logger.Info("Scheduler: job %s has no interval, manual trigger only", name)
		return
	}
	s.jobs = append(s.jobs, &job{name: name, interval: interval, immediate: immediate, fn: fn})
}

// Jobs имена зарегистрированных задач
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for _, j := range s.jobs {
		names = append(names, j.name)
	}
	return names
}

// Run блокируется до отмены ctx
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.jobs) == 0 {
		<-ctx.Done()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, j := range s.jobs {
		g.Go(func() error {
			s.loop(gctx, j)
			return nil
		})
	}
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	s.logger.Info("Scheduler: job %s every %s", j.name, j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	if j.immediate {
		s.runOnce(ctx, j)
	}
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler: job %s stopped", j.name)
			return
		case <-ticker.C:
			s.runOnce(ctx, j)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, j *job) {
	start := time.Now()
	err := j.fn(ctx)
	switch {
	case err == nil:
		s.metrics.IncJobRun(j.name, "ok")
		s.logger.Info("Scheduler: job %s finished in %s", j.name, time.Since(start))
	case errors.Is(err, context.Canceled):
		s.metrics.IncJobRun(j.name, "cancelled")
	case domain.IsDomainError(err):
		s.metrics.IncJobRun(j.name, "rejected")
		s.logger.Warn("Scheduler: job %s rejected: %v", j.name, err)
	default:
		s.metrics.IncJobRun(j.name, "error")
		s.logger.Error("Scheduler: job %s failed after %s: %v", j.name, time.Since(start), err)
	}
}
