package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-BranchAppointments/internal/config"
	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/internal/integrations/eventbus"
	"github.com/m04kA/SMC-BranchAppointments/internal/integrations/holidays"
	bookingsService "github.com/m04kA/SMC-BranchAppointments/internal/service/bookings"
	"github.com/m04kA/SMC-BranchAppointments/internal/service/calendar"
	slotsService "github.com/m04kA/SMC-BranchAppointments/internal/service/slots"
	createBookingUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/create_booking"
	expireSlotsUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/expire_slots"
	generateSlotsUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/generate_slots"
	getAvailableSlotsUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/get_available_slots"
	noShowSweepUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/no_show_sweep"
	rescheduleBookingUC "github.com/m04kA/SMC-BranchAppointments/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-BranchAppointments/pkg/dbmetrics"
	"github.com/m04kA/SMC-BranchAppointments/pkg/logger"
	"github.com/m04kA/SMC-BranchAppointments/pkg/metrics"
)

// EventSink получатель событий жизненного цикла записи
type EventSink interface {
	Publish(ctx context.Context, events ...domain.LifecycleEvent)
}

// App собранный граф зависимостей сервиса
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics

	storage       *Storage
	redis         *redis.Client
	publisher     *eventbus.KafkaPublisher
	stopMetricsCh chan struct{}

	Events         EventSink
	Calendar       *calendar.Policy
	Coordinator    *slotsService.Coordinator
	Bookings       *bookingsService.Service
	CreateBooking  *createBookingUC.UseCase
	Reschedule     *rescheduleBookingUC.UseCase
	GenerateSlots  *generateSlotsUC.UseCase
	AvailableSlots *getAvailableSlotsUC.UseCase
	NoShowSweep    *noShowSweepUC.UseCase
	ExpireSlots    *expireSlotsUC.UseCase
}

// New собирает сервис по конфигурации. m может быть nil, если метрики выключены.
func New(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*App, error) {
	a := &App{
		cfg:           cfg,
		log:           log,
		metrics:       m,
		stopMetricsCh: make(chan struct{}),
	}

	// 1. Хранилище
	storage, err := a.openStorage()
	if err != nil {
		return nil, err
	}
	a.storage = storage
	log.Info("Storage initialized (driver=%s)", storage.Driver)

	// 2. Календарь: праздники из провайдера с кэшем в Redis и статическим списком
	holidayClient := holidays.NewClient(cfg.Holidays.URL, time.Duration(cfg.Holidays.Timeout)*time.Second, log)
	if err := holidayClient.UseStatic(cfg.Holidays.Static); err != nil {
		a.Close()
		return nil, fmt.Errorf("app: holidays: %w", err)
	}
	if cfg.Redis.Address != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		holidayClient.UseRedisCache(a.redis, cfg.Redis.TTL())
		log.Info("Holiday cache enabled (redis=%s, ttl=%s)", cfg.Redis.Address, cfg.Redis.TTL())
	}
	a.Calendar = calendar.NewPolicy(holidayClient, cfg.Calendar.Weekend(), cfg.Calendar.DefaultCountry, log)

	// 3. События жизненного цикла
	if brokers := cfg.Kafka.KafkaBrokers(); len(brokers) > 0 {
		a.publisher = eventbus.NewKafkaPublisher(eventbus.NewKafkaWriter(brokers, log), cfg.Kafka.Topic, log)
		a.Events = a.publisher
		log.Info("Lifecycle events are published to kafka (brokers=%v, topic=%s)", brokers, cfg.Kafka.Topic)
	} else {
		a.Events = eventbus.NewLogSink(log)
		log.Info("Kafka brokers are not configured, lifecycle events are logged only")
	}

	// 4. Координатор слотов, сервисы и use cases
	a.Coordinator = slotsService.NewCoordinator(
		storage.Slots,
		storage.Tx,
		m,
		slotsService.Options{MaxAttempts: cfg.Booking.OCCMaxAttempts, Backoff: cfg.Booking.Backoff()},
		log,
	)
	a.Bookings = bookingsService.NewService(
		storage.Appointments,
		a.Coordinator,
		a.Events,
		storage.Tx,
		m,
		cfg.Booking.CheckInGraceMinutes,
		log,
	)
	a.CreateBooking = createBookingUC.NewUseCase(
		storage.Slots,
		storage.Appointments,
		a.Coordinator,
		a.Events,
		storage.Tx,
		m,
		log,
	)
	a.Reschedule = rescheduleBookingUC.NewUseCase(
		storage.Slots,
		storage.Appointments,
		a.Coordinator,
		a.Events,
		storage.Tx,
		m,
		log,
	)
	a.GenerateSlots = generateSlotsUC.NewUseCase(
		storage.Branches,
		storage.Slots,
		a.Calendar,
		m,
		cfg.Generator.DistributionFactor,
		cfg.Generator.WindowDays,
		log,
	)
	a.AvailableSlots = getAvailableSlotsUC.NewUseCase(storage.Branches, storage.Slots, cfg.Generator.WindowDays, log)
	a.NoShowSweep = noShowSweepUC.NewUseCase(
		storage.Appointments,
		storage.Tx,
		a.Events,
		m,
		noShowSweepUC.Options{
			GraceDays:   cfg.Sweeper.GraceDays,
			PageSize:    cfg.Sweeper.PageSize,
			MaxAttempts: cfg.Booking.OCCMaxAttempts,
			Backoff:     cfg.Booking.Backoff(),
		},
		log,
	)
	a.ExpireSlots = expireSlotsUC.NewUseCase(storage.Slots, a.Coordinator, cfg.Sweeper.GraceDays, log)

	return a, nil
}

func (a *App) openStorage() (*Storage, error) {
	switch a.cfg.Storage.Driver {
	case config.DriverMemory:
		return OpenMemory(a.cfg.Seed, time.Now().UTC())
	case config.DriverPostgres:
		// nil интерфейс, а не nil *metrics.Metrics: иначе dbmetrics запустит сбор статистики пула
		var recorder dbmetrics.Recorder
		if a.metrics != nil {
			recorder = a.metrics
		}
		return OpenPostgres(a.cfg.Database, recorder, a.stopMetricsCh)
	default:
		return nil, fmt.Errorf("%w: storage driver %q", domain.ErrNotConfigured, a.cfg.Storage.Driver)
	}
}

// Close освобождает внешние ресурсы. Повторный вызов безопасен.
func (a *App) Close() error {
	var errs []error

	if a.stopMetricsCh != nil {
		close(a.stopMetricsCh)
		a.stopMetricsCh = nil
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka: %w", err))
		}
		a.publisher = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
		a.redis = nil
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
		a.storage = nil
	}
	return errors.Join(errs...)
}
