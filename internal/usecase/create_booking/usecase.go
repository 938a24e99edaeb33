package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// UseCase use case для записи клиента на слот
type UseCase struct {
	slotReader      SlotReader
	appointmentRepo AppointmentRepository
	coordinator     SlotCoordinator
	events          EventSink
	txManager       TransactionManager
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotReader SlotReader,
	appointmentRepo AppointmentRepository,
	coordinator SlotCoordinator,
	events EventSink,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotReader:      slotReader,
		appointmentRepo: appointmentRepo,
		coordinator:     coordinator,
		events:          events,
		txManager:       txManager,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute занимает место в слоте и создает запись BOOKED.
// Изменение слота и создание записи выполняются в одной транзакции,
// вся единица работы повторяется при проигранной гонке версий слота.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookAppointment: customer=%s, branch=%s, slot=%s, service=%s",
		req.CustomerID, req.BranchID, req.SlotID, req.ServiceType)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var created *domain.Appointment

	// 3. Слот и запись - одна атомарная единица работы
	err := uc.coordinator.Retry(ctx, "BookAppointment", func(ctx context.Context) error {
		return uc.txManager.Do(ctx, func(txCtx context.Context) error {
			// 3.1. Получаем слот
			slot, err := uc.slotReader.FindByID(txCtx, req.SlotID)
			if err != nil {
				if errors.Is(err, domain.ErrSlotNotFound) {
					uc.logger.Warn("BookAppointment: slot=%s not found", req.SlotID)
					return err
				}
				return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
			}

			if err := validateSlot(slot, req.BranchID, now); err != nil {
				uc.logger.Warn("BookAppointment: slot=%s rejected: %v", req.SlotID, err)
				return err
			}

			// 3.2. Не больше одной активной записи клиента на день
			existing, err := uc.appointmentRepo.FindActiveByCustomerAndDay(txCtx, req.CustomerID, slot.Day)
			if err != nil {
				return fmt.Errorf("%w: failed to check active appointment: %v", ErrInternal, err)
			}
			if existing != nil {
				uc.logger.Warn("BookAppointment: customer=%s already has appointment %s on %s",
					req.CustomerID, existing.ReferenceCode, slot.Day.Format(domain.DateFormat))
				return domain.ErrAlreadyBooked
			}

			// 3.3. Занимаем место в слоте
			booked, err := uc.coordinator.ApplyInTx(txCtx, req.SlotID, domain.BookSlot{Now: now})
			if err != nil {
				return err
			}

			// 3.4. Создаем запись
			appointment, err := domain.NewAppointment(booked, req.CustomerID, req.ServiceType, now)
			if err != nil {
				return err
			}
			if err := uc.appointmentRepo.Create(txCtx, appointment); err != nil {
				if errors.Is(err, domain.ErrAlreadyBooked) {
					uc.logger.Warn("BookAppointment: customer=%s lost the race for %s",
						req.CustomerID, slot.Day.Format(domain.DateFormat))
					return err
				}
				return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
			}

			created = appointment
			return nil
		})
	})

	uc.metrics.IncAppointmentTransition("book", domain.Outcome(err))
	if err != nil {
		if domain.Classify(err) == domain.ClassInfrastructure {
			uc.logger.Error("BookAppointment: customer=%s slot=%s: %v", req.CustomerID, req.SlotID, err)
		}
		return nil, err
	}

	// 4. Событие публикуется после коммита
	event := domain.NewLifecycleEvent(domain.EventBooked, created, "", created.CustomerID, now)
	event.Metadata["slot_id"] = created.SlotID.String()
	event.Metadata["service_type"] = created.ServiceType
	uc.events.Publish(ctx, event)

	uc.logger.Info("BookAppointment: created appointment id=%s ref=%s", created.ID, created.ReferenceCode)

	return &Response{
		ID:            created.ID,
		ReferenceCode: created.ReferenceCode,
		SlotID:        created.SlotID,
		BranchID:      created.BranchID,
		CustomerID:    created.CustomerID,
		ServiceType:   created.ServiceType,
		Status:        string(created.Status),
		ScheduledAt:   created.ScheduledAt,
		Version:       created.Version,
		CreatedAt:     created.CreatedAt,
	}, nil
}
