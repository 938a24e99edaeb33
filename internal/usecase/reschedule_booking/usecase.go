package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// UseCase use case для переноса записи на другой слот
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

// Execute освобождает место в текущем слоте, занимает место в новом и обновляет запись.
// Все три изменения в одной транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: appointment=%s, new slot=%s, actor=%s",
		req.AppointmentID, req.NewSlotID, req.Actor)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var result *domain.Appointment

	err := uc.coordinator.Retry(ctx, "RescheduleAppointment", func(ctx context.Context) error {
		return uc.txManager.Do(ctx, func(txCtx context.Context) error {
			// 3.1. Получаем запись
			appointment, err := uc.appointmentRepo.FindByID(txCtx, req.AppointmentID)
			if err != nil {
				if errors.Is(err, domain.ErrAppointmentNotFound) {
					uc.logger.Warn("RescheduleAppointment: appointment=%s not found", req.AppointmentID)
					return err
				}
				return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
			}
			if req.ExpectedVersion != nil {
				if err := appointment.CheckVersion(*req.ExpectedVersion); err != nil {
					return err
				}
			}

			// 3.2. Получаем новый слот
			newSlot, err := uc.slotReader.FindByID(txCtx, req.NewSlotID)
			if err != nil {
				if errors.Is(err, domain.ErrSlotNotFound) {
					uc.logger.Warn("RescheduleAppointment: slot=%s not found", req.NewSlotID)
					return err
				}
				return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
			}
			if err := validateNewSlot(newSlot, now); err != nil {
				return err
			}

			// 3.3. Переход записи: все доменные проверки до изменения слотов
			readVersion := appointment.Version
			oldSlotID := appointment.SlotID
			oldDay := appointment.ScheduledDay
			if err := appointment.Reschedule(now, newSlot); err != nil {
				uc.logger.Warn("RescheduleAppointment: appointment=%s rejected: %v", req.AppointmentID, err)
				return err
			}

			// 3.4. На новый день у клиента не должно быть другой активной записи
			if !domain.SameDay(oldDay, newSlot.Day) {
				other, err := uc.appointmentRepo.FindActiveByCustomerAndDay(txCtx, appointment.CustomerID, newSlot.Day)
				if err != nil {
					return fmt.Errorf("%w: failed to check active appointment: %v", ErrInternal, err)
				}
				if other != nil && other.ID != appointment.ID {
					return domain.ErrAlreadyBooked
				}
			}

			// 3.5. Освобождаем старый слот и занимаем новый
			if _, err := uc.coordinator.ApplyInTx(txCtx, oldSlotID, domain.ReleaseSlot{Now: now}); err != nil {
				return err
			}
			if _, err := uc.coordinator.ApplyInTx(txCtx, newSlot.ID, domain.BookSlot{Now: now}); err != nil {
				return err
			}

			// 3.6. Условная запись по прочитанной версии
			ok, err := uc.appointmentRepo.ConditionalUpdate(txCtx, appointment, readVersion)
			if err != nil {
				if errors.Is(err, domain.ErrAlreadyBooked) {
					return err
				}
				return fmt.Errorf("%w: failed to update appointment: %v", ErrInternal, err)
			}
			if !ok {
				return fmt.Errorf("%w: appointment %s version %d", domain.ErrVersionConflict, appointment.ID, readVersion)
			}

			result = appointment
			return nil
		})
	})

	uc.metrics.IncAppointmentTransition("reschedule", domain.Outcome(err))
	if err != nil {
		if domain.Classify(err) == domain.ClassInfrastructure {
			uc.logger.Error("RescheduleAppointment: appointment=%s: %v", req.AppointmentID, err)
		}
		return nil, err
	}

	// 4. Событие после коммита
	event := domain.NewLifecycleEvent(domain.EventRescheduled, result, domain.StatusBooked, req.Actor, now)
	event.Metadata["previous_slot_id"] = result.PreviousSlotID.String()
	event.Metadata["slot_id"] = result.SlotID.String()
	event.Metadata["reschedule_count"] = strconv.Itoa(result.RescheduleCount)
	uc.events.Publish(ctx, event)

	uc.logger.Info("RescheduleAppointment: appointment=%s moved to slot=%s (%d/%d)",
		result.ID, result.SlotID, result.RescheduleCount, domain.MaxReschedules)

	return &Response{
		ID:              result.ID,
		ReferenceCode:   result.ReferenceCode,
		SlotID:          result.SlotID,
		PreviousSlotID:  *result.PreviousSlotID,
		BranchID:        result.BranchID,
		Status:          string(result.Status),
		ScheduledAt:     result.ScheduledAt,
		RescheduleCount: result.RescheduleCount,
		Version:         result.Version,
	}, nil
}
